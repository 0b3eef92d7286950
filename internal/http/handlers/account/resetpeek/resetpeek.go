// Package resetpeek реализует HTTP-обработчик проверки токена восстановления.
//
// Проверка не расходует токен: клиент показывает форму смены пароля только
// по действительному токену. Неверный, просроченный и использованный токены
// дают одинаковый ответ.
package resetpeek

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// Handler обрабатывает HTTP-запросы проверки токена восстановления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс проверки токена восстановления.
type Service interface {
	PeekResetToken(ctx context.Context, raw string) (*models.User, *models.ResetToken, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверка токена восстановления пароля
// @Description Проверяет действительность токена без его использования.
// @Tags Account
// @Produce  json
// @Param token path string true "Токен восстановления"
// @Success 200 {object} map[string]any "Токен действителен"
// @Failure 404 {object} response.ErrorResponse "Токен недействителен или просрочен"
// @Router /account/reset/{token} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.resetpeek"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	raw := chi.URLParam(r, "token")

	user, token, err := h.service.PeekResetToken(r.Context(), raw)
	if err != nil {
		log.Error("failed to check reset token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}
	if token == nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"valid":    true,
		"username": user.Username,
	}))
}
