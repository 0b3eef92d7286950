// Package resetconfirm реализует HTTP-обработчик смены пароля по токену.
//
// Токен одноразовый: успешная смена пароля помечает его использованным.
// Неверный, просроченный и использованный токены дают одинаковый ответ.
package resetconfirm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// Request — структура входных данных смены пароля.
type Request struct {
	Password string `json:"password" validate:"required,min=6"`
}

// Handler обрабатывает HTTP-запросы смены пароля по токену.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс использования токена восстановления.
type Service interface {
	ConsumeResetToken(ctx context.Context, raw, newPassword string) (*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена пароля по токену восстановления
// @Description Меняет пароль и помечает токен использованным.
// @Tags Account
// @Accept  json
// @Produce  json
// @Param token path string true "Токен восстановления"
// @Param request body Request true "Новый пароль"
// @Success 200 {object} map[string]any "Пароль изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Токен недействителен или просрочен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /account/reset/{token} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.resetconfirm"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	raw := chi.URLParam(r, "token")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.ConsumeResetToken(r.Context(), raw, req.Password)
	if err != nil {
		log.Error("failed to consume reset token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal server error"))
		return
	}
	if user == nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("invalid or expired token"))
		return
	}

	log.Info("password reset", slog.String("username", user.Username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "password has been changed",
	}))
}
