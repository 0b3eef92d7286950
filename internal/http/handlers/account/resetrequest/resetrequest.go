// Package resetrequest реализует HTTP-обработчик запроса восстановления пароля.
//
// Пользователю отправляется письмо со ссылкой, содержащей одноразовый токен.
// Ответ нейтрален: наличие или отсутствие учётной записи не раскрывается.
package resetrequest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
)

const neutralReply = "if that account exists, a reset link has been sent"

// Request — структура входных данных запроса восстановления.
type Request struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
}

// Handler обрабатывает HTTP-запросы восстановления пароля.
type Handler struct {
	log      *slog.Logger
	service  Service
	sender   Sender
	validate *validator.Validate
}

// Service описывает интерфейс выпуска токенов восстановления.
type Service interface {
	IssueResetToken(ctx context.Context, username string) (string, *models.User, error)
}

// Sender описывает интерфейс отправки письма со ссылкой восстановления.
type Sender interface {
	SendPasswordResetLink(user *models.User, rawToken string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, sender Sender) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sender:   sender,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Запрос восстановления пароля
// @Description Отправляет письмо со ссылкой восстановления. Ответ нейтрален.
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя пользователя"
// @Success 200 {object} map[string]any "Нейтральный ответ"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /account/reset [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.resetrequest"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	raw, user, err := h.service.IssueResetToken(r.Context(), req.Username)
	if err != nil {
		log.Info("reset token not issued", sl.Err(err))
	} else {
		if err := h.sender.SendPasswordResetLink(user, raw); err != nil {
			log.Error("failed to send reset link", sl.Err(err))
		}
	}

	// Ответ одинаков для всех исходов, чтобы не раскрывать наличие учётной записи.
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": neutralReply,
	}))
}
