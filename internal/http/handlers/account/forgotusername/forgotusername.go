// Package forgotusername реализует HTTP-обработчик напоминания имени пользователя.
//
// На указанный email отправляется письмо со всеми зарегистрированными на него
// именами. Ответ нейтрален: наличие или отсутствие учётной записи не раскрывается.
package forgotusername

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
)

const neutralReply = "if that email is registered, a reminder has been sent"

// Request — структура входных данных запроса напоминания.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Handler обрабатывает HTTP-запросы напоминания имени пользователя.
type Handler struct {
	log      *slog.Logger
	service  Service
	sender   Sender
	validate *validator.Validate
}

// Service описывает интерфейс поиска имён пользователей по email.
type Service interface {
	FindUsernames(ctx context.Context, email string) ([]string, error)
}

// Sender описывает интерфейс отправки письма-напоминания.
type Sender interface {
	SendUsernameReminder(email string, usernames []string) error
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
// @Summary Напоминание имени пользователя
// @Description Отправляет на email список зарегистрированных имён. Ответ нейтрален.
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body Request true "Email учётной записи"
// @Success 200 {object} map[string]any "Нейтральный ответ"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /account/forgot-username [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.forgotusername"
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

	usernames, err := h.service.FindUsernames(r.Context(), req.Email)
	if err != nil {
		log.Error("failed to find usernames", sl.Err(err))
	} else if len(usernames) > 0 {
		if err := h.sender.SendUsernameReminder(req.Email, usernames); err != nil {
			log.Error("failed to send reminder", sl.Err(err))
		}
	}

	// Ответ одинаков для всех исходов, чтобы не раскрывать наличие учётной записи.
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": neutralReply,
	}))
}
