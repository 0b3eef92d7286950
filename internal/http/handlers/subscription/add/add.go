// Package add реализует HTTP-обработчик оформления подписки.
//
// Запрос указывает ровно одну цель: издателя или журналиста.
// Подписки доступны только читателям.
package add

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
	"github.com/magabrotheeeer/news-publisher/internal/services/subscription"
)

// Request — структура входных данных подписки. Заполняется ровно одно поле.
type Request struct {
	PublisherID  *int64 `json:"publisher_id,omitempty"`
	JournalistID *int64 `json:"journalist_id,omitempty"`
}

// Handler обрабатывает HTTP-запросы оформления подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подписок.
type Service interface {
	SubscribePublisher(ctx context.Context, user *models.User, publisherID int64) error
	SubscribeJournalist(ctx context.Context, user *models.User, journalistID int64) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Оформить подписку
// @Description Подписывает читателя на издателя или журналиста.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body Request true "Цель подписки: publisher_id или journalist_id"
// @Success 200 {object} map[string]any "Подписка оформлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Подписки доступны только читателям"
// @Failure 404 {object} response.ErrorResponse "Цель подписки не найдена"
// @Failure 422 {object} response.ErrorResponse "Не указана цель подписки"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.add"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.CurrentUser(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if (req.PublisherID == nil) == (req.JournalistID == nil) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("specify exactly one of publisher_id or journalist_id"))
		return
	}

	var err error
	if req.PublisherID != nil {
		err = h.service.SubscribePublisher(r.Context(), user, *req.PublisherID)
	} else {
		err = h.service.SubscribeJournalist(r.Context(), user, *req.JournalistID)
	}
	if err != nil {
		switch {
		case errors.Is(err, subscription.ErrNotReader):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only readers can manage subscriptions"))
		case errors.Is(err, subscription.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscription target not found"))
		default:
			log.Error("failed to add subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not add subscription"))
		}
		return
	}

	log.Info("subscription added", slog.Int64("user_id", user.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "subscribed",
	}))
}
