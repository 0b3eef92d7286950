// Package publish реализует HTTP-обработчик публикации рассылки.
//
// Публикация отправляет письма подписчикам издателя и кросс-постит анонс.
// Этапа одобрения у рассылок нет: публиковать могут автор и редакторы.
package publish

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
	"github.com/magabrotheeeer/news-publisher/internal/services/content"
)

// Handler обрабатывает HTTP-запросы публикации рассылок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики публикации рассылки.
type Service interface {
	PublishNewsletter(ctx context.Context, user *models.User, id int64) (*models.Newsletter, *content.SideEffects, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Опубликовать рассылку
// @Description Рассылает письма подписчикам и кросс-постит анонс.
// @Tags Newsletters
// @Produce  json
// @Param id path int true "ID рассылки"
// @Success 200 {object} map[string]any "Рассылка опубликована, возможны warnings"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Рассылка не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /newsletters/{id}/publish [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletter.publish"
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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid newsletter id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid newsletter id"))
		return
	}

	newsletter, effects, err := h.service.PublishNewsletter(r.Context(), user, id)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("newsletter not found"))
		case errors.Is(err, content.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only the author or an editor can publish this newsletter"))
		default:
			log.Error("failed to publish newsletter", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not publish newsletter"))
		}
		return
	}

	log.Info("newsletter published", slog.Int64("id", newsletter.ID), slog.Int("emails_sent", effects.EmailsSent))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"newsletter":   newsletter,
		"side_effects": effects,
	}))
}
