// Package combined реализует HTTP-обработчик комбинированной выдачи REST API:
// топ статей и рассылок одним ответом.
package combined

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/handlers/feed/newsfeed"
	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/services/feed"
)

// Handler обрабатывает HTTP-запросы комбинированной выдачи.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сборки комбинированной выдачи.
type Service interface {
	Combined(ctx context.Context, viewer feed.Viewer) (*feed.Combined, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Комбинированная выдача
// @Description Возвращает топ-10 статей и топ-10 рассылок с учётом видимости зрителя.
// @Tags Feed
// @Produce  json
// @Success 200 {object} map[string]any "Комбинированная выдача"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /feed/combined [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.combined"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	viewer := newsfeed.ViewerFromContext(r.Context())

	result, err := h.service.Combined(r.Context(), viewer)
	if err != nil {
		log.Error("failed to build combined feed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build feed"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
