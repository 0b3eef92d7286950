// Package list реализует HTTP-обработчик списка издателей.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/handlers/feed/newsfeed"
	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
	"github.com/magabrotheeeer/news-publisher/internal/services/feed"
)

// Handler обрабатывает HTTP-запросы списка издателей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки издателей.
type Service interface {
	ListPublishers(ctx context.Context, limit, offset int) ([]*models.Publisher, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список издателей
// @Description Возвращает страницу издателей.
// @Tags Publishers
// @Produce  json
// @Param page query int false "Номер страницы (с 1)"
// @Success 200 {object} map[string]any "Страница издателей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /publishers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.publisher.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page := newsfeed.ParsePage(r)
	offset := (page - 1) * feed.ListPageSize

	publishers, err := h.service.ListPublishers(r.Context(), feed.ListPageSize, offset)
	if err != nil {
		log.Error("failed to list publishers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list publishers"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"publishers": publishers,
		"page":       page,
	}))
}
