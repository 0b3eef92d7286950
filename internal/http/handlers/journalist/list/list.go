// Package list реализует HTTP-обработчик списка журналистов.
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

// Handler обрабатывает HTTP-запросы списка журналистов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки журналистов.
type Service interface {
	ListJournalists(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список журналистов
// @Description Возвращает страницу журналистов, на которых можно подписаться.
// @Tags Journalists
// @Produce  json
// @Param page query int false "Номер страницы (с 1)"
// @Success 200 {object} map[string]any "Страница журналистов"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /journalists [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.journalist.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page := newsfeed.ParsePage(r)
	offset := (page - 1) * feed.ListPageSize

	journalists, err := h.service.ListJournalists(r.Context(), feed.ListPageSize, offset)
	if err != nil {
		log.Error("failed to list journalists", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list journalists"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"journalists": journalists,
		"page":        page,
	}))
}
