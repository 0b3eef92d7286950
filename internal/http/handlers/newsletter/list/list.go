// Package list реализует HTTP-обработчик списка рассылок.
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
	"github.com/magabrotheeeer/news-publisher/internal/services/feed"
)

// Handler обрабатывает HTTP-запросы списка рассылок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сборки списка рассылок.
type Service interface {
	List(ctx context.Context, viewer feed.Viewer, page int, kindFilter string, approvedOnly bool, pageSize int) (*feed.Page, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список рассылок
// @Description Возвращает страницу рассылок с учётом видимости зрителя.
// @Tags Newsletters
// @Produce  json
// @Param page query int false "Номер страницы (с 1)"
// @Success 200 {object} map[string]any "Страница рассылок"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /newsletters [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletter.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	viewer := newsfeed.ViewerFromContext(r.Context())
	page := newsfeed.ParsePage(r)

	result, err := h.service.List(r.Context(), viewer, page, feed.KindFilterNewsletters, false, feed.ListPageSize)
	if err != nil {
		log.Error("failed to list newsletters", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list newsletters"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
