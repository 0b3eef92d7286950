// Package list реализует HTTP-обработчик списка статей.
//
// Список учитывает видимость зрителя: читатель видит статьи своих подписок,
// остальные роли — все статьи.
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

// Handler обрабатывает HTTP-запросы списка статей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сборки списка статей.
type Service interface {
	List(ctx context.Context, viewer feed.Viewer, page int, kindFilter string, approvedOnly bool, pageSize int) (*feed.Page, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список статей
// @Description Возвращает страницу статей с учётом видимости зрителя.
// @Tags Articles
// @Produce  json
// @Param page query int false "Номер страницы (с 1)"
// @Success 200 {object} map[string]any "Страница статей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /articles [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	viewer := newsfeed.ViewerFromContext(r.Context())
	page := newsfeed.ParsePage(r)

	result, err := h.service.List(r.Context(), viewer, page, feed.KindFilterArticles, false, feed.ListPageSize)
	if err != nil {
		log.Error("failed to list articles", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list articles"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
