// Package newsfeed реализует HTTP-обработчик объединённой ленты.
//
// Лента доступна анонимно. Для аутентифицированного читателя применяется
// фильтр подписок, остальные зрители видят весь контент.
package newsfeed

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/services/feed"
)

// Handler обрабатывает HTTP-запросы объединённой ленты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сборки ленты.
type Service interface {
	List(ctx context.Context, viewer feed.Viewer, page int, kindFilter string, approvedOnly bool, pageSize int) (*feed.Page, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ViewerFromContext собирает описание зрителя из контекста запроса.
func ViewerFromContext(ctx context.Context) feed.Viewer {
	user, ok := middlewarectx.CurrentUser(ctx)
	if !ok {
		return feed.Viewer{}
	}
	return feed.Viewer{Authenticated: true, UserID: user.ID, Role: user.Role}
}

// ParsePage читает номер страницы из query-параметра, по умолчанию 1.
func ParsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParseKindFilter читает фильтр вида контента, по умолчанию all.
func ParseKindFilter(r *http.Request) string {
	switch r.URL.Query().Get("type") {
	case feed.KindFilterArticles:
		return feed.KindFilterArticles
	case feed.KindFilterNewsletters:
		return feed.KindFilterNewsletters
	default:
		return feed.KindFilterAll
	}
}

// ServeHTTP godoc
// @Summary Объединённая лента
// @Description Возвращает страницу ленты статей и рассылок. Для читателя применяется фильтр подписок.
// @Tags Feed
// @Produce  json
// @Param page query int false "Номер страницы (с 1)"
// @Param type query string false "Фильтр вида: all, articles, newsletters"
// @Success 200 {object} map[string]any "Страница ленты"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /feed [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.newsfeed"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	viewer := ViewerFromContext(r.Context())
	page := ParsePage(r)
	kind := ParseKindFilter(r)

	result, err := h.service.List(r.Context(), viewer, page, kind, false, feed.FeedPageSize)
	if err != nil {
		log.Error("failed to build feed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build feed"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
