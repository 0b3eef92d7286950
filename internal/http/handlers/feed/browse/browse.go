// Package browse реализует HTTP-обработчик раздела Browse для читателей.
//
// В разделе показываются только одобренные статьи и рассылки; доступ
// есть только у читателей.
package browse

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/handlers/feed/newsfeed"
	"github.com/magabrotheeeer/news-publisher/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
	"github.com/magabrotheeeer/news-publisher/internal/services/feed"
)

// Handler обрабатывает HTTP-запросы раздела Browse.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс сборки раздела Browse.
type Service interface {
	Browse(ctx context.Context, page int, kindFilter string) (*feed.Page, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Раздел Browse
// @Description Возвращает страницу одобренного контента. Доступно только читателям.
// @Tags Feed
// @Produce  json
// @Param page query int false "Номер страницы (с 1)"
// @Param type query string false "Фильтр вида: all, articles, newsletters"
// @Success 200 {object} map[string]any "Страница раздела"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Раздел доступен только читателям"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /browse [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.feed.browse"
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
	if user.Role != models.RoleReader {
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("browse is available to readers only"))
		return
	}

	page := newsfeed.ParsePage(r)
	kind := newsfeed.ParseKindFilter(r)

	// Раздел Browse показывает весь одобренный контент независимо
	// от подписок читателя.
	result, err := h.service.Browse(r.Context(), page, kind)
	if err != nil {
		log.Error("failed to build browse page", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build browse page"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
