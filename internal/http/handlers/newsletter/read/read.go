// Package read реализует HTTP-обработчик чтения рассылки по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// Handler обрабатывает HTTP-запросы чтения рассылки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения рассылки.
type Service interface {
	GetNewsletter(ctx context.Context, id int64) (*models.Newsletter, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить рассылку
// @Description Возвращает рассылку по её ID.
// @Tags Newsletters
// @Produce  json
// @Param id path int true "ID рассылки"
// @Success 200 {object} map[string]any "Рассылка"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Рассылка не найдена"
// @Security BearerAuth
// @Router /newsletters/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.newsletter.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid newsletter id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid newsletter id"))
		return
	}

	newsletter, err := h.service.GetNewsletter(r.Context(), id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("newsletter not found"))
		return
	}

	render.JSON(w, r, response.OKWithData(newsletter))
}
