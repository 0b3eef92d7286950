// Package read реализует HTTP-обработчик чтения издателя по ID.
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

// Handler обрабатывает HTTP-запросы чтения издателя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс выборки издателя и состава его редакции.
type Service interface {
	ReadPublisher(ctx context.Context, id int64) (*models.Publisher, error)
	ListPublisherEditors(ctx context.Context, publisherID int64) ([]*models.User, error)
	ListPublisherJournalists(ctx context.Context, publisherID int64) ([]*models.User, error)
}

// Response — издатель вместе с составом его редакции.
type Response struct {
	Publisher   *models.Publisher `json:"publisher"`
	Editors     []*models.User    `json:"editors"`
	Journalists []*models.User    `json:"journalists"`
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить издателя
// @Description Возвращает издателя по его ID вместе с его редакторами и журналистами.
// @Tags Publishers
// @Produce  json
// @Param id path int true "ID издателя"
// @Success 200 {object} map[string]any "Издатель"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Издатель не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /publishers/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.publisher.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid publisher id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid publisher id"))
		return
	}

	publisher, err := h.service.ReadPublisher(r.Context(), id)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("publisher not found"))
		return
	}

	editors, err := h.service.ListPublisherEditors(r.Context(), id)
	if err != nil {
		log.Error("failed to list publisher editors", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read publisher"))
		return
	}
	journalists, err := h.service.ListPublisherJournalists(r.Context(), id)
	if err != nil {
		log.Error("failed to list publisher journalists", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read publisher"))
		return
	}

	render.JSON(w, r, response.OKWithData(Response{
		Publisher:   publisher,
		Editors:     editors,
		Journalists: journalists,
	}))
}
