// Package disconnect реализует HTTP-обработчик отключения учётной записи X (Twitter).
package disconnect

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы отключения учётной записи.
type Handler struct {
	log    *slog.Logger
	client Client
}

// Client описывает интерфейс удаления сохранённых учётных данных.
type Client interface {
	Disconnect() error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, client Client) *Handler {
	return &Handler{log: log, client: client}
}

// ServeHTTP godoc
// @Summary Отключить учётную запись X
// @Description Удаляет сохранённые учётные данные X.
// @Tags Twitter
// @Produce  json
// @Success 200 {object} map[string]any "Учётная запись отключена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /twitter/disconnect [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.twitterauth.disconnect"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.client.Disconnect(); err != nil {
		log.Error("failed to disconnect twitter account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not disconnect twitter account"))
		return
	}

	log.Info("twitter account disconnected")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "twitter account disconnected",
	}))
}
