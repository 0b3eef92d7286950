// Package status реализует диагностический HTTP-обработчик состояния
// подключения к X (Twitter).
package status

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/twitter"
)

// Handler обрабатывает HTTP-запросы состояния подключения.
type Handler struct {
	log    *slog.Logger
	client Client
}

// Client описывает интерфейс запроса состояния подключения.
type Client interface {
	ConnectionStatus() (*twitter.Status, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, client Client) *Handler {
	return &Handler{log: log, client: client}
}

// ServeHTTP godoc
// @Summary Состояние подключения X
// @Description Возвращает состояние подключения и наличие refresh-токена.
// @Tags Twitter
// @Produce  json
// @Success 200 {object} map[string]any "Состояние подключения"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /twitter/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.twitterauth.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.client.ConnectionStatus()
	if err != nil {
		log.Error("failed to get connection status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get connection status"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
