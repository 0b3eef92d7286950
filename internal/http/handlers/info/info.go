// Package info реализует HTTP-обработчик сводки об API.
package info

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/response"
)

// Handler обрабатывает HTTP-запросы сводки об API.
type Handler struct {
	version string
}

// New создает новый экземпляр Handler.
func New(version string) *Handler {
	return &Handler{version: version}
}

// ServeHTTP godoc
// @Summary Сводка об API
// @Description Возвращает название сервиса, версию и основные разделы API.
// @Tags Info
// @Produce  json
// @Success 200 {object} map[string]any "Сводка"
// @Router /info [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OKWithData(map[string]any{
		"service": "news-publisher",
		"version": h.version,
		"sections": []string{
			"feed", "browse", "articles", "newsletters",
			"publishers", "journalists", "subscriptions",
			"account", "profile", "twitter",
		},
	}))
}
