// Package connect реализует HTTP-обработчик начала авторизации в X (Twitter).
//
// Обработчик выдает URL страницы согласия и сохраняет пару verifier/state
// в кэше до возврата пользователя с редиректа.
package connect

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/twitter"
)

// Handler обрабатывает HTTP-запросы начала авторизации.
type Handler struct {
	log    *slog.Logger
	client Client
	cache  Cache
}

// Client описывает интерфейс начала авторизации OAuth2 PKCE.
type Client interface {
	Begin() (authURL, verifier, state string)
}

// Cache описывает интерфейс хранения незавершённой авторизации.
type Cache interface {
	Set(key string, value any, expiration time.Duration) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, client Client, cache Cache) *Handler {
	return &Handler{log: log, client: client, cache: cache}
}

// ServeHTTP godoc
// @Summary Подключить учётную запись X
// @Description Начинает авторизацию OAuth2 PKCE и возвращает URL страницы согласия.
// @Tags Twitter
// @Produce  json
// @Success 200 {object} map[string]any "URL авторизации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /twitter/connect [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.twitterauth.connect"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	authURL, verifier, state := h.client.Begin()

	pending := twitter.PendingAuth{Verifier: verifier, State: state}
	if err := h.cache.Set(twitter.PendingAuthKey(state), pending, twitter.PendingAuthTTL); err != nil {
		log.Error("failed to store pending authorization", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not start authorization"))
		return
	}

	log.Info("twitter authorization started")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"auth_url": authURL,
	}))
}
