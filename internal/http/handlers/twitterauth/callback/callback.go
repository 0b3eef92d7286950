// Package callback реализует HTTP-обработчик возврата с авторизации X (Twitter).
//
// Обработчик достает сохранённую пару verifier/state из кэша, завершает
// обмен кода на токен и удаляет незавершённую авторизацию.
package callback

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/news-publisher/internal/http/response"
	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/twitter"
)

// Handler обрабатывает HTTP-запросы возврата с авторизации.
type Handler struct {
	log    *slog.Logger
	client Client
	cache  Cache
}

// Client описывает интерфейс завершения авторизации OAuth2 PKCE.
type Client interface {
	Finish(ctx context.Context, callbackURL, verifier, expectedState string) error
}

// Cache описывает интерфейс хранения незавершённой авторизации.
type Cache interface {
	Get(key string, result any) (bool, error)
	Invalidate(key string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, client Client, cache Cache) *Handler {
	return &Handler{log: log, client: client, cache: cache}
}

// ServeHTTP godoc
// @Summary Завершить подключение учётной записи X
// @Description Обменивает код авторизации на токен и сохраняет его.
// @Tags Twitter
// @Produce  json
// @Param code query string true "Код авторизации"
// @Param state query string true "Параметр state"
// @Success 200 {object} map[string]any "Учётная запись подключена"
// @Failure 400 {object} response.ErrorResponse "Авторизация не была начата или отклонена"
// @Failure 403 {object} response.ErrorResponse "Расхождение state"
// @Failure 500 {object} response.ErrorResponse "Ошибка обмена кода на токен"
// @Security BearerAuth
// @Router /twitter/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.twitterauth.callback"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	state := r.URL.Query().Get("state")
	if state == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing state parameter"))
		return
	}

	var pending twitter.PendingAuth
	found, err := h.cache.Get(twitter.PendingAuthKey(state), &pending)
	if err != nil {
		log.Error("failed to load pending authorization", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not finish authorization"))
		return
	}
	if !found {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("authorization was not started or has expired"))
		return
	}

	if err := h.client.Finish(r.Context(), r.URL.String(), pending.Verifier, pending.State); err != nil {
		if errors.Is(err, twitter.ErrStateMismatch) {
			log.Error("oauth state mismatch")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("oauth state mismatch"))
			return
		}
		log.Error("failed to finish authorization", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("authorization failed"))
		return
	}

	if err := h.cache.Invalidate(twitter.PendingAuthKey(state)); err != nil {
		log.Warn("failed to clear pending authorization", sl.Err(err))
	}

	log.Info("twitter account connected")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "twitter account connected",
	}))
}
