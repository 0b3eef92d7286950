package connect

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/news-publisher/internal/twitter"
)

// MockClient реализует интерфейс connect.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Begin() (string, string, string) {
	args := m.Called()
	return args.String(0), args.String(1), args.String(2)
}

// MockCache реализует интерфейс connect.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func TestConnectHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Run("пара verifier/state сохраняется под ключом со state", func(t *testing.T) {
		client := new(MockClient)
		client.On("Begin").Return("https://x.com/authorize?state=state-1", "verifier-1", "state-1")

		cache := new(MockCache)
		cache.On("Set", "twitter:oauth:pending:state-1",
			twitter.PendingAuth{Verifier: "verifier-1", State: "state-1"},
			twitter.PendingAuthTTL).Return(nil)

		handler := New(logger, client, cache)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/twitter/connect", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"status":"OK","data":{"auth_url":"https://x.com/authorize?state=state-1"}}`,
			w.Body.String())
		cache.AssertExpectations(t)
	})

	t.Run("параллельные подключения пишут разные ключи", func(t *testing.T) {
		cache := new(MockCache)
		cache.On("Set", "twitter:oauth:pending:state-a", mock.Anything, mock.Anything).Return(nil)
		cache.On("Set", "twitter:oauth:pending:state-b", mock.Anything, mock.Anything).Return(nil)

		for _, state := range []string{"state-a", "state-b"} {
			client := new(MockClient)
			client.On("Begin").Return("https://x.com/authorize", "verifier-"+state, state)

			handler := New(logger, client, cache)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/twitter/connect", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
		cache.AssertExpectations(t)
	})

	t.Run("ошибка кэша", func(t *testing.T) {
		client := new(MockClient)
		client.On("Begin").Return("https://x.com/authorize", "verifier-1", "state-1")

		cache := new(MockCache)
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		handler := New(logger, client, cache)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/twitter/connect", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"status":"Error","error":"could not start authorization"}`, w.Body.String())
	})
}
