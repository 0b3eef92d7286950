package middlewarectx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/news-publisher/internal/lib/jwt"
	"github.com/magabrotheeeer/news-publisher/internal/models"
)

type UserProviderMock struct{ mock.Mock }

func (m *UserProviderMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func okHandler(called *bool, gotUser **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if user, ok := CurrentUser(r.Context()); ok {
			*gotUser = user
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test_secret", 15*time.Minute)
	reader := &models.User{ID: 7, Username: "joe", Role: models.RoleReader}

	t.Run("валидный токен загружает пользователя в контекст", func(t *testing.T) {
		token, err := maker.GenerateToken("joe", models.RoleReader, "uid-7")
		require.NoError(t, err)

		users := new(UserProviderMock)
		users.On("GetUserByUsername", mock.Anything, "joe").Return(reader, nil)

		var called bool
		var gotUser *models.User
		handler := JWTMiddleware(maker, users, newNoopLogger())(okHandler(&called, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
		require.NotNil(t, gotUser)
		assert.Equal(t, int64(7), gotUser.ID)
	})

	t.Run("без заголовка Authorization", func(t *testing.T) {
		var called bool
		var gotUser *models.User
		handler := JWTMiddleware(maker, new(UserProviderMock), newNoopLogger())(okHandler(&called, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("просроченный токен", func(t *testing.T) {
		expired := jwt.NewJWTMaker("test_secret", -time.Hour)
		token, err := expired.GenerateToken("joe", models.RoleReader, "uid-7")
		require.NoError(t, err)

		var called bool
		var gotUser *models.User
		handler := JWTMiddleware(maker, new(UserProviderMock), newNoopLogger())(okHandler(&called, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("пользователь из токена не найден", func(t *testing.T) {
		token, err := maker.GenerateToken("ghost", models.RoleReader, "uid-0")
		require.NoError(t, err)

		users := new(UserProviderMock)
		users.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, errors.New("no rows"))

		var called bool
		var gotUser *models.User
		handler := JWTMiddleware(maker, users, newNoopLogger())(okHandler(&called, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})
}

func TestOptionalJWTMiddleware(t *testing.T) {
	maker := jwt.NewJWTMaker("test_secret", 15*time.Minute)
	reader := &models.User{ID: 7, Username: "joe", Role: models.RoleReader}

	t.Run("без токена запрос проходит анонимно", func(t *testing.T) {
		var called bool
		var gotUser *models.User
		handler := OptionalJWTMiddleware(maker, new(UserProviderMock), newNoopLogger())(okHandler(&called, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
		assert.Nil(t, gotUser)
	})

	t.Run("битый токен не блокирует запрос", func(t *testing.T) {
		var called bool
		var gotUser *models.User
		handler := OptionalJWTMiddleware(maker, new(UserProviderMock), newNoopLogger())(okHandler(&called, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
		assert.Nil(t, gotUser)
	})

	t.Run("валидный токен добавляет пользователя", func(t *testing.T) {
		token, err := maker.GenerateToken("joe", models.RoleReader, "uid-7")
		require.NoError(t, err)

		users := new(UserProviderMock)
		users.On("GetUserByUsername", mock.Anything, "joe").Return(reader, nil)

		var called bool
		var gotUser *models.User
		handler := OptionalJWTMiddleware(maker, users, newNoopLogger())(okHandler(&called, &gotUser))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, gotUser)
		assert.Equal(t, "joe", gotUser.Username)
	})
}

func TestCurrentUser(t *testing.T) {
	t.Run("пустой контекст", func(t *testing.T) {
		_, ok := CurrentUser(context.Background())
		assert.False(t, ok)
	})

	t.Run("пользователь в контексте", func(t *testing.T) {
		user := &models.User{ID: 7}
		ctx := context.WithValue(context.Background(), CurrentUserKey, user)
		got, ok := CurrentUser(ctx)
		assert.True(t, ok)
		assert.Equal(t, user, got)
	})
}
