package newsfeed

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/news-publisher/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-publisher/internal/models"
	"github.com/magabrotheeeer/news-publisher/internal/services/feed"
)

// MockService реализует интерфейс newsfeed.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, viewer feed.Viewer, page int, kindFilter string, approvedOnly bool, pageSize int) (*feed.Page, error) {
	args := m.Called(ctx, viewer, page, kindFilter, approvedOnly, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*feed.Page), args.Error(1)
}

func emptyPage(page int) *feed.Page {
	return &feed.Page{Items: []*models.FeedItem{}, Page: page, PageSize: feed.FeedPageSize}
}

func TestNewsfeedHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reader := &models.User{ID: 7, Username: "joe", Role: models.RoleReader}

	tests := []struct {
		name           string
		url            string
		user           *models.User
		setupMock      func(*MockService)
		expectedStatus int
	}{
		{
			name: "анонимный запрос идёт без фильтра",
			url:  "/api/v1/feed",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, feed.Viewer{}, 1, feed.KindFilterAll, false, feed.FeedPageSize).
					Return(emptyPage(1), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "аутентифицированный читатель передаётся в сервис",
			url:  "/api/v1/feed",
			user: reader,
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, feed.Viewer{Authenticated: true, UserID: 7, Role: models.RoleReader}, 1, feed.KindFilterAll, false, feed.FeedPageSize).
					Return(emptyPage(1), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "номер страницы и фильтр вида из query",
			url:  "/api/v1/feed?page=3&type=articles",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, feed.Viewer{}, 3, feed.KindFilterArticles, false, feed.FeedPageSize).
					Return(emptyPage(3), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "мусорные query-параметры откатываются к значениям по умолчанию",
			url:  "/api/v1/feed?page=-5&type=bogus",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, feed.Viewer{}, 1, feed.KindFilterAll, false, feed.FeedPageSize).
					Return(emptyPage(1), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "ошибка сервиса",
			url:  "/api/v1/feed",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			if tt.user != nil {
				ctx = context.WithValue(ctx, middlewarectx.CurrentUserKey, tt.user)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{query: "", want: 1},
		{query: "page=2", want: 2},
		{query: "page=0", want: 1},
		{query: "page=abc", want: 1},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/feed?"+tt.query, nil)
		assert.Equal(t, tt.want, ParsePage(req), "query: %s", tt.query)
	}
}

func TestViewerFromContext(t *testing.T) {
	t.Run("без пользователя", func(t *testing.T) {
		viewer := ViewerFromContext(context.Background())
		assert.False(t, viewer.Authenticated)
	})

	t.Run("с пользователем", func(t *testing.T) {
		user := &models.User{ID: 7, Role: models.RoleEditor}
		ctx := context.WithValue(context.Background(), middlewarectx.CurrentUserKey, user)
		viewer := ViewerFromContext(ctx)
		assert.True(t, viewer.Authenticated)
		assert.Equal(t, int64(7), viewer.UserID)
		assert.Equal(t, models.RoleEditor, viewer.Role)
	})
}
