package browse

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

// MockService реализует интерфейс browse.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Browse(ctx context.Context, page int, kindFilter string) (*feed.Page, error) {
	args := m.Called(ctx, page, kindFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*feed.Page), args.Error(1)
}

func TestBrowseHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reader := &models.User{ID: 7, Username: "joe", Role: models.RoleReader}

	tests := []struct {
		name           string
		url            string
		user           *models.User
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "читатель без подписок получает одобренный контент",
			url:  "/api/v1/browse",
			user: reader,
			setupMock: func(m *MockService) {
				m.On("Browse", mock.Anything, 1, feed.KindFilterAll).
					Return(&feed.Page{Items: []*models.FeedItem{}, Page: 1, PageSize: feed.BrowsePageSize}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"items":[],"page":1,"page_size":15,"has_next":false}}`,
		},
		{
			name: "номер страницы и фильтр вида из query",
			url:  "/api/v1/browse?page=2&type=articles",
			user: reader,
			setupMock: func(m *MockService) {
				m.On("Browse", mock.Anything, 2, feed.KindFilterArticles).
					Return(&feed.Page{Items: []*models.FeedItem{}, Page: 2, PageSize: feed.BrowsePageSize}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"items":[],"page":2,"page_size":15,"has_next":false}}`,
		},
		{
			name:           "отсутствует авторизация",
			url:            "/api/v1/browse",
			user:           nil,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:           "раздел доступен только читателям",
			url:            "/api/v1/browse",
			user:           &models.User{ID: 2, Username: "lois", Role: models.RoleJournalist},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"browse is available to readers only"}`,
		},
		{
			name: "ошибка сервиса",
			url:  "/api/v1/browse",
			user: reader,
			setupMock: func(m *MockService) {
				m.On("Browse", mock.Anything, 1, feed.KindFilterAll).
					Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not build browse page"}`,
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
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
