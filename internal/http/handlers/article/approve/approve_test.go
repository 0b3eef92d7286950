package approve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/news-publisher/internal/http/middlewarectx"
	"github.com/magabrotheeeer/news-publisher/internal/models"
	"github.com/magabrotheeeer/news-publisher/internal/services/content"
)

// MockService реализует интерфейс approve.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ApproveArticle(ctx context.Context, editor *models.User, id int64) (*models.Article, *content.SideEffects, error) {
	args := m.Called(ctx, editor, id)
	var article *models.Article
	var effects *content.SideEffects
	if args.Get(0) != nil {
		article = args.Get(0).(*models.Article)
	}
	if args.Get(1) != nil {
		effects = args.Get(1).(*content.SideEffects)
	}
	return article, effects, args.Error(2)
}

func TestApproveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	editor := &models.User{ID: 100, Username: "perry", Role: models.RoleEditor}

	tests := []struct {
		name           string
		articleID      string
		user           *models.User
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное одобрение",
			articleID: "1",
			user:      editor,
			setupMock: func(m *MockService) {
				m.On("ApproveArticle", mock.Anything, editor, int64(1)).
					Return(&models.Article{ID: 1, Title: "t", Body: "b", AuthorID: 50, IsApproved: true, ApprovedByID: &editor.ID},
						&content.SideEffects{EmailsSent: 2, TweetID: "42"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"article":{"id":1,"title":"t","body":"b","author_id":50,"is_approved":true,"approved_by_id":100,"created_at":"0001-01-01T00:00:00Z","updated_at":"0001-01-01T00:00:00Z"},"side_effects":{"emails_sent":2,"tweet_id":"42"}}}`,
		},
		{
			name:           "некорректный ID",
			articleID:      "abc",
			user:           editor,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid article id"}`,
		},
		{
			name:           "отсутствует авторизация",
			articleID:      "1",
			user:           nil,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:      "недостаточно прав",
			articleID: "1",
			user:      editor,
			setupMock: func(m *MockService) {
				m.On("ApproveArticle", mock.Anything, editor, int64(1)).
					Return(nil, nil, content.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"approval requires an editor affiliated with the publisher"}`,
		},
		{
			name:      "статья не найдена",
			articleID: "404",
			user:      editor,
			setupMock: func(m *MockService) {
				m.On("ApproveArticle", mock.Anything, editor, int64(404)).
					Return(nil, nil, content.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"article not found"}`,
		},
		{
			name:      "ошибка сервиса",
			articleID: "1",
			user:      editor,
			setupMock: func(m *MockService) {
				m.On("ApproveArticle", mock.Anything, editor, int64(1)).
					Return(nil, nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not approve article"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			url := fmt.Sprintf("/api/v1/articles/%s/approve", tt.articleID)
			req := httptest.NewRequest(http.MethodPost, url, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.articleID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
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
