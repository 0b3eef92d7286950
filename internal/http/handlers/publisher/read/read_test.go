package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// MockService реализует интерфейс read.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ReadPublisher(ctx context.Context, id int64) (*models.Publisher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Publisher), args.Error(1)
}

func (m *MockService) ListPublisherEditors(ctx context.Context, publisherID int64) ([]*models.User, error) {
	args := m.Called(ctx, publisherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockService) ListPublisherJournalists(ctx context.Context, publisherID int64) ([]*models.User, error) {
	args := m.Called(ctx, publisherID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func TestReadHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	planet := &models.Publisher{ID: 5, Name: "Daily Planet"}
	perry := &models.User{ID: 3, UID: "uid-3", Username: "perry", Email: "perry@example.com",
		Role: models.RoleEditor}
	lois := &models.User{ID: 7, UID: "uid-7", Username: "lois", Email: "lois@example.com",
		Role: models.RoleJournalist}

	tests := []struct {
		name           string
		urlParam       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "издатель вместе с составом редакции",
			urlParam: "5",
			setupMock: func(m *MockService) {
				m.On("ReadPublisher", mock.Anything, int64(5)).Return(planet, nil)
				m.On("ListPublisherEditors", mock.Anything, int64(5)).Return([]*models.User{perry}, nil)
				m.On("ListPublisherJournalists", mock.Anything, int64(5)).Return([]*models.User{lois}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":{
				"publisher":{"id":5,"name":"Daily Planet"},
				"editors":[{"id":3,"uid":"uid-3","username":"perry","email":"perry@example.com","role":"editor","created_at":"0001-01-01T00:00:00Z"}],
				"journalists":[{"id":7,"uid":"uid-7","username":"lois","email":"lois@example.com","role":"journalist","created_at":"0001-01-01T00:00:00Z"}]
			}}`,
		},
		{
			name:     "издатель без редакции",
			urlParam: "5",
			setupMock: func(m *MockService) {
				m.On("ReadPublisher", mock.Anything, int64(5)).Return(planet, nil)
				m.On("ListPublisherEditors", mock.Anything, int64(5)).Return([]*models.User{}, nil)
				m.On("ListPublisherJournalists", mock.Anything, int64(5)).Return([]*models.User{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":{
				"publisher":{"id":5,"name":"Daily Planet"},
				"editors":[],
				"journalists":[]
			}}`,
		},
		{
			name:           "некорректный ID",
			urlParam:       "abc",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid publisher id"}`,
		},
		{
			name:     "издатель не найден",
			urlParam: "404",
			setupMock: func(m *MockService) {
				m.On("ReadPublisher", mock.Anything, int64(404)).Return(nil, errors.New("no rows"))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"publisher not found"}`,
		},
		{
			name:     "ошибка выборки состава",
			urlParam: "5",
			setupMock: func(m *MockService) {
				m.On("ReadPublisher", mock.Anything, int64(5)).Return(planet, nil)
				m.On("ListPublisherEditors", mock.Anything, int64(5)).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not read publisher"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/publishers/"+tt.urlParam, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.urlParam)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
