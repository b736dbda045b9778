package reject

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/notes-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// MockService реализует интерфейс reject.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Reject(ctx context.Context, reviewerRole, noteID, reviewerUID, comment string) error {
	args := m.Called(ctx, reviewerRole, noteID, reviewerUID, comment)
	return args.Error(0)
}

func TestRejectHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		role           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное отклонение",
			role: models.RoleReviewer,
			body: `{"comment":"sources are missing"}`,
			setupMock: func(m *MockService) {
				m.On("Reject", mock.Anything, models.RoleReviewer, "note-1", "rev-1", "sources are missing").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"rejected"`,
		},
		{
			name: "пустой комментарий",
			role: models.RoleReviewer,
			body: `{"comment":"   "}`,
			setupMock: func(m *MockService) {
				m.On("Reject", mock.Anything, models.RoleReviewer, "note-1", "rev-1", "   ").Return(models.ErrEmptyComment)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"error":"rejection requires a non-empty comment"`,
		},
		{
			name:           "некорректное тело запроса",
			role:           models.RoleReviewer,
			body:           `{`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name: "недостаточно прав",
			role: models.RoleTopper,
			body: `{"comment":"bad"}`,
			setupMock: func(m *MockService) {
				m.On("Reject", mock.Anything, models.RoleTopper, "note-1", "rev-1", "bad").Return(models.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"review permissions required"`,
		},
		{
			name: "конспект не на проверке",
			role: models.RoleAdmin,
			body: `{"comment":"bad"}`,
			setupMock: func(m *MockService) {
				m.On("Reject", mock.Anything, models.RoleAdmin, "note-1", "rev-1", "bad").Return(models.ErrInvalidTransition)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"note is not under review"`,
		},
		{
			name: "хранилище недоступно",
			role: models.RoleReviewer,
			body: `{"comment":"bad"}`,
			setupMock: func(m *MockService) {
				m.On("Reject", mock.Anything, models.RoleReviewer, "note-1", "rev-1", "bad").Return(models.ErrUnavailable)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"error":"service temporarily unavailable"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/notes/note-1/reject", strings.NewReader(tt.body))

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "note-1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "rev-1")
			ctx = context.WithValue(ctx, middlewarectx.Role, tt.role)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
