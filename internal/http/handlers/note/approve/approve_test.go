package approve

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

// MockService реализует интерфейс approve.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Approve(ctx context.Context, reviewerRole, noteID, reviewerUID, comment string) error {
	args := m.Called(ctx, reviewerRole, noteID, reviewerUID, comment)
	return args.Error(0)
}

func TestApproveHandler(t *testing.T) {
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
			name: "успешная публикация",
			role: models.RoleReviewer,
			body: `{"comment":"well structured"}`,
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, models.RoleReviewer, "note-1", "rev-1", "well structured").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"published"`,
		},
		{
			name: "одобрение без тела запроса",
			role: models.RoleAdmin,
			body: "",
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, models.RoleAdmin, "note-1", "rev-1", "").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"note_id":"note-1"`,
		},
		{
			name: "недостаточно прав",
			role: models.RoleStudent,
			body: "",
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, models.RoleStudent, "note-1", "rev-1", "").Return(models.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"review permissions required"`,
		},
		{
			name: "конспект не найден",
			role: models.RoleReviewer,
			body: "",
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, models.RoleReviewer, "note-1", "rev-1", "").Return(models.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"note not found"`,
		},
		{
			name: "конспект не на проверке",
			role: models.RoleReviewer,
			body: "",
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, models.RoleReviewer, "note-1", "rev-1", "").Return(models.ErrInvalidTransition)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"note is not under review"`,
		},
		{
			name: "хранилище недоступно",
			role: models.RoleReviewer,
			body: "",
			setupMock: func(m *MockService) {
				m.On("Approve", mock.Anything, models.RoleReviewer, "note-1", "rev-1", "").Return(models.ErrUnavailable)
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

			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(http.MethodPost, "/notes/note-1/approve", body)

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

func TestApproveHandler_MissingUserUID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mockService := new(MockService)
	handler := New(logger, mockService)

	req := httptest.NewRequest(http.MethodPost, "/notes/note-1/approve", strings.NewReader(""))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "note-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
