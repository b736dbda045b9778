package trial

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/notes-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// MockService реализует интерфейс trial.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) StartTrial(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func TestTrialHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная активация",
			setupMock: func(m *MockService) {
				m.On("StartTrial", mock.Anything, "user-1").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"tier":"trial"`,
		},
		{
			name: "пробный период уже использован",
			setupMock: func(m *MockService) {
				m.On("StartTrial", mock.Anything, "user-1").Return(models.ErrTrialAlreadyUsed)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"trial period already used"`,
		},
		{
			name: "хранилище недоступно",
			setupMock: func(m *MockService) {
				m.On("StartTrial", mock.Anything, "user-1").Return(models.ErrUnavailable)
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

			req := httptest.NewRequest(http.MethodPost, "/subscriptions/trial", nil)
			req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "user-1"))

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}

func TestTrialHandler_Unauthorized(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mockService := new(MockService)
	handler := New(logger, mockService)

	req := httptest.NewRequest(http.MethodPost, "/subscriptions/trial", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "StartTrial", mock.Anything, mock.Anything)
}
