package services_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/notes-marketplace/internal/models"
	services "github.com/magabrotheeeer/notes-marketplace/internal/services/review"
)

// Мок для Lifecycle
type LifecycleMock struct {
	mock.Mock
}

func (m *LifecycleMock) Approve(ctx context.Context, noteID, reviewerUID, comment string) error {
	args := m.Called(ctx, noteID, reviewerUID, comment)
	return args.Error(0)
}

func (m *LifecycleMock) Reject(ctx context.Context, noteID, reviewerUID, comment string) error {
	args := m.Called(ctx, noteID, reviewerUID, comment)
	return args.Error(0)
}

// Мок для CatalogInvalidator
type CatalogMock struct {
	mock.Mock
}

func (m *CatalogMock) InvalidateNote(id string) {
	m.Called(id)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestReviewService_RoleGate(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		wantErr   error
		delegated bool
	}{
		{name: "student cannot decide", role: models.RoleStudent, wantErr: models.ErrForbidden},
		{name: "topper cannot decide", role: models.RoleTopper, wantErr: models.ErrForbidden},
		{name: "reviewer decides", role: models.RoleReviewer, delegated: true},
		{name: "admin decides", role: models.RoleAdmin, delegated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lifecycle := new(LifecycleMock)
			catalog := new(CatalogMock)
			svc := services.NewReviewService(lifecycle, catalog, newNoopLogger())

			if tt.delegated {
				lifecycle.On("Approve", mock.Anything, "note-1", "rev-1", "ok").Return(nil)
				catalog.On("InvalidateNote", "note-1").Return()
			}

			err := svc.Approve(context.Background(), tt.role, "note-1", "rev-1", "ok")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				lifecycle.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			lifecycle.AssertExpectations(t)
			catalog.AssertExpectations(t)
		})
	}
}

func TestReviewService_Reject_RoleGate(t *testing.T) {
	lifecycle := new(LifecycleMock)
	catalog := new(CatalogMock)
	svc := services.NewReviewService(lifecycle, catalog, newNoopLogger())

	err := svc.Reject(context.Background(), models.RoleStudent, "note-1", "rev-1", "too short")
	assert.ErrorIs(t, err, models.ErrForbidden)
	lifecycle.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	catalog.AssertNotCalled(t, "InvalidateNote", mock.Anything)
}

func TestReviewService_Reject_InvalidatesCache(t *testing.T) {
	lifecycle := new(LifecycleMock)
	catalog := new(CatalogMock)
	svc := services.NewReviewService(lifecycle, catalog, newNoopLogger())

	lifecycle.On("Reject", mock.Anything, "note-1", "rev-1", "sources missing").Return(nil)
	catalog.On("InvalidateNote", "note-1").Return()

	err := svc.Reject(context.Background(), models.RoleReviewer, "note-1", "rev-1", "sources missing")
	assert.NoError(t, err)
	catalog.AssertExpectations(t)
}

func TestReviewService_LifecycleFailureSkipsInvalidation(t *testing.T) {
	lifecycle := new(LifecycleMock)
	catalog := new(CatalogMock)
	svc := services.NewReviewService(lifecycle, catalog, newNoopLogger())

	lifecycle.On("Approve", mock.Anything, "note-1", "rev-1", "").Return(models.ErrInvalidTransition)

	err := svc.Approve(context.Background(), models.RoleAdmin, "note-1", "rev-1", "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	catalog.AssertNotCalled(t, "InvalidateNote", mock.Anything)
}
