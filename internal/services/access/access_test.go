package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/notes-marketplace/internal/models"
	services "github.com/magabrotheeeer/notes-marketplace/internal/services/access"
)

// Мок для Repository
type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetNote(ctx context.Context, id string) (*models.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) RecordDownload(ctx context.Context, noteID, userUID string, consumeTrial bool, now time.Time) error {
	args := m.Called(ctx, noteID, userUID, consumeTrial, now)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func publishedNote(price int) *models.Note {
	return &models.Note{ID: "note-1", AuthorUID: "author-1", Title: "Algebra", Price: price, Status: models.StatusPublished}
}

func TestCanDownload(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name        string
		user        models.User
		note        models.Note
		wantAllowed bool
		wantReason  models.DenyReason
	}{
		{
			name:       "unpublished note is denied for everyone",
			user:       models.User{UID: "u", Tier: models.TierPremium, PremiumExpiresAt: &future},
			note:       models.Note{ID: "n", Price: 100, Status: models.StatusSubmitted},
			wantReason: models.ReasonNotPublished,
		},
		{
			name:        "free note bypasses tier check",
			user:        models.User{UID: "u", Tier: models.TierFree},
			note:        models.Note{ID: "n", Price: 0, Status: models.StatusPublished},
			wantAllowed: true,
		},
		{
			name:       "paid note requires subscription on free tier",
			user:       models.User{UID: "u", Tier: models.TierFree},
			note:       models.Note{ID: "n", Price: 100, Status: models.StatusPublished},
			wantReason: models.ReasonSubscriptionRequired,
		},
		{
			name:        "premium downloads paid note",
			user:        models.User{UID: "u", Tier: models.TierPremium, PremiumExpiresAt: &future},
			note:        models.Note{ID: "n", Price: 100, Status: models.StatusPublished},
			wantAllowed: true,
		},
		{
			name:       "expired premium degrades to free",
			user:       models.User{UID: "u", Tier: models.TierPremium, PremiumExpiresAt: &past},
			note:       models.Note{ID: "n", Price: 100, Status: models.StatusPublished},
			wantReason: models.ReasonSubscriptionRequired,
		},
		{
			name:        "trial with remaining quota",
			user:        models.User{UID: "u", Tier: models.TierTrial, TrialDownloadsUsed: 2, TrialDownloadsLimit: 3},
			note:        models.Note{ID: "n", Price: 100, Status: models.StatusPublished},
			wantAllowed: true,
		},
		{
			name:       "trial with exhausted quota",
			user:       models.User{UID: "u", Tier: models.TierTrial, TrialDownloadsUsed: 3, TrialDownloadsLimit: 3},
			note:       models.Note{ID: "n", Price: 100, Status: models.StatusPublished},
			wantReason: models.ReasonTrialExhausted,
		},
		{
			name:        "exhausted trial still downloads free note",
			user:        models.User{UID: "u", Tier: models.TierTrial, TrialDownloadsUsed: 3, TrialDownloadsLimit: 3},
			note:        models.Note{ID: "n", Price: 0, Status: models.StatusPublished},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grant := services.CanDownload(&tt.user, &tt.note, now)
			assert.Equal(t, tt.wantAllowed, grant.Allowed)
			assert.Equal(t, tt.wantReason, grant.Reason)
			assert.Equal(t, tt.note.ID, grant.NoteID)
			assert.Equal(t, tt.user.UID, grant.UserUID)
		})
	}
}

func TestCanDownload_IsPure(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	user := models.User{UID: "u", Tier: models.TierTrial, TrialDownloadsUsed: 2, TrialDownloadsLimit: 3}
	note := models.Note{ID: "n", Price: 100, Status: models.StatusPublished}

	first := services.CanDownload(&user, &note, now)
	second := services.CanDownload(&user, &note, now)

	// Повторный вызов с теми же аргументами возвращает то же решение,
	// квота при этом не меняется
	assert.Equal(t, first, second)
	assert.Equal(t, 2, user.TrialDownloadsUsed)
}

func TestAccessService_Check_HasNoSideEffects(t *testing.T) {
	repo := new(RepoMock)
	svc := services.NewAccessService(repo, newNoopLogger())

	repo.On("GetUser", mock.Anything, "user-1").Return(&models.User{UID: "user-1", Tier: models.TierFree}, nil)
	repo.On("GetNote", mock.Anything, "note-1").Return(publishedNote(100), nil)

	grant, err := svc.Check(context.Background(), "user-1", "note-1")
	require.NoError(t, err)
	assert.False(t, grant.Allowed)
	assert.Equal(t, models.ReasonSubscriptionRequired, grant.Reason)
	repo.AssertNotCalled(t, "RecordDownload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccessService_Download_RecordsAllowedDownload(t *testing.T) {
	repo := new(RepoMock)
	svc := services.NewAccessService(repo, newNoopLogger())

	user := &models.User{UID: "user-1", Tier: models.TierTrial, TrialDownloadsUsed: 0, TrialDownloadsLimit: 3}
	repo.On("GetUser", mock.Anything, "user-1").Return(user, nil)
	repo.On("GetNote", mock.Anything, "note-1").Return(publishedNote(100), nil)
	repo.On("RecordDownload", mock.Anything, "note-1", "user-1", true, mock.Anything).Return(nil)

	grant, err := svc.Download(context.Background(), "user-1", "note-1")
	require.NoError(t, err)
	assert.True(t, grant.Allowed)
	repo.AssertExpectations(t)
}

func TestAccessService_Download_FreeNoteSkipsQuota(t *testing.T) {
	repo := new(RepoMock)
	svc := services.NewAccessService(repo, newNoopLogger())

	user := &models.User{UID: "user-1", Tier: models.TierTrial, TrialDownloadsUsed: 3, TrialDownloadsLimit: 3}
	repo.On("GetUser", mock.Anything, "user-1").Return(user, nil)
	repo.On("GetNote", mock.Anything, "note-1").Return(publishedNote(0), nil)
	repo.On("RecordDownload", mock.Anything, "note-1", "user-1", false, mock.Anything).Return(nil)

	grant, err := svc.Download(context.Background(), "user-1", "note-1")
	require.NoError(t, err)
	assert.True(t, grant.Allowed)
	repo.AssertExpectations(t)
}

func TestAccessService_Download_DeniedWithoutWrites(t *testing.T) {
	repo := new(RepoMock)
	svc := services.NewAccessService(repo, newNoopLogger())

	repo.On("GetUser", mock.Anything, "user-1").Return(&models.User{UID: "user-1", Tier: models.TierFree}, nil)
	repo.On("GetNote", mock.Anything, "note-1").Return(publishedNote(100), nil)

	grant, err := svc.Download(context.Background(), "user-1", "note-1")
	require.NoError(t, err)
	assert.False(t, grant.Allowed)
	assert.Equal(t, models.ReasonSubscriptionRequired, grant.Reason)
	repo.AssertNotCalled(t, "RecordDownload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAccessService_Download_RaceMapsToDenial(t *testing.T) {
	tests := []struct {
		name       string
		commitErr  error
		wantReason models.DenyReason
	}{
		{
			name:       "note left published between check and commit",
			commitErr:  fmt.Errorf("storage.RecordDownload: %w", models.ErrInvalidTransition),
			wantReason: models.ReasonNotPublished,
		},
		{
			name:       "concurrent request took the last quota unit",
			commitErr:  fmt.Errorf("storage.RecordDownload: %w", models.ErrQuotaExceeded),
			wantReason: models.ReasonTrialExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := services.NewAccessService(repo, newNoopLogger())

			user := &models.User{UID: "user-1", Tier: models.TierTrial, TrialDownloadsUsed: 0, TrialDownloadsLimit: 3}
			repo.On("GetUser", mock.Anything, "user-1").Return(user, nil)
			repo.On("GetNote", mock.Anything, "note-1").Return(publishedNote(100), nil)
			repo.On("RecordDownload", mock.Anything, "note-1", "user-1", true, mock.Anything).Return(tt.commitErr)

			grant, err := svc.Download(context.Background(), "user-1", "note-1")
			require.NoError(t, err)
			assert.False(t, grant.Allowed)
			assert.Equal(t, tt.wantReason, grant.Reason)
		})
	}
}

func TestAccessService_Download_RetriesOnceThenUnavailable(t *testing.T) {
	repo := new(RepoMock)
	svc := services.NewAccessService(repo, newNoopLogger())

	user := &models.User{UID: "user-1", Tier: models.TierFree}
	repo.On("GetUser", mock.Anything, "user-1").Return(user, nil)
	repo.On("GetNote", mock.Anything, "note-1").Return(publishedNote(0), nil)
	repo.On("RecordDownload", mock.Anything, "note-1", "user-1", false, mock.Anything).
		Return(errors.New("connection reset")).Twice()

	_, err := svc.Download(context.Background(), "user-1", "note-1")
	assert.ErrorIs(t, err, models.ErrUnavailable)
	repo.AssertExpectations(t)
}

func TestAccessService_Download_SecondAttemptSucceeds(t *testing.T) {
	repo := new(RepoMock)
	svc := services.NewAccessService(repo, newNoopLogger())

	user := &models.User{UID: "user-1", Tier: models.TierFree}
	repo.On("GetUser", mock.Anything, "user-1").Return(user, nil)
	repo.On("GetNote", mock.Anything, "note-1").Return(publishedNote(0), nil)
	repo.On("RecordDownload", mock.Anything, "note-1", "user-1", false, mock.Anything).
		Return(errors.New("connection reset")).Once()
	repo.On("RecordDownload", mock.Anything, "note-1", "user-1", false, mock.Anything).
		Return(nil).Once()

	grant, err := svc.Download(context.Background(), "user-1", "note-1")
	require.NoError(t, err)
	assert.True(t, grant.Allowed)
	repo.AssertExpectations(t)
}

func TestAccessService_Download_UnknownUser(t *testing.T) {
	repo := new(RepoMock)
	svc := services.NewAccessService(repo, newNoopLogger())

	repo.On("GetUser", mock.Anything, "ghost").Return(nil, models.ErrNotFound)

	_, err := svc.Download(context.Background(), "ghost", "note-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
