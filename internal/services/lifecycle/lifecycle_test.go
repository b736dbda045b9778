package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/notes-marketplace/internal/models"
	services "github.com/magabrotheeeer/notes-marketplace/internal/services/lifecycle"
)

// Мок для NoteRepository
type NoteRepoMock struct {
	mock.Mock
}

func (m *NoteRepoMock) CreateNote(ctx context.Context, note models.Note) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *NoteRepoMock) GetNote(ctx context.Context, id string) (*models.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *NoteRepoMock) MarkSubmitted(ctx context.Context, id string, now time.Time) (int, error) {
	args := m.Called(ctx, id, now)
	return args.Int(0), args.Error(1)
}

func (m *NoteRepoMock) MarkPublished(ctx context.Context, id, reviewerUID, comment string, now time.Time) (int, error) {
	args := m.Called(ctx, id, reviewerUID, comment, now)
	return args.Int(0), args.Error(1)
}

func (m *NoteRepoMock) MarkRejected(ctx context.Context, id, reviewerUID, comment string, now time.Time) (int, error) {
	args := m.Called(ctx, id, reviewerUID, comment, now)
	return args.Int(0), args.Error(1)
}

func (m *NoteRepoMock) ListRejections(ctx context.Context, noteID string) ([]*models.RejectionRecord, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RejectionRecord), args.Error(1)
}

// Мок для EventPublisher
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(routingKey string, message any) error {
	args := m.Called(routingKey, message)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLifecycleService_CreateDraft(t *testing.T) {
	repo := new(NoteRepoMock)
	events := new(PublisherMock)
	svc := services.NewLifecycleService(repo, events, newNoopLogger())

	repo.On("CreateNote", mock.Anything, mock.MatchedBy(func(n models.Note) bool {
		return n.Status == models.StatusDraft && n.AuthorUID == "author-1" && n.Title == "Algebra" && n.ID != ""
	})).Return(nil)

	id, err := svc.CreateDraft(context.Background(), "author-1", models.DummyNote{
		Subject: "math",
		Title:   "Algebra",
		Price:   100,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	repo.AssertExpectations(t)
}

func TestLifecycleService_Submit(t *testing.T) {
	ownedNote := &models.Note{ID: "note-1", AuthorUID: "author-1", Status: models.StatusDraft}

	tests := []struct {
		name      string
		authorUID string
		rows      int
		wantErr   error
	}{
		{
			name:      "successful submit",
			authorUID: "author-1",
			rows:      1,
			wantErr:   nil,
		},
		{
			name:      "foreign note is forbidden",
			authorUID: "author-2",
			wantErr:   models.ErrForbidden,
		},
		{
			name:      "invalid transition when not draft or rejected",
			authorUID: "author-1",
			rows:      0,
			wantErr:   models.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(NoteRepoMock)
			events := new(PublisherMock)
			svc := services.NewLifecycleService(repo, events, newNoopLogger())

			repo.On("GetNote", mock.Anything, "note-1").Return(ownedNote, nil)
			repo.On("MarkSubmitted", mock.Anything, "note-1", mock.Anything).Return(tt.rows, nil).Maybe()

			err := svc.Submit(context.Background(), "note-1", tt.authorUID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLifecycleService_Approve_PublishesEvent(t *testing.T) {
	repo := new(NoteRepoMock)
	events := new(PublisherMock)
	svc := services.NewLifecycleService(repo, events, newNoopLogger())

	note := &models.Note{ID: "note-1", AuthorUID: "author-1", Title: "Algebra", Status: models.StatusPublished}
	repo.On("MarkPublished", mock.Anything, "note-1", "reviewer-1", "good", mock.Anything).Return(1, nil)
	repo.On("GetNote", mock.Anything, "note-1").Return(note, nil)
	events.On("Publish", "note.published", mock.MatchedBy(func(e models.NoteEvent) bool {
		return e.NoteID == "note-1" && e.Kind == "note.published" && e.ReviewerUID == "reviewer-1"
	})).Return(nil)

	err := svc.Approve(context.Background(), "note-1", "reviewer-1", "good")
	require.NoError(t, err)
	events.AssertExpectations(t)
}

func TestLifecycleService_Approve_LoserGetsInvalidTransition(t *testing.T) {
	repo := new(NoteRepoMock)
	events := new(PublisherMock)
	svc := services.NewLifecycleService(repo, events, newNoopLogger())

	repo.On("MarkPublished", mock.Anything, "note-1", "reviewer-2", "", mock.Anything).Return(0, nil)

	err := svc.Approve(context.Background(), "note-1", "reviewer-2", "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestLifecycleService_Approve_EventFailureDoesNotRollBack(t *testing.T) {
	repo := new(NoteRepoMock)
	events := new(PublisherMock)
	svc := services.NewLifecycleService(repo, events, newNoopLogger())

	note := &models.Note{ID: "note-1", AuthorUID: "author-1", Title: "Algebra", Status: models.StatusPublished}
	repo.On("MarkPublished", mock.Anything, "note-1", "reviewer-1", "", mock.Anything).Return(1, nil)
	repo.On("GetNote", mock.Anything, "note-1").Return(note, nil)
	events.On("Publish", "note.published", mock.Anything).Return(errors.New("broker down"))

	// Переход уже зафиксирован, потеря события не ошибка вызова
	err := svc.Approve(context.Background(), "note-1", "reviewer-1", "")
	assert.NoError(t, err)
}

func TestLifecycleService_Reject(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		rows    int
		wantErr error
	}{
		{
			name:    "successful reject",
			comment: "missing chapter 3",
			rows:    1,
		},
		{
			name:    "empty comment",
			comment: "",
			wantErr: models.ErrEmptyComment,
		},
		{
			name:    "whitespace comment",
			comment: "   \t\n",
			wantErr: models.ErrEmptyComment,
		},
		{
			name:    "note is not under review",
			comment: "bad",
			rows:    0,
			wantErr: models.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(NoteRepoMock)
			events := new(PublisherMock)
			svc := services.NewLifecycleService(repo, events, newNoopLogger())

			note := &models.Note{ID: "note-1", AuthorUID: "author-1", Title: "Algebra", Status: models.StatusRejected}
			repo.On("MarkRejected", mock.Anything, "note-1", "reviewer-1", tt.comment, mock.Anything).Return(tt.rows, nil).Maybe()
			repo.On("GetNote", mock.Anything, "note-1").Return(note, nil).Maybe()
			events.On("Publish", "note.rejected", mock.Anything).Return(nil).Maybe()

			err := svc.Reject(context.Background(), "note-1", "reviewer-1", tt.comment)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if errors.Is(tt.wantErr, models.ErrEmptyComment) {
					repo.AssertNotCalled(t, "MarkRejected", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLifecycleService_RetriesWriteOnce(t *testing.T) {
	repo := new(NoteRepoMock)
	events := new(PublisherMock)
	svc := services.NewLifecycleService(repo, events, newNoopLogger())

	note := &models.Note{ID: "note-1", AuthorUID: "author-1", Status: models.StatusDraft}
	repo.On("GetNote", mock.Anything, "note-1").Return(note, nil)
	repo.On("MarkSubmitted", mock.Anything, "note-1", mock.Anything).Return(0, errors.New("connection reset")).Once()
	repo.On("MarkSubmitted", mock.Anything, "note-1", mock.Anything).Return(1, nil).Once()

	err := svc.Submit(context.Background(), "note-1", "author-1")
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestLifecycleService_SecondFailureIsUnavailable(t *testing.T) {
	repo := new(NoteRepoMock)
	events := new(PublisherMock)
	svc := services.NewLifecycleService(repo, events, newNoopLogger())

	note := &models.Note{ID: "note-1", AuthorUID: "author-1", Status: models.StatusDraft}
	repo.On("GetNote", mock.Anything, "note-1").Return(note, nil)
	repo.On("MarkSubmitted", mock.Anything, "note-1", mock.Anything).Return(0, errors.New("connection reset")).Twice()

	err := svc.Submit(context.Background(), "note-1", "author-1")
	assert.ErrorIs(t, err, models.ErrUnavailable)
	repo.AssertExpectations(t)
}
