// Package services содержит бизнес-логику жизненного цикла конспекта:
// создание черновика, отправку на проверку и решения проверяющего.
//
// Все переходы выполняются условными записями в хранилище: условие
// «текущий статус допускает переход» проверяется атомарно в момент
// фиксации, поэтому из двух конкурентных решений по одному конспекту
// выигрывает ровно одно, а второе получает ErrInvalidTransition.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/notes-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// NoteRepository определяет методы для работы с конспектами в хранилище.
type NoteRepository interface {
	// CreateNote сохраняет новый черновик.
	CreateNote(ctx context.Context, note models.Note) error
	// GetNote возвращает конспект по ID.
	GetNote(ctx context.Context, id string) (*models.Note, error)
	// MarkSubmitted выполняет условный переход draft/rejected -> submitted.
	MarkSubmitted(ctx context.Context, id string, now time.Time) (int, error)
	// MarkPublished выполняет условный переход submitted -> published.
	MarkPublished(ctx context.Context, id, reviewerUID, comment string, now time.Time) (int, error)
	// MarkRejected выполняет условный переход submitted -> rejected
	// и дописывает историю отклонений в одной транзакции.
	MarkRejected(ctx context.Context, id, reviewerUID, comment string, now time.Time) (int, error)
	// ListRejections возвращает историю отклонений конспекта.
	ListRejections(ctx context.Context, noteID string) ([]*models.RejectionRecord, error)
}

// EventPublisher публикует события смены статуса для внешних потребителей.
// Доставка — fire-and-forget: ошибка публикации логируется, но не
// откатывает уже зафиксированный переход.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// LifecycleService реализует машину состояний конспекта.
type LifecycleService struct {
	repo   NoteRepository
	events EventPublisher
	log    *slog.Logger
}

// NewLifecycleService создает новый экземпляр LifecycleService.
func NewLifecycleService(repo NoteRepository, events EventPublisher, log *slog.Logger) *LifecycleService {
	return &LifecycleService{
		repo:   repo,
		events: events,
		log:    log,
	}
}

// CreateDraft создает черновик конспекта от имени автора и возвращает его ID.
func (s *LifecycleService) CreateDraft(ctx context.Context, authorUID string, req models.DummyNote) (string, error) {
	note := models.Note{
		ID:        uuid.New().String(),
		AuthorUID: authorUID,
		Subject:   req.Subject,
		Title:     req.Title,
		Price:     req.Price,
		Status:    models.StatusDraft,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return "", err
	}
	s.log.Info("created note draft", sl.Note(note.ID), slog.String("author_uid", authorUID))
	return note.ID, nil
}

// Submit отправляет конспект на проверку от имени автора. Допустим
// только из статуса draft или rejected (повторная отправка после
// отклонения); иначе — ErrInvalidTransition. Чужой конспект отправить
// нельзя — ErrForbidden.
func (s *LifecycleService) Submit(ctx context.Context, noteID, authorUID string) error {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return err
	}
	if note.AuthorUID != authorUID {
		return models.ErrForbidden
	}

	rows, err := s.withRetry(ctx, func(ctx context.Context) (int, error) {
		return s.repo.MarkSubmitted(ctx, noteID, time.Now().UTC())
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrInvalidTransition
	}
	s.log.Info("note submitted for review", sl.Note(noteID))
	return nil
}

// Approve публикует конспект, находящийся на проверке. Комментарий
// необязателен. После фиксации перехода публикуется событие
// note.published для переиндексации каталога и уведомления автора.
func (s *LifecycleService) Approve(ctx context.Context, noteID, reviewerUID, comment string) error {
	rows, err := s.withRetry(ctx, func(ctx context.Context) (int, error) {
		return s.repo.MarkPublished(ctx, noteID, reviewerUID, comment, time.Now().UTC())
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrInvalidTransition
	}
	s.log.Info("note published", sl.Note(noteID), slog.String("reviewer_uid", reviewerUID))

	s.emitEvent(ctx, noteID, rabbitmq.RoutingKeyPublished, reviewerUID, comment)
	return nil
}

// Reject отклоняет конспект с обязательным комментарием: отклонение без
// содержательной обратной связи запрещено, пустой или пробельный
// комментарий — ErrEmptyComment, статус при этом не меняется.
func (s *LifecycleService) Reject(ctx context.Context, noteID, reviewerUID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return models.ErrEmptyComment
	}

	rows, err := s.withRetry(ctx, func(ctx context.Context) (int, error) {
		return s.repo.MarkRejected(ctx, noteID, reviewerUID, comment, time.Now().UTC())
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrInvalidTransition
	}
	s.log.Info("note rejected", sl.Note(noteID), slog.String("reviewer_uid", reviewerUID))

	s.emitEvent(ctx, noteID, rabbitmq.RoutingKeyRejected, reviewerUID, comment)
	return nil
}

// History возвращает историю отклонений конспекта в порядке добавления.
func (s *LifecycleService) History(ctx context.Context, noteID string) ([]*models.RejectionRecord, error) {
	return s.repo.ListRejections(ctx, noteID)
}

// withRetry повторяет условную запись один раз при отказе хранилища.
// Условие перехода каждый раз перечитывается самой записью, поэтому
// повтор безопасен; второй отказ подряд — ErrUnavailable, состояние
// при этом не изменилось.
func (s *LifecycleService) withRetry(ctx context.Context, write func(ctx context.Context) (int, error)) (int, error) {
	rows, err := write(ctx)
	if err == nil {
		return rows, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, err
	}
	s.log.Warn("storage write failed, retrying once", sl.Err(err))

	rows, err = write(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", models.ErrUnavailable, err)
	}
	return rows, nil
}

func (s *LifecycleService) emitEvent(ctx context.Context, noteID, kind, reviewerUID, comment string) {
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		s.log.Warn("failed to load note for event", sl.Note(noteID), sl.Err(err))
		return
	}
	event := models.NoteEvent{
		NoteID:      note.ID,
		AuthorUID:   note.AuthorUID,
		Title:       note.Title,
		Kind:        kind,
		ReviewerUID: reviewerUID,
		Comment:     comment,
	}
	if err := s.events.Publish(kind, event); err != nil {
		s.log.Warn("failed to publish note event", sl.Note(noteID), sl.Err(err))
	}
}
