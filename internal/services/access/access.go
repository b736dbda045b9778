// Package services содержит политику доступа к скачиваниям: чистое решение
// CanDownload и отдельную фиксацию Download с побочными эффектами.
//
// Решение и фиксация разделены намеренно: решение используется для
// отображения пейволла без каких-либо списаний, фиксация выполняет все
// побочные эффекты одной транзакцией хранилища.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	ledger "github.com/magabrotheeeer/notes-marketplace/internal/services/ledger"

	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// Repository определяет методы хранилища, нужные политике доступа.
// Записи читаются напрямую, минуя кеш каталога: действующий уровень
// доступа и статус конспекта пересчитываются при каждой проверке.
type Repository interface {
	// GetNote возвращает конспект по ID.
	GetNote(ctx context.Context, id string) (*models.Note, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// RecordDownload фиксирует скачивание одной транзакцией.
	RecordDownload(ctx context.Context, noteID, userUID string, consumeTrial bool, now time.Time) error
}

// AccessService реализует проверку и фиксацию скачиваний.
type AccessService struct {
	repo Repository
	log  *slog.Logger
}

// NewAccessService создает новый экземпляр AccessService.
func NewAccessService(repo Repository, log *slog.Logger) *AccessService {
	return &AccessService{
		repo: repo,
		log:  log,
	}
}

// CanDownload — единственная авторитетная проверка права на скачивание.
// Чистая функция без побочных эффектов: повторный вызов с теми же
// аргументами возвращает то же решение.
//
// Порядок проверок фиксирован: сначала статус конспекта, затем цена
// (бесплатные конспекты обходят проверку уровня), затем действующий
// уровень доступа пользователя.
func CanDownload(user *models.User, note *models.Note, now time.Time) models.DownloadGrant {
	grant := models.DownloadGrant{
		NoteID:    note.ID,
		UserUID:   user.UID,
		Timestamp: now,
	}

	if note.Status != models.StatusPublished {
		grant.Reason = models.ReasonNotPublished
		return grant
	}
	if note.Price == 0 {
		grant.Allowed = true
		return grant
	}

	switch ledger.EffectiveTier(user, now) {
	case models.TierPremium:
		grant.Allowed = true
	case models.TierTrial:
		if user.TrialDownloadsUsed < user.TrialDownloadsLimit {
			grant.Allowed = true
		} else {
			grant.Reason = models.ReasonTrialExhausted
		}
	default:
		grant.Reason = models.ReasonSubscriptionRequired
	}
	return grant
}

// Check возвращает решение о скачивании без побочных эффектов.
func (s *AccessService) Check(ctx context.Context, userUID, noteID string) (models.DownloadGrant, error) {
	user, note, err := s.load(ctx, userUID, noteID)
	if err != nil {
		return models.DownloadGrant{}, err
	}
	return CanDownload(user, note, time.Now().UTC()), nil
}

// Download проверяет право на скачивание и при разрешении фиксирует его:
// инкремент счётчика скачиваний, списание пробной квоты (если действующий
// уровень — trial) и запись аудита выполняются одной транзакцией.
//
// Конкурентные гонки — конспект успел покинуть published, квота успела
// исчерпаться — возвращаются как обычные отказы с причиной, а не ошибки.
// Отказ хранилища повторяется один раз со свежим чтением, затем
// возвращается ErrUnavailable.
func (s *AccessService) Download(ctx context.Context, userUID, noteID string) (models.DownloadGrant, error) {
	grant, err := s.downloadOnce(ctx, userUID, noteID)
	if err == nil {
		return grant, nil
	}
	if isDomainError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return grant, err
	}
	s.log.Warn("download commit failed, retrying once", sl.Note(noteID), sl.Err(err))

	grant, err = s.downloadOnce(ctx, userUID, noteID)
	if err != nil && !isDomainError(err) {
		return models.DownloadGrant{}, models.ErrUnavailable
	}
	return grant, err
}

func (s *AccessService) downloadOnce(ctx context.Context, userUID, noteID string) (models.DownloadGrant, error) {
	now := time.Now().UTC()
	user, note, err := s.load(ctx, userUID, noteID)
	if err != nil {
		return models.DownloadGrant{}, err
	}

	grant := CanDownload(user, note, now)
	if !grant.Allowed {
		return grant, nil
	}

	consumeTrial := note.Price > 0 && ledger.EffectiveTier(user, now) == models.TierTrial
	err = s.repo.RecordDownload(ctx, noteID, userUID, consumeTrial, now)
	switch {
	case errors.Is(err, models.ErrInvalidTransition):
		// Конспект покинул published между решением и фиксацией.
		grant.Allowed = false
		grant.Reason = models.ReasonNotPublished
		return grant, nil
	case errors.Is(err, models.ErrQuotaExceeded):
		// Конкурентный запрос списал последнюю единицу квоты.
		grant.Allowed = false
		grant.Reason = models.ReasonTrialExhausted
		return grant, nil
	case err != nil:
		return models.DownloadGrant{}, err
	}

	s.log.Info("download recorded", sl.Note(noteID),
		slog.String("user_uid", userUID), slog.Bool("trial", consumeTrial))
	return grant, nil
}

func (s *AccessService) load(ctx context.Context, userUID, noteID string) (*models.User, *models.Note, error) {
	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, nil, err
	}
	note, err := s.repo.GetNote(ctx, noteID)
	if err != nil {
		return nil, nil, err
	}
	return user, note, nil
}

func isDomainError(err error) bool {
	return errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrInvalidTransition) ||
		errors.Is(err, models.ErrQuotaExceeded)
}
