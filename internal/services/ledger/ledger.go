// Package services содержит бизнес-логику уровней доступа пользователя:
// пробный период, оформление premium-подписки и списание квоты
// пробных скачиваний. Этот сервис — единственный писатель уровня доступа.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// StartTrial включает пробный доступ, если он ещё не выдавался.
	StartTrial(ctx context.Context, userUID string) (int, error)
	// ActivatePremium устанавливает premium-доступ до expiresAt.
	ActivatePremium(ctx context.Context, userUID string, expiresAt time.Time) (int, error)
	// ConsumeTrialDownload условно списывает одно пробное скачивание.
	ConsumeTrialDownload(ctx context.Context, userUID string) (int, error)
}

// LedgerService реализует операции над уровнем доступа пользователя.
type LedgerService struct {
	repo UserRepository
	log  *slog.Logger
}

// NewLedgerService создает новый экземпляр LedgerService.
func NewLedgerService(repo UserRepository, log *slog.Logger) *LedgerService {
	return &LedgerService{
		repo: repo,
		log:  log,
	}
}

// EffectiveTier возвращает действующий уровень доступа на момент now.
// Чистая функция: premium с истёкшим сроком деградирует до free лениво,
// при каждой проверке, без фонового таймера. Результат нигде не кешируется.
func EffectiveTier(u *models.User, now time.Time) models.AccessTier {
	if u.Tier == models.TierPremium && u.PremiumExpiresAt != nil && u.PremiumExpiresAt.Before(now) {
		return models.TierFree
	}
	return u.Tier
}

// StartTrial включает пробный доступ. Пробный период выдаётся один раз
// за всю жизнь учётной записи: повторный запрос после использования
// или истечения — ErrTrialAlreadyUsed.
func (s *LedgerService) StartTrial(ctx context.Context, userUID string) error {
	rows, err := s.repo.StartTrial(ctx, userUID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrTrialAlreadyUsed
	}
	s.log.Info("trial started", slog.String("user_uid", userUID))
	return nil
}

// Subscribe переводит пользователя на premium до expiresAt по данным,
// которые сообщил платёжный шлюз. Допустим с любого прежнего уровня —
// путь только вверх, понижение происходит естественным истечением срока.
func (s *LedgerService) Subscribe(ctx context.Context, userUID, plan string, expiresAt time.Time) error {
	rows, err := s.repo.ActivatePremium(ctx, userUID, expiresAt)
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	s.log.Info("premium subscription activated",
		slog.String("user_uid", userUID),
		slog.String("plan", plan),
		slog.Time("expires_at", expiresAt))
	return nil
}

// ConsumeTrialDownload списывает одно пробное скачивание. Условный
// инкремент гарантирует, что два конкурентных запроса не спишут одну
// и ту же последнюю единицу квоты: проигравший получает ErrQuotaExceeded.
func (s *LedgerService) ConsumeTrialDownload(ctx context.Context, userUID string) error {
	rows, err := s.repo.ConsumeTrialDownload(ctx, userUID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrQuotaExceeded
	}
	return nil
}
