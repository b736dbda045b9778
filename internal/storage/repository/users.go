package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

const userColumns = `uid, email, username, password_hash, role, tier, trial_used,
			      trial_downloads_used, trial_downloads_limit, premium_expires_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	var premiumExpiresAt sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.Tier, &u.TrialUsed, &u.TrialDownloadsUsed, &u.TrialDownloadsLimit,
		&premiumExpiresAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if premiumExpiresAt.Valid {
		u.PremiumExpiresAt = &premiumExpiresAt.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его ID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, username, password_hash, role, tier)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.Tier).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// StartTrial включает пробный доступ. Одноразовый флаг trial_used входит
// в условие обновления, поэтому повторная выдача пробного периода
// невозможна: ноль изменённых строк означает, что период уже выдавался.
func (s *Storage) StartTrial(ctx context.Context, userUID string) (int, error) {
	const op = "storage.StartTrial"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET tier = 'trial', trial_used = true, trial_downloads_used = 0
			  WHERE uid = $1 AND trial_used = false`
	result, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ActivatePremium переводит пользователя на уровень premium до expiresAt.
// Путь только вверх: понижение происходит лениво по истечении срока.
func (s *Storage) ActivatePremium(ctx context.Context, userUID string, expiresAt time.Time) (int, error) {
	const op = "storage.ActivatePremium"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET tier = 'premium', premium_expires_at = $2
			  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, userUID, expiresAt)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// consumeTrialQuotaQuery списывает единицу пробной квоты условным
// инкрементом. Используется и отдельным ConsumeTrialDownload, и внутри
// транзакции RecordDownload.
const consumeTrialQuotaQuery = `UPDATE users
			  SET trial_downloads_used = trial_downloads_used + 1
			  WHERE uid = $1 AND tier = 'trial'
			    AND trial_downloads_used < trial_downloads_limit`

// ConsumeTrialDownload списывает одно пробное скачивание условным
// инкрементом: два конкурентных запроса не смогут списать одну и ту же
// последнюю единицу квоты. Ноль изменённых строк — квота исчерпана
// или пользователь не на пробном уровне.
func (s *Storage) ConsumeTrialDownload(ctx context.Context, userUID string) (int, error) {
	const op = "storage.ConsumeTrialDownload"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, consumeTrialQuotaQuery, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
