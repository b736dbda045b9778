package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// RecordDownload фиксирует успешное скачивание в одной транзакции:
// увеличивает счётчик скачиваний конспекта (только пока он опубликован),
// при consumeTrial списывает единицу пробной квоты и дописывает запись
// аудита. Любое невыполнившееся условие откатывает всю транзакцию,
// частичных записей не остаётся.
//
// Возвращает ErrInvalidTransition, если конспект успел покинуть статус
// published, и ErrQuotaExceeded, если пробная квота уже исчерпана.
func (s *Storage) RecordDownload(ctx context.Context, noteID, userUID string, consumeTrial bool, now time.Time) error {
	const op = "storage.RecordDownload"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	noteQuery := `UPDATE notes
			  SET downloads_count = downloads_count + 1
			  WHERE id = $1 AND status = 'published'`
	result, err := tx.ExecContext(ctx, noteQuery, noteID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrInvalidTransition)
	}

	if consumeTrial {
		result, err = tx.ExecContext(ctx, consumeTrialQuotaQuery, userUID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		rowsAffected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%s: %w", op, models.ErrQuotaExceeded)
		}
	}

	auditQuery := `INSERT INTO downloads (note_id, user_uid, downloaded_at)
			  VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctx, auditQuery, noteID, userUID, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
