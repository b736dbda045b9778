package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

const noteColumns = `id, author_uid, subject, title, price, status, reviewer_uid,
			      review_comment, downloads_count, views_count, created_at,
			      submitted_at, decided_at, published_at`

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	var n models.Note
	var reviewerUID, reviewComment sql.NullString
	var submittedAt, decidedAt, publishedAt sql.NullTime
	if err := row.Scan(&n.ID, &n.AuthorUID, &n.Subject, &n.Title, &n.Price, &n.Status,
		&reviewerUID, &reviewComment, &n.DownloadsCount, &n.ViewsCount, &n.CreatedAt,
		&submittedAt, &decidedAt, &publishedAt); err != nil {
		return nil, err
	}
	if reviewerUID.Valid {
		n.ReviewerUID = &reviewerUID.String
	}
	if reviewComment.Valid {
		n.ReviewComment = &reviewComment.String
	}
	if submittedAt.Valid {
		n.SubmittedAt = &submittedAt.Time
	}
	if decidedAt.Valid {
		n.DecidedAt = &decidedAt.Time
	}
	if publishedAt.Valid {
		n.PublishedAt = &publishedAt.Time
	}
	return &n, nil
}

// CreateNote сохраняет новый черновик конспекта.
func (s *Storage) CreateNote(ctx context.Context, note models.Note) error {
	const op = "storage.CreateNote"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO notes (id, author_uid, subject, title, price, status)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.DB.ExecContext(ctx, query,
		note.ID, note.AuthorUID, note.Subject, note.Title, note.Price, note.Status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetNote возвращает конспект по его ID.
func (s *Storage) GetNote(ctx context.Context, id string) (*models.Note, error) {
	const op = "storage.GetNote"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = $1`
	note, err := scanNote(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return note, nil
}

// MarkSubmitted переводит конспект в статус submitted условным обновлением:
// переход разрешён только из draft или rejected. Данные прошлого решения
// (проверяющий и комментарий) очищаются — они заполнены только у
// опубликованных и отклонённых конспектов, история остаётся в note_rejections.
// Возвращает количество изменённых строк — ноль означает, что условие
// перехода не выполнилось.
func (s *Storage) MarkSubmitted(ctx context.Context, id string, now time.Time) (int, error) {
	const op = "storage.MarkSubmitted"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notes
			  SET status = 'submitted', submitted_at = $2,
			      reviewer_uid = NULL, review_comment = NULL
			  WHERE id = $1 AND status IN ('draft', 'rejected')`
	result, err := s.DB.ExecContext(ctx, query, id, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkPublished переводит конспект из submitted в published, фиксируя
// проверяющего и комментарий. Условие status = 'submitted' проверяется
// атомарно в момент записи: из двух конкурентных решений выигрывает одно.
func (s *Storage) MarkPublished(ctx context.Context, id, reviewerUID, comment string, now time.Time) (int, error) {
	const op = "storage.MarkPublished"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notes
			  SET status = 'published', published_at = $3, decided_at = $3,
			      reviewer_uid = $2, review_comment = $4
			  WHERE id = $1 AND status = 'submitted'`
	result, err := s.DB.ExecContext(ctx, query, id, reviewerUID, now, comment)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// MarkRejected переводит конспект из submitted в rejected и дописывает
// запись в историю отклонений в одной транзакции. Если условие перехода
// не выполнилось, транзакция откатывается и запись в историю не попадает.
func (s *Storage) MarkRejected(ctx context.Context, id, reviewerUID, comment string, now time.Time) (int, error) {
	const op = "storage.MarkRejected"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE notes
			  SET status = 'rejected', decided_at = $3,
			      reviewer_uid = $2, review_comment = $4
			  WHERE id = $1 AND status = 'submitted'`
	result, err := tx.ExecContext(ctx, query, id, reviewerUID, now, comment)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return 0, nil
	}

	historyQuery := `INSERT INTO note_rejections (note_id, reviewer_uid, comment, created_at)
			  VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, historyQuery, id, reviewerUID, comment, now); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// IncrementViews увеличивает счётчик просмотров конспекта.
func (s *Storage) IncrementViews(ctx context.Context, id string) error {
	const op = "storage.IncrementViews"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE notes SET views_count = views_count + 1 WHERE id = $1`
	_, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPublishedNotes возвращает список опубликованных конспектов с пагинацией.
func (s *Storage) ListPublishedNotes(ctx context.Context, limit, offset int) ([]*models.Note, error) {
	const op = "storage.ListPublishedNotes"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + noteColumns + `
			  FROM notes
			  WHERE status = 'published'
			  ORDER BY published_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Note
	for rows.Next() {
		item, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListRejections возвращает историю отклонений конспекта в порядке добавления.
func (s *Storage) ListRejections(ctx context.Context, noteID string) ([]*models.RejectionRecord, error) {
	const op = "storage.ListRejections"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT note_id, reviewer_uid, comment, created_at
			  FROM note_rejections
			  WHERE note_id = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.RejectionRecord
	for rows.Next() {
		var item models.RejectionRecord
		if err := rows.Scan(&item.NoteID, &item.ReviewerUID, &item.Comment, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
