// Package services содержит оркестратор действий проверяющего: проверку
// роли и делегирование решений машине состояний конспекта. Собственного
// состояния сервис не хранит.
package services

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// Lifecycle описывает переходы машины состояний, доступные проверяющему.
type Lifecycle interface {
	Approve(ctx context.Context, noteID, reviewerUID, comment string) error
	Reject(ctx context.Context, noteID, reviewerUID, comment string) error
}

// CatalogInvalidator сбрасывает витринный кеш конспекта после решения,
// чтобы каталог не отдавал устаревший статус.
type CatalogInvalidator interface {
	InvalidateNote(id string)
}

// ReviewService проверяет право роли выносить решения и делегирует их.
type ReviewService struct {
	lifecycle Lifecycle
	catalog   CatalogInvalidator
	log       *slog.Logger
}

// NewReviewService создает новый экземпляр ReviewService.
func NewReviewService(lifecycle Lifecycle, catalog CatalogInvalidator, log *slog.Logger) *ReviewService {
	return &ReviewService{
		lifecycle: lifecycle,
		catalog:   catalog,
		log:       log,
	}
}

// Approve публикует конспект от имени проверяющего.
// Решения выносят только роли reviewer и admin, остальным — ErrForbidden.
func (s *ReviewService) Approve(ctx context.Context, reviewerRole, noteID, reviewerUID, comment string) error {
	if !canReview(reviewerRole) {
		return models.ErrForbidden
	}
	if err := s.lifecycle.Approve(ctx, noteID, reviewerUID, comment); err != nil {
		return err
	}
	s.catalog.InvalidateNote(noteID)
	return nil
}

// Reject отклоняет конспект от имени проверяющего. Комментарий обязателен;
// его валидирует машина состояний, уведомление автора уходит событием.
func (s *ReviewService) Reject(ctx context.Context, reviewerRole, noteID, reviewerUID, comment string) error {
	if !canReview(reviewerRole) {
		return models.ErrForbidden
	}
	if err := s.lifecycle.Reject(ctx, noteID, reviewerUID, comment); err != nil {
		return err
	}
	s.catalog.InvalidateNote(noteID)
	return nil
}

func canReview(role string) bool {
	return role == models.RoleReviewer || role == models.RoleAdmin
}
