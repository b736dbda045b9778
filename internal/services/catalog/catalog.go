// Package services содержит бизнес-логику каталога конспектов для
// витринных чтений, включая кеширование.
//
// Кеш используется только для отображения: авторитетные проверки доступа
// читают хранилище напрямую и через этот сервис не ходят.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// NoteRepository определяет методы для чтения конспектов из хранилища.
type NoteRepository interface {
	// GetNote возвращает конспект по ID.
	GetNote(ctx context.Context, id string) (*models.Note, error)
	// ListPublishedNotes возвращает опубликованные конспекты с пагинацией.
	ListPublishedNotes(ctx context.Context, limit, offset int) ([]*models.Note, error)
	// IncrementViews увеличивает счётчик просмотров.
	IncrementViews(ctx context.Context, id string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// CatalogService реализует витринные чтения каталога с кешированием.
type CatalogService struct {
	repo  NoteRepository
	cache Cache
	log   *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo NoteRepository, cache Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Read возвращает конспект по ID, используя кеш или хранилище,
// и увеличивает счётчик просмотров. Ошибка инкремента не мешает чтению.
func (s *CatalogService) Read(ctx context.Context, id string) (*models.Note, error) {
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		s.log.Warn("failed to increment views", sl.Note(id), sl.Err(err))
	}

	var result *models.Note
	cacheKey := fmt.Sprintf("note:%s", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if found {
		return result, nil
	}
	result, err = s.repo.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// List возвращает список опубликованных конспектов с пагинацией.
func (s *CatalogService) List(ctx context.Context, limit, offset int) ([]*models.Note, error) {
	return s.repo.ListPublishedNotes(ctx, limit, offset)
}

// InvalidateNote удаляет конспект из кеша; вызывается после решений
// проверяющего, чтобы витрина не отдавала устаревший статус.
func (s *CatalogService) InvalidateNote(id string) {
	cacheKey := fmt.Sprintf("note:%s", id)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), sl.Err(err))
	}
}
