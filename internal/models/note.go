// Package models содержит доменные структуры маркетплейса конспектов:
// конспекты, пользователей, решения о скачивании,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// NoteStatus описывает статус конспекта в жизненном цикле проверки.
type NoteStatus string

const (
	// StatusDraft — черновик, виден только автору.
	StatusDraft NoteStatus = "draft"
	// StatusSubmitted — отправлен на проверку.
	StatusSubmitted NoteStatus = "submitted"
	// StatusPublished — одобрен и доступен для скачивания.
	StatusPublished NoteStatus = "published"
	// StatusRejected — отклонён с комментарием, может быть отправлен повторно.
	StatusRejected NoteStatus = "rejected"
)

// Note представляет собой основную модель конспекта,
// используемую в бизнес-логике и хранилище.
// Временные метки SubmittedAt, DecidedAt и PublishedAt устанавливаются
// один раз соответствующим переходом и больше не очищаются.
type Note struct {
	ID             string     // Уникальный идентификатор конспекта
	AuthorUID      string     // Идентификатор автора
	Subject        string     // Учебный предмет
	Title          string     // Название конспекта
	Price          int        // Цена в монетах, 0 — бесплатный конспект
	Status         NoteStatus // Текущий статус жизненного цикла
	ReviewerUID    *string    // Проверяющий, заполняется только после решения
	ReviewComment  *string    // Комментарий проверяющего, только после решения
	DownloadsCount int        // Счётчик скачиваний, только растёт
	ViewsCount     int        // Счётчик просмотров, только растёт
	CreatedAt      time.Time
	SubmittedAt    *time.Time
	DecidedAt      *time.Time
	PublishedAt    *time.Time
}

// RejectionRecord — запись в истории отклонений конспекта.
// История только дополняется, прежние отклонения не перезаписываются.
type RejectionRecord struct {
	NoteID      string
	ReviewerUID string
	Comment     string
	CreatedAt   time.Time
}

// DummyNote используется для приёма данных из JSON-запроса на создание черновика.
type DummyNote struct {
	Subject string `json:"subject" validate:"required"`       // Учебный предмет
	Title   string `json:"title" validate:"required"`         // Название
	Price   int    `json:"price" validate:"omitempty,gte=0"`  // Цена (>= 0)
}

// DummyDecision используется для приёма решения проверяющего.
// Для отклонения комментарий обязателен, это проверяется бизнес-логикой,
// потому что пустая строка после trim тоже считается отсутствием комментария.
type DummyDecision struct {
	Comment string `json:"comment"` // Комментарий проверяющего
}

// NoteEvent — сообщение о смене статуса конспекта, публикуемое в очередь
// для уведомления автора и переиндексации каталога.
type NoteEvent struct {
	NoteID      string `json:"note_id"`
	AuthorUID   string `json:"author_uid"`
	Title       string `json:"title"`
	Kind        string `json:"kind"` // note.published или note.rejected
	ReviewerUID string `json:"reviewer_uid"`
	Comment     string `json:"comment,omitempty"`
}
