package models

import "time"

// DenyReason объясняет, почему скачивание запрещено.
// Это не ошибки, а типизированные решения: вызывающая сторона показывает
// по ним конкретное сообщение (пейволл, «конспект не опубликован» и т.д.).
type DenyReason string

const (
	// ReasonNotPublished — конспект не находится в статусе published.
	ReasonNotPublished DenyReason = "NotPublished"
	// ReasonSubscriptionRequired — платный конспект недоступен на уровне free.
	ReasonSubscriptionRequired DenyReason = "SubscriptionRequired"
	// ReasonTrialExhausted — квота пробных скачиваний израсходована.
	ReasonTrialExhausted DenyReason = "TrialExhausted"
)

// DownloadGrant — решение о скачивании конспекта. Само по себе не имеет
// побочных эффектов: квота списывается отдельным шагом, поэтому решение
// можно использовать для отображения пейволла без фиксации.
type DownloadGrant struct {
	NoteID    string     `json:"note_id"`
	UserUID   string     `json:"user_uid"`
	Allowed   bool       `json:"allowed"`
	Reason    DenyReason `json:"reason,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
