package models

import "errors"

// Доменные ошибки ядра. Все они — ожидаемые бизнес-исходы, которые
// HTTP-слой транслирует в коды ответов, ни одна не должна ронять вызывающего.
var (
	// ErrInvalidTransition — попытка недопустимого перехода статуса конспекта.
	// Её же получает проигравший из двух конкурентных решений по одному конспекту.
	ErrInvalidTransition = errors.New("invalid note status transition")

	// ErrEmptyComment — отклонение без содержательного комментария запрещено.
	ErrEmptyComment = errors.New("rejection comment must not be blank")

	// ErrQuotaExceeded — квота пробных скачиваний израсходована.
	ErrQuotaExceeded = errors.New("trial download quota exceeded")

	// ErrTrialAlreadyUsed — пробный период выдаётся только один раз.
	ErrTrialAlreadyUsed = errors.New("trial has already been used")

	// ErrForbidden — у пользователя нет роли для выполнения операции.
	ErrForbidden = errors.New("operation is not permitted for this role")

	// ErrNotFound — запись не найдена в хранилище.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable — хранилище недоступно и после повторной попытки;
	// состояние не изменилось, запрос можно повторить целиком.
	ErrUnavailable = errors.New("storage temporarily unavailable")
)
