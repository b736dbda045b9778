// Package models содержит доменную модель пользователя маркетплейса,
// включающую данные учётной записи, роль и уровень доступа к скачиваниям.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей системы.
const (
	RoleStudent  = "student"
	RoleTopper   = "topper"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

// AccessTier описывает уровень доступа пользователя к платным конспектам.
type AccessTier string

const (
	// TierFree — доступ только к бесплатным конспектам.
	TierFree AccessTier = "free"
	// TierTrial — пробный доступ с ограниченной квотой скачиваний.
	TierTrial AccessTier = "trial"
	// TierPremium — полный доступ до даты истечения подписки.
	TierPremium AccessTier = "premium"
)

// User представляет зарегистрированного пользователя системы.
// PremiumExpiresAt заполняется только при уровне premium; после истечения
// эффективный уровень деградирует до free лениво, при очередной проверке.
type User struct {
	UID                 string     // Уникальный идентификатор пользователя
	Email               string     // Электронная почта
	Username            string     // Имя пользователя (уникальное)
	PasswordHash        string     // Хэш пароля пользователя
	Role                string     // Роль: student, topper, reviewer или admin
	Tier                AccessTier // Сохранённый уровень доступа
	TrialUsed           bool       // Пробный период уже использовался (одноразовый флаг)
	TrialDownloadsUsed  int        // Израсходованная квота пробных скачиваний
	TrialDownloadsLimit int        // Размер квоты пробных скачиваний
	PremiumExpiresAt    *time.Time // Дата истечения premium-доступа
	CreatedAt           time.Time
}

// DummyRegister используется для приёма данных из JSON-запроса регистрации.
type DummyRegister struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

// DummyLogin используется для приёма данных из JSON-запроса входа.
type DummyLogin struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// DummySubscribe используется для приёма данных запроса оформления подписки.
type DummySubscribe struct {
	Plan         string `json:"plan" validate:"required,oneof=monthly yearly"`
	PaymentToken string `json:"payment_token" validate:"required"`
}
