package paymentprovider

import "time"

// ChargeRequest запрос на списание оплаты подписки через платёжный токен.
type ChargeRequest struct {
	PaymentToken string `json:"payment_token"`
	Plan         string `json:"plan"`
	Amount       int    `json:"amount"`
	Currency     string `json:"currency"`
	UserUID      string `json:"user_uid"`
}

// ChargeResponse ответ шлюза на списание.
type ChargeResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	PaymentID string    `json:"payment_id"`
	PaidAt    time.Time `json:"paid_at"`
}
