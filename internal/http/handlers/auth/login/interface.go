package login

import (
	"context"
)

// Service описывает бизнес-логику входа пользователя.
type Service interface {
	Login(ctx context.Context, username, password string) (token, role string, err error)
}
