// Package smtp содержит транспорт исходящей почты для писем авторам
// конспектов о решениях проверки. Интерфейсы позволяют подменять
// SMTP-сессию в тестах воркера уведомлений.
package smtp

import "io"

// Client — минимальный набор операций SMTP-сессии,
// достаточный для отправки одного письма автору.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface устанавливает SMTP-сессию и сообщает адрес отправителя.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
