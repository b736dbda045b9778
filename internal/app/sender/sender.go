// Package sender собирает и запускает воркер почтовых уведомлений:
// подключение к RabbitMQ, SMTP-транспорт и потребители очередей событий.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/notes-marketplace/internal/config"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/notes-marketplace/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/notes-marketplace/internal/services/sender"
	"github.com/magabrotheeeer/notes-marketplace/internal/storage/repository"
)

// App инкапсулирует подключения воркера уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New создает воркер: подключается к хранилищу и RabbitMQ,
// настраивает очереди событий и SMTP-транспорт.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, cfg.RabbitMaxRetries, cfg.RabbitRetryDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNoteEventQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(transport, db, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителей очередей и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumeMessages(a.ch, "notes.published", a.senderService.SendNotePublished)
	if err != nil {
		a.logger.Error("failed to start notes.published consumer", slog.Any("err", err))
		return err
	}

	err = rabbitmq.ConsumeMessages(a.ch, "notes.rejected", a.senderService.SendNoteRejected)
	if err != nil {
		a.logger.Error("failed to start notes.rejected consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
