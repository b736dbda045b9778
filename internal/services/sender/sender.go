// Package services реализует воркер почтовых уведомлений авторам:
// письма о публикации конспекта и об отклонении с комментарием проверяющего.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	libsmtp "github.com/magabrotheeeer/notes-marketplace/internal/lib/smtp"

	"github.com/magabrotheeeer/notes-marketplace/internal/lib/sl"
	"github.com/magabrotheeeer/notes-marketplace/internal/models"
)

// UserRepository описывает чтение пользователей для поиска адреса автора.
type UserRepository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, uid string) (*models.User, error)
}

// SenderService отправляет письма авторам по событиям модерации.
type SenderService struct {
	transport libsmtp.TransportInterface
	users     UserRepository
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport libsmtp.TransportInterface, users UserRepository, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		users:     users,
		log:       log,
	}
}

// SendNotePublished уведомляет автора о том, что конспект опубликован.
func (s *SenderService) SendNotePublished(body []byte) error {
	var event models.NoteEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	author, err := s.users.GetUser(context.Background(), event.AuthorUID)
	if err != nil {
		s.log.Error("failed to find note author", sl.Note(event.NoteID), sl.Err(err))
		return err
	}

	to := []string{author.Email}
	subject := "Ваш конспект опубликован"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаш конспект «%s» прошёл проверку и опубликован в каталоге.\n\nСпасибо, что делитесь материалами.",
		author.Username, event.Title)

	return s.sendEmail(to, subject, bodyText)
}

// SendNoteRejected уведомляет автора об отклонении конспекта с комментарием.
func (s *SenderService) SendNoteRejected(body []byte) error {
	var event models.NoteEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	author, err := s.users.GetUser(context.Background(), event.AuthorUID)
	if err != nil {
		s.log.Error("failed to find note author", sl.Note(event.NoteID), sl.Err(err))
		return err
	}

	to := []string{author.Email}
	subject := "Ваш конспект отклонён проверяющим"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаш конспект «%s» не прошёл проверку.\n\nКомментарий проверяющего: %s\n\nВы можете исправить замечания и отправить конспект повторно.",
		author.Username, event.Title, event.Comment)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Any("to", to))
	return nil
}
