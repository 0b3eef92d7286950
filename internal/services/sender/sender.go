// Package sender содержит отправку служебных писем: напоминание имени
// пользователя, ссылку восстановления пароля и уведомления подписчиков
// об одобренных статьях и новых рассылках.
package sender

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/news-publisher/internal/lib/sl"
	"github.com/magabrotheeeer/news-publisher/internal/lib/smtp"
	"github.com/magabrotheeeer/news-publisher/internal/models"
)

// SenderService отправляет письма через SMTP транспорт.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
	baseURL   string
}

// NewSenderService создает новый экземпляр SenderService.
// baseURL — внешний адрес приложения, из него собираются ссылки в письмах.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface, baseURL string) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// SendUsernameReminder отправляет письмо со списком имён пользователей,
// зарегистрированных на адрес.
func (s *SenderService) SendUsernameReminder(email string, usernames []string) error {
	subject := "Your usernames"
	bodyText := fmt.Sprintf("Hello!\n\nThe following usernames are registered for this email address:\n\n%s\n\nIf you did not request this reminder, you can ignore this message.",
		strings.Join(usernames, "\n"))

	return s.sendEmail([]string{email}, subject, bodyText)
}

// SendPasswordResetLink отправляет письмо со ссылкой восстановления пароля.
// rawToken — сырой секрет; в письме он появляется единственный раз.
func (s *SenderService) SendPasswordResetLink(user *models.User, rawToken string) error {
	link := fmt.Sprintf("%s/api/v1/account/reset/%s", s.baseURL, rawToken)
	subject := "Password reset"
	bodyText := fmt.Sprintf("Hello, %s!\n\nTo reset your password, follow the link below:\n\n%s\n\nThe link is valid for a limited time and can be used once.",
		user.Username, link)

	return s.sendEmail([]string{user.Email}, subject, bodyText)
}

// SendArticleApproved уведомляет подписчиков издателя об одобренной статье.
// Отправка идёт по одному получателю: сбой на одном адресе логируется
// и не прерывает рассылку остальным. Возвращает число успешных отправок.
func (s *SenderService) SendArticleApproved(article *models.Article, publisherName string, recipients []string) int {
	subject := fmt.Sprintf("New article from %s", publisherName)
	bodyText := fmt.Sprintf("Hello!\n\nA new article has been published by %s:\n\n%s\n\n%s",
		publisherName, article.Title, article.Body)

	sent := 0
	for _, addr := range recipients {
		if err := s.sendEmail([]string{addr}, subject, bodyText); err != nil {
			s.log.Warn("failed to notify subscriber", slog.String("recipient", addr), sl.Err(err))
			continue
		}
		sent++
	}
	return sent
}

// SendNewsletter отправляет рассылку подписчикам. Как и для статей,
// сбой на одном получателе не прерывает остальных.
func (s *SenderService) SendNewsletter(newsletter *models.Newsletter, recipients []string) int {
	sent := 0
	for _, addr := range recipients {
		if err := s.sendEmail([]string{addr}, newsletter.Subject, newsletter.Content); err != nil {
			s.log.Warn("failed to send newsletter", slog.String("recipient", addr), sl.Err(err))
			continue
		}
		sent++
	}
	return sent
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
		s.log.Error("Failed to connect to SMTP server", "error", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("Failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("Failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("Failed to get Data writer", "error", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("Failed to write email body", "error", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("Failed to close Data writer", "error", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("Failed to quit SMTP client", "error", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
