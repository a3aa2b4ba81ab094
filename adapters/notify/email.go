package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/config"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier sends email notifications over SMTP
type EmailNotifier struct {
	config   config.SMTPConfig
	logger   *zap.Logger
	sendMail sendMailFunc
}

// NewEmailNotifier creates a new email notifier
func NewEmailNotifier(cfg config.SMTPConfig, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		config:   cfg,
		logger:   logger,
		sendMail: smtp.SendMail,
	}
}

// Notify implements repositories.Notifier
func (e *EmailNotifier) Notify(ctx context.Context, n repositories.Notification) error {
	if n.To == "" {
		return fmt.Errorf("notification %s has no recipient", n.Kind)
	}

	subject, body, err := Render(n)
	if err != nil {
		return err
	}

	// Skip sending if SMTP is not configured
	if !e.config.Enabled() {
		e.logger.Info("SMTP not configured, skipping email",
			zap.String("kind", string(n.Kind)),
			zap.String("to", n.To),
			zap.String("subject", subject))
		return nil
	}

	message := fmt.Sprintf("From: %s\r\n", e.config.From)
	message += fmt.Sprintf("To: %s\r\n", n.To)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += "Content-Type: text/plain; charset=UTF-8\r\n"
	message += "\r\n"
	message += body

	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	if err := e.sendMail(addr, auth, e.config.From, []string{n.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.logger.Info("Email sent",
		zap.String("kind", string(n.Kind)),
		zap.String("to", n.To))
	return nil
}
