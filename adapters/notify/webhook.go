package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
)

// WebhookPayload is the JSON body posted for every alert
type WebhookPayload struct {
	Kind    repositories.NotificationKind `json:"kind"`
	To      string                        `json:"to"`
	Subject string                        `json:"subject"`
	Message string                        `json:"message,omitempty"`
	Reading *entities.Reading             `json:"reading,omitempty"`
	SentAt  time.Time                     `json:"sentAt"`
}

// WebhookNotifier forwards alert notifications to an HTTP endpoint. Account
// notifications carry access ids and are never forwarded.
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetHeader("Content-Type", "application/json")
	return &WebhookNotifier{
		client: client,
		url:    url,
		logger: logger,
	}
}

// Notify implements repositories.Notifier
func (w *WebhookNotifier) Notify(ctx context.Context, n repositories.Notification) error {
	if n.Kind != repositories.NotificationAlert {
		return nil
	}

	subject := n.Subject
	if subject == "" {
		subject = defaultSubjects[n.Kind]
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(WebhookPayload{
			Kind:    n.Kind,
			To:      n.To,
			Subject: subject,
			Message: n.Body,
			Reading: n.Reading,
			SentAt:  time.Now().UTC(),
		}).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("failed to call alert webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("alert webhook returned %s", resp.Status())
	}

	w.logger.Debug("Alert webhook delivered", zap.Int("status", resp.StatusCode()))
	return nil
}
