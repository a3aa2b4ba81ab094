package repositories

import (
	"context"

	"github.com/bhargav676/intern/domain/entities"
)

// NotificationKind tells receivers why a notification was sent
type NotificationKind string

const (
	NotificationAlert          NotificationKind = "alert"
	NotificationWelcome        NotificationKind = "welcome"
	NotificationAccountDeleted NotificationKind = "account_deleted"
)

// Notification is an out-of-band message for an account holder
type Notification struct {
	Kind     NotificationKind
	To       string
	Name     string
	Subject  string
	Body     string
	AccessID string
	Reading  *entities.Reading
}

// Notifier delivers notifications over some channel (email, webhook)
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
