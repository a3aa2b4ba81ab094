package notify

import (
	"context"
	"errors"

	"github.com/bhargav676/intern/domain/repositories"
)

// Multi delivers every notification through all of its notifiers
type Multi []repositories.Notifier

// Notify implements repositories.Notifier. Every notifier is attempted and the
// failures are joined.
func (m Multi) Notify(ctx context.Context, n repositories.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
