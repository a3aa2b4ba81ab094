package repositories

import (
	"context"

	"github.com/bhargav676/intern/domain"
)

// EventSink receives every event published by the ingestion pipeline
type EventSink interface {
	Publish(ctx context.Context, event domain.Event) error
}
