package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bhargav676/intern/domain"
)

const alertLogCapacity = 100 // Keep the last 100 alerts

// AlertLog remembers the most recent alerts for the admin notifications view.
// It is an EventSink that ignores everything except newAlert.
type AlertLog struct {
	mu       sync.RWMutex
	buffer   []domain.AlertPayload
	capacity int
}

func NewAlertLog() *AlertLog {
	return &AlertLog{
		buffer:   make([]domain.AlertPayload, 0, alertLogCapacity),
		capacity: alertLogCapacity,
	}
}

// Publish implements repositories.EventSink
func (l *AlertLog) Publish(ctx context.Context, event domain.Event) error {
	if event.Type != domain.EventNewAlert {
		return nil
	}
	switch alert := event.Payload.(type) {
	case domain.AlertPayload:
		l.Add(alert)
	case *domain.AlertPayload:
		l.Add(*alert)
	case json.RawMessage:
		// relayed from another instance
		var decoded domain.AlertPayload
		if err := json.Unmarshal(alert, &decoded); err != nil {
			return fmt.Errorf("decode relayed alert: %w", err)
		}
		l.Add(decoded)
	}
	return nil
}

func (l *AlertLog) Add(alert domain.AlertPayload) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buffer) >= l.capacity {
		// Remove the oldest element
		l.buffer = l.buffer[1:]
	}
	l.buffer = append(l.buffer, alert)
}

// Recent returns up to count alerts, newest first
func (l *AlertLog) Recent(count int) []domain.AlertPayload {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if count <= 0 || count > len(l.buffer) {
		count = len(l.buffer)
	}
	result := make([]domain.AlertPayload, 0, count)
	for i := len(l.buffer) - 1; i >= len(l.buffer)-count; i-- {
		result = append(result, l.buffer[i])
	}
	return result
}
