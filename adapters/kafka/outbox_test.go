package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain"
	"github.com/bhargav676/intern/domain/entities"
)

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestOutboxPublish(t *testing.T) {
	w := &fakeWriter{}
	o := &Outbox{writer: w, logger: zap.NewNop()}
	ctx := context.Background()

	r := entities.NewReading("owner-1", "user-owner-1", 7, 1, 100, 1, 2)
	payload := &domain.SensorDataPayload{Reading: r, Status: entities.AssessReading(r)}

	events := []domain.Event{
		{Type: domain.EventNewSensorData, Key: "owner-1", Payload: payload, OccurredAt: time.Now()},
		{Type: domain.EventNewUserSensorData, Key: "owner-1", Payload: payload},
		{Type: domain.EventNewAlert, Key: "owner-1", Payload: domain.AlertPayload{ID: "a1"}, Origin: "other-instance"},
	}
	for _, e := range events {
		if err := o.Publish(ctx, e); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	if len(w.msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "owner-1" {
		t.Errorf("Expected key owner-1, got %s", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != "newSensorData" {
		t.Errorf("Unexpected headers %v", msg.Headers)
	}

	var decoded struct {
		Event string `json:"event"`
		Data  struct {
			PH     float64 `json:"ph"`
			Status struct {
				Overall string `json:"overall"`
			} `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("Invalid message value: %v", err)
	}
	if decoded.Event != "newSensorData" || decoded.Data.PH != 7 || decoded.Data.Status.Overall != "safe" {
		t.Errorf("Unexpected message body %s", msg.Value)
	}
}
