package influx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain"
	"github.com/bhargav676/intern/domain/entities"
)

type fakeWriter struct {
	points []*write.Point
}

func (f *fakeWriter) WritePoint(ctx context.Context, point ...*write.Point) error {
	f.points = append(f.points, point...)
	return nil
}

func TestMirrorPublish(t *testing.T) {
	w := &fakeWriter{}
	m := &Mirror{writer: w, logger: zap.NewNop()}

	r := entities.NewReading("owner-1", "WM-1", 9.5, 3, 300, 1, 2)
	r.Timestamp = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	payload := &domain.SensorDataPayload{Reading: r, Status: entities.AssessReading(r)}

	ctx := context.Background()
	_ = m.Publish(ctx, domain.Event{Type: domain.EventNewSensorData, Payload: payload})
	_ = m.Publish(ctx, domain.Event{Type: domain.EventNewUserSensorData, Payload: payload})
	_ = m.Publish(ctx, domain.Event{Type: domain.EventNewAlert, Payload: domain.AlertPayload{}})

	if len(w.points) != 1 {
		t.Fatalf("Expected 1 point, got %d", len(w.points))
	}

	line := write.PointToLineProtocol(w.points[0], time.Nanosecond)
	for _, want := range []string{"water_quality,", "device_id=WM-1", "status=alert", "ph=9.5"} {
		if !strings.Contains(line, want) {
			t.Errorf("Line protocol %q missing %q", line, want)
		}
	}
}
