package influx

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain"
)

const measurement = "water_quality"

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Mirror copies every stored reading into an InfluxDB bucket for long-range
// charting. MongoDB stays the system of record.
type Mirror struct {
	client influxdb2.Client
	writer pointWriter
	logger *zap.Logger
}

// NewMirror creates a new InfluxDB mirror
func NewMirror(url, token, org, bucket string, logger *zap.Logger) *Mirror {
	client := influxdb2.NewClient(url, token)
	return &Mirror{
		client: client,
		writer: client.WriteAPIBlocking(org, bucket),
		logger: logger,
	}
}

// Point converts an enriched reading into a line-protocol point
func Point(p *domain.SensorDataPayload) *write.Point {
	r := p.Reading
	return influxdb2.NewPoint(
		measurement,
		map[string]string{
			"device_id": r.DeviceID,
			"owner_id":  r.OwnerID,
			"status":    string(p.Status.Overall),
		},
		map[string]interface{}{
			"ph":        r.PH,
			"turbidity": r.Turbidity,
			"tds":       r.TDS,
			"latitude":  r.Latitude,
			"longitude": r.Longitude,
		},
		r.Timestamp,
	)
}

// Publish implements repositories.EventSink. Only locally ingested
// newSensorData events are mirrored.
func (m *Mirror) Publish(ctx context.Context, event domain.Event) error {
	if event.Type != domain.EventNewSensorData || event.Origin != "" {
		return nil
	}
	payload, ok := event.Payload.(*domain.SensorDataPayload)
	if !ok || payload.Reading == nil {
		return nil
	}

	if err := m.writer.WritePoint(ctx, Point(payload)); err != nil {
		return fmt.Errorf("error writing to InfluxDB: %w", err)
	}
	m.logger.Debug("Reading mirrored to InfluxDB",
		zap.String("device_id", payload.Reading.DeviceID))
	return nil
}

// Ping implements repositories.Pinger
func (m *Mirror) Ping(ctx context.Context) error {
	ok, err := m.client.Ping(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("influxdb not ready")
	}
	return nil
}

func (m *Mirror) Close() {
	m.client.Close()
}
