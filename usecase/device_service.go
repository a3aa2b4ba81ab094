package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain"
	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/apperr"
	"github.com/bhargav676/intern/internal/auth"
)

// DeviceDetailReadings is how many readings a device detail view carries
const DeviceDetailReadings = 10

// DeviceSummary is a map marker: the device, its newest reading and the
// aggregate status of that reading.
type DeviceSummary struct {
	*entities.Device
	Latest *domain.SensorDataPayload `json:"latestReading,omitempty"`
	Status entities.Status           `json:"status"`
}

type DeviceDetail struct {
	DeviceSummary
	Readings []*domain.SensorDataPayload `json:"readings"`
}

type DeviceService struct {
	devices  repositories.DeviceRepository
	readings repositories.ReadingRepository
	logger   *zap.Logger
}

func NewDeviceService(devices repositories.DeviceRepository, readings repositories.ReadingRepository, logger *zap.Logger) *DeviceService {
	return &DeviceService{devices: devices, readings: readings, logger: logger}
}

func (s *DeviceService) List(ctx context.Context, caller *auth.Identity) ([]DeviceSummary, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list devices", err)
	}
	latest, err := s.readings.LatestPerDevice(ctx, repositories.LatestFilter{})
	if err != nil {
		return nil, apperr.Internal("failed to load latest readings", err)
	}

	byDevice := make(map[string]*entities.Reading, len(latest))
	for _, r := range latest {
		byDevice[r.DeviceID] = r
	}

	out := make([]DeviceSummary, 0, len(devices))
	for _, d := range devices {
		out = append(out, summarize(d, byDevice[d.DeviceID]))
	}
	return out, nil
}

func (s *DeviceService) Get(ctx context.Context, caller *auth.Identity, deviceID string) (*DeviceDetail, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	device, err := s.devices.GetByDeviceID(ctx, deviceID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("Device not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load device", err)
	}

	readings, err := s.Recent(ctx, caller, deviceID, DeviceDetailReadings)
	if err != nil {
		return nil, err
	}

	var newest *entities.Reading
	if len(readings) > 0 {
		newest = readings[0].Reading
	}
	return &DeviceDetail{DeviceSummary: summarize(device, newest), Readings: readings}, nil
}

// Recent returns up to limit readings of deviceID, newest first
func (s *DeviceService) Recent(ctx context.Context, caller *auth.Identity, deviceID string, limit int) ([]*domain.SensorDataPayload, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	readings, _, err := s.readings.Find(ctx, repositories.ReadingQuery{DeviceID: deviceID, Limit: limit})
	if err != nil {
		return nil, apperr.Internal("failed to load device readings", err)
	}
	out := make([]*domain.SensorDataPayload, 0, len(readings))
	for _, r := range readings {
		out = append(out, toPayload(r, nil))
	}
	return out, nil
}

func summarize(d *entities.Device, latest *entities.Reading) DeviceSummary {
	s := DeviceSummary{Device: d, Status: entities.StatusUnavailable}
	if latest != nil {
		s.Latest = toPayload(latest, nil)
		s.Status = s.Latest.Status.Overall
	}
	return s
}
