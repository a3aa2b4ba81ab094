package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain"
	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/apperr"
	"github.com/bhargav676/intern/internal/auth"
)

// SensorInput is a reading as submitted. Pointers distinguish a missing field
// from a legitimate zero.
type SensorInput struct {
	PH        *float64
	Turbidity *float64
	TDS       *float64
	Latitude  *float64
	Longitude *float64
	// DeviceID is set for admin-posted field monitors only
	DeviceID string
}

func (in SensorInput) validate() error {
	fields := []struct {
		name  string
		value *float64
	}{
		{"ph", in.PH},
		{"turbidity", in.Turbidity},
		{"tds", in.TDS},
		{"latitude", in.Latitude},
		{"longitude", in.Longitude},
	}

	var missing []string
	for _, f := range fields {
		if f.value == nil {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation(apperr.CodeMissingParameter,
			"All fields are required; missing: "+strings.Join(missing, ", "))
	}

	for _, f := range fields {
		if math.IsNaN(*f.value) || math.IsInf(*f.value, 0) {
			return apperr.Validation(apperr.CodeValidationFailed, f.name+" must be a finite number")
		}
	}
	if err := entities.ValidateCoordinates(*in.Latitude, *in.Longitude); err != nil {
		return apperr.Validation(apperr.CodeValidationFailed, err.Error())
	}
	return nil
}

// SubmitResult is what the caller learns about a stored reading
type SubmitResult struct {
	Reading    *entities.Reading
	Assessment entities.ReadingAssessment
	Alert      string
}

// IngestService stores readings and fans them out to dashboards
type IngestService struct {
	resolver auth.Resolver
	devices  repositories.DeviceRepository
	readings repositories.ReadingRepository
	notifier repositories.Notifier
	advisor  repositories.Advisor
	events   repositories.EventSink
	logger   *zap.Logger
	bg       *background
	now      func() time.Time
}

func NewIngestService(
	resolver auth.Resolver,
	devices repositories.DeviceRepository,
	readings repositories.ReadingRepository,
	notifier repositories.Notifier,
	advisor repositories.Advisor,
	events repositories.EventSink,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		resolver: resolver,
		devices:  devices,
		readings: readings,
		notifier: notifier,
		advisor:  advisor,
		events:   events,
		logger:   logger,
		bg:       &background{timeout: 30 * time.Second},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates in, resolves the owner from creds and stores the reading.
// Nothing is persisted when validation or resolution fails.
func (s *IngestService) Submit(ctx context.Context, creds auth.Credentials, in SensorInput) (*SubmitResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	caller, err := s.resolver.Resolve(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, caller, in)
}

// SubmitAs is Submit for a caller that has already been authenticated
func (s *IngestService) SubmitAs(ctx context.Context, caller *auth.Identity, in SensorInput) (*SubmitResult, error) {
	if caller == nil {
		return nil, apperr.Unauthenticated(apperr.CodeUnauthorized, "Authentication required")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.store(ctx, caller, in)
}

func (s *IngestService) store(ctx context.Context, caller *auth.Identity, in SensorInput) (*SubmitResult, error) {
	var ownerID, deviceID, name, username string
	if in.DeviceID != "" {
		if !caller.IsAdmin() {
			return nil, apperr.Forbidden("Only admins may post readings for a device id")
		}
		ownerID, deviceID = in.DeviceID, in.DeviceID
		name = entities.DeviceName(deviceID, "")
	} else {
		ownerID = caller.UserID
		deviceID = entities.UserDeviceID(ownerID)
		username = caller.Username
		name = entities.DeviceName(deviceID, username)
	}

	loc := entities.NewGeoPoint(*in.Latitude, *in.Longitude)
	if _, err := s.devices.Upsert(ctx, deviceID, name, ownerID, loc); err != nil {
		return nil, apperr.Internal("failed to upsert device", err)
	}

	reading := entities.NewReading(ownerID, deviceID, *in.PH, *in.Turbidity, *in.TDS, *in.Latitude, *in.Longitude)
	reading.Timestamp = s.now()
	if err := s.readings.Insert(ctx, reading); err != nil {
		return nil, apperr.Internal("failed to store reading", err)
	}

	assessment := entities.AssessReading(reading)
	result := &SubmitResult{
		Reading:    reading,
		Assessment: assessment,
		Alert:      entities.AlertMessage(reading, assessment),
	}

	s.logger.Info("Sensor data saved",
		zap.String("owner_id", ownerID),
		zap.String("device_id", deviceID),
		zap.String("status", string(assessment.Overall)))

	if entities.ExceedsAlertHigh(entities.MetricPH, reading.PH) {
		s.notifyAlert(caller, reading, assessment)
	}

	s.publish(ctx, username, result)
	return result, nil
}

func (s *IngestService) notifyAlert(caller *auth.Identity, reading *entities.Reading, assessment entities.ReadingAssessment) {
	if caller.Email == "" {
		s.logger.Warn("No recipient for alert email", zap.String("user_id", caller.UserID))
		return
	}
	to, name := caller.Email, caller.Username

	s.bg.Go(func(ctx context.Context) {
		advice, err := s.advisor.Advise(ctx, reading, assessment)
		if err != nil {
			s.logger.Warn("Failed to get advice for alert email", zap.Error(err))
		}

		err = s.notifier.Notify(ctx, repositories.Notification{
			Kind:    repositories.NotificationAlert,
			To:      to,
			Name:    name,
			Subject: "Water Quality Alert: High pH Level (" + assessment.PH.Display + ")",
			Body:    advice,
			Reading: reading,
		})
		if err != nil {
			s.logger.Error("Failed to send alert notification",
				zap.String("to", to),
				zap.Float64("ph", reading.PH),
				zap.Error(err))
		}
	})
}

func (s *IngestService) publish(ctx context.Context, username string, result *SubmitResult) {
	reading := result.Reading
	payload := &domain.SensorDataPayload{
		Reading:  reading,
		Username: username,
		Status:   result.Assessment,
		Alert:    result.Alert,
	}
	now := s.now()

	events := []domain.Event{
		{Type: domain.EventNewSensorData, Key: reading.OwnerID, Payload: payload, OccurredAt: now},
		{Type: domain.EventNewUserSensorData, Key: reading.OwnerID, Payload: payload, OccurredAt: now},
	}
	if severity, ok := domain.SeverityFor(result.Assessment.Overall); ok {
		events = append(events, domain.Event{
			Type: domain.EventNewAlert,
			Key:  reading.OwnerID,
			Payload: domain.AlertPayload{
				ID:        uuid.NewString(),
				Message:   alertText(reading, result.Assessment, result.Alert),
				Severity:  severity,
				DeviceID:  reading.DeviceID,
				OwnerID:   reading.OwnerID,
				Timestamp: reading.Timestamp,
			},
			OccurredAt: now,
		})
	}

	for _, e := range events {
		if err := s.events.Publish(ctx, e); err != nil {
			s.logger.Warn("Failed to publish event", zap.String("event", string(e.Type)), zap.Error(err))
		}
	}
}

func alertText(r *entities.Reading, a entities.ReadingAssessment, alert string) string {
	if alert != "" {
		return fmt.Sprintf("%s: %s", r.DeviceID, alert)
	}
	var parts []string
	for _, m := range a.MetricsIn(entities.StatusWarning) {
		parts = append(parts, fmt.Sprintf("%s outside safe range: %s", entities.Bands[m].Label, a.Of(m).Display))
	}
	return fmt.Sprintf("%s: %s", r.DeviceID, strings.Join(parts, "; "))
}

// Wait blocks until pending notifications have been sent
func (s *IngestService) Wait() {
	s.bg.Wait()
}
