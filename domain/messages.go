package domain

import (
	"time"

	"github.com/bhargav676/intern/domain/entities"
)

// EventType is the name dashboards subscribe to
type EventType string

const (
	EventNewSensorData     EventType = "newSensorData"
	EventNewUserSensorData EventType = "newUserSensorData"
	EventNewAlert          EventType = "newAlert"
)

// Event is one pushed notification. Key groups events of the same owner so
// ordered transports can partition on it. Origin is set by relays that must not
// re-deliver their own events.
type Event struct {
	Type       EventType `json:"event"`
	Key        string    `json:"key,omitempty"`
	Origin     string    `json:"origin,omitempty"`
	Payload    any       `json:"data"`
	OccurredAt time.Time `json:"occurredAt"`
}

// SensorDataPayload is a stored reading enriched with its classification
type SensorDataPayload struct {
	*entities.Reading
	Username string                     `json:"username,omitempty"`
	Email    string                     `json:"email,omitempty"`
	Status   entities.ReadingAssessment `json:"status"`
	Alert    string                     `json:"alert,omitempty"`
}

// Severity of an AlertPayload
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// AlertPayload is pushed when a reading's aggregate status is warning or alert
type AlertPayload struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	DeviceID  string    `json:"deviceId"`
	OwnerID   string    `json:"ownerId"`
	Timestamp time.Time `json:"timestamp"`
}

// SeverityFor maps an aggregate status onto an alert severity. ok is false for
// statuses that do not raise alerts.
func SeverityFor(s entities.Status) (sev Severity, ok bool) {
	switch s {
	case entities.StatusAlert:
		return SeverityHigh, true
	case entities.StatusWarning:
		return SeverityMedium, true
	}
	return "", false
}
