package entities

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDevicePrefix marks devices that stand for a user-owned sensor rather than
// a standalone field monitor.
const UserDevicePrefix = "user-"

// GeoPoint is a GeoJSON point. Coordinates are ordered [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type" bson:"type"`
	Coordinates [2]float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair
func NewGeoPoint(latitude, longitude float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{longitude, latitude}}
}

func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }
func (p GeoPoint) Latitude() float64  { return p.Coordinates[1] }

// Device is a monitoring station plotted on the dashboard map
type Device struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DeviceID  string             `json:"deviceId" bson:"device_id"`
	Name      string             `json:"name" bson:"name"`
	OwnerID   string             `json:"ownerId,omitempty" bson:"owner_id,omitempty"`
	Location  GeoPoint           `json:"location" bson:"location"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// UserDeviceID returns the device identifier used for a user's own sensor
func UserDeviceID(userID string) string {
	return UserDevicePrefix + userID
}

// DeviceName picks the display name for a newly seen device
func DeviceName(deviceID, username string) string {
	if username != "" {
		return fmt.Sprintf("%s's sensor", username)
	}
	return "Water Monitor " + deviceID
}

func (d *Device) Validate() error {
	if d.DeviceID == "" {
		return errors.New("device id is required")
	}
	if d.Name == "" {
		return errors.New("device name is required")
	}
	return ValidateCoordinates(d.Location.Latitude(), d.Location.Longitude())
}

// ValidateCoordinates rejects positions outside the WGS84 range
func ValidateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", longitude)
	}
	return nil
}
