package entities

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reading is one timestamped water-quality sample. OwnerID is either a user id
// (readings submitted with an access id) or a device id (admin-posted monitors).
type Reading struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID   string             `json:"ownerId" bson:"owner_id"`
	DeviceID  string             `json:"deviceId" bson:"device_id"`
	PH        float64            `json:"ph" bson:"ph"`
	Turbidity float64            `json:"turbidity" bson:"turbidity"`
	TDS       float64            `json:"tds" bson:"tds"`
	Latitude  float64            `json:"latitude" bson:"latitude"`
	Longitude float64            `json:"longitude" bson:"longitude"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
}

// NewReading stamps a reading with the server clock
func NewReading(ownerID, deviceID string, ph, turbidity, tds, latitude, longitude float64) *Reading {
	return &Reading{
		OwnerID:   ownerID,
		DeviceID:  deviceID,
		PH:        ph,
		Turbidity: turbidity,
		TDS:       tds,
		Latitude:  latitude,
		Longitude: longitude,
		Timestamp: time.Now().UTC(),
	}
}

// Location returns the capture position as a GeoJSON point
func (r *Reading) Location() GeoPoint {
	return NewGeoPoint(r.Latitude, r.Longitude)
}

func (r *Reading) Validate() error {
	if r.OwnerID == "" {
		return errors.New("owner id is required")
	}
	if r.DeviceID == "" {
		return errors.New("device id is required")
	}
	for name, v := range map[string]float64{
		"ph":        r.PH,
		"turbidity": r.Turbidity,
		"tds":       r.TDS,
		"latitude":  r.Latitude,
		"longitude": r.Longitude,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	return ValidateCoordinates(r.Latitude, r.Longitude)
}
