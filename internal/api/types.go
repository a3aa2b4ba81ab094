package api

import (
	"time"

	"github.com/bhargav676/intern/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MessageResponse is the body of operations that only report success
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest is shared by self-registration and admin add-user
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserView is the public shape of an account
type UserView struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	AccessID  string        `json:"accessId"`
	Role      entities.Role `json:"role"`
	CreatedAt time.Time     `json:"createdAt"`
}

func newUserView(u *entities.User) UserView {
	return UserView{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Email:     u.Email,
		AccessID:  u.AccessID,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type SessionResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

type UserResponse struct {
	Message string   `json:"message"`
	User    UserView `json:"user"`
}

// SensorRequest is a reading as posted by a sensor or an admin. Presence of
// each metric is checked by the ingestion service so a zero value is accepted.
type SensorRequest struct {
	AccessID  string   `json:"accessId"`
	DeviceID  string   `json:"deviceId"`
	PH        *float64 `json:"ph"`
	Turbidity *float64 `json:"turbidity" validate:"omitempty,gte=0"`
	TDS       *float64 `json:"tds" validate:"omitempty,gte=0"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
}

type SensorResponse struct {
	Message string                     `json:"message"`
	ID      string                     `json:"id"`
	Status  entities.ReadingAssessment `json:"status"`
	Alert   string                     `json:"alert,omitempty"`
}

// SystemStatusResponse backs the admin status indicator
type SystemStatusResponse struct {
	Status           string            `json:"status"`
	Database         string            `json:"database"`
	Components       map[string]string `json:"components,omitempty"`
	CheckedAt        time.Time         `json:"checkedAt"`
	ConnectedClients int               `json:"connectedClients"`
	Uptime           string            `json:"uptime"`
}
