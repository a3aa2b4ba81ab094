package entities

import (
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the coarse permission level carried in session tokens
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// User is a dashboard account. AccessID is the long-lived secret field devices
// use to attribute readings to the account without logging in.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"`
	AccessID     string             `json:"accessId" bson:"access_id"`
	Role         Role               `json:"role" bson:"role"`
	CreatedAt    time.Time          `json:"createdAt" bson:"created_at"`
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Domain validation methods
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(u.Email) {
		return errors.New("invalid email format")
	}
	if u.AccessID == "" {
		return errors.New("access id is required")
	}
	if !u.Role.Valid() {
		return errors.New("invalid role")
	}
	return nil
}

// ValidateEmail checks the loose address shape accepted at registration
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the minimum password length
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
