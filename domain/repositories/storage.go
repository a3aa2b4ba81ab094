package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/bhargav676/intern/domain/entities"
)

var (
	// ErrNotFound is returned when a lookup matches no record
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines data access methods for users
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByAccessID(ctx context.Context, accessID string) (*entities.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context) ([]*entities.User, error)
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role entities.Role) (int64, error)
}

// DeviceRepository defines data access methods for devices
type DeviceRepository interface {
	// Upsert creates the device on first sight and moves it to loc on every
	// later call. Name and owner are only written on creation.
	Upsert(ctx context.Context, deviceID, name, ownerID string, loc entities.GeoPoint) (*entities.Device, error)
	GetByDeviceID(ctx context.Context, deviceID string) (*entities.Device, error)
	List(ctx context.Context) ([]*entities.Device, error)
}

// ReadingQuery selects readings for history views. Zero values mean no bound.
type ReadingQuery struct {
	OwnerID  string
	DeviceID string
	From     time.Time
	To       time.Time
	Limit    int
	Skip     int
}

// LatestFilter narrows LatestPerDevice to one owner or one device
type LatestFilter struct {
	OwnerID  string
	DeviceID string
}

// ReadingRepository defines data access methods for sensor readings
type ReadingRepository interface {
	Insert(ctx context.Context, reading *entities.Reading) error
	// Find returns matching readings newest first together with the total
	// number of matches ignoring Limit and Skip.
	Find(ctx context.Context, q ReadingQuery) ([]*entities.Reading, int64, error)
	LatestPerDevice(ctx context.Context, f LatestFilter) ([]*entities.Reading, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// Pinger is implemented by backends that can report their own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}
