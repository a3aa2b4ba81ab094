package adapters

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
)

// MemoryDeviceRepository is an in-memory implementation of DeviceRepository
// used by tests and by STORAGE_BACKEND=memory
type MemoryDeviceRepository struct {
	mu      sync.RWMutex
	devices map[string]*entities.Device // device_id -> device mapping
}

// NewMemoryDeviceRepository creates a new in-memory device repository
func NewMemoryDeviceRepository() *MemoryDeviceRepository {
	return &MemoryDeviceRepository{
		devices: make(map[string]*entities.Device),
	}
}

// Upsert implements DeviceRepository interface
func (m *MemoryDeviceRepository) Upsert(ctx context.Context, deviceID, name, ownerID string, loc entities.GeoPoint) (*entities.Device, error) {
	if deviceID == "" {
		return nil, errors.New("device ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	device, exists := m.devices[deviceID]
	if !exists {
		device = &entities.Device{
			ID:        primitive.NewObjectID(),
			DeviceID:  deviceID,
			Name:      name,
			OwnerID:   ownerID,
			CreatedAt: now,
		}
		m.devices[deviceID] = device
	}
	device.Location = loc
	device.UpdatedAt = now

	// Return a copy to prevent external modifications
	deviceCopy := *device
	return &deviceCopy, nil
}

// GetByDeviceID implements DeviceRepository interface
func (m *MemoryDeviceRepository) GetByDeviceID(ctx context.Context, deviceID string) (*entities.Device, error) {
	if deviceID == "" {
		return nil, errors.New("device ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	device, exists := m.devices[deviceID]
	if !exists {
		return nil, repositories.ErrNotFound
	}

	deviceCopy := *device
	return &deviceCopy, nil
}

// List implements DeviceRepository interface
func (m *MemoryDeviceRepository) List(ctx context.Context) ([]*entities.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.Device, 0, len(m.devices))
	for _, device := range m.devices {
		deviceCopy := *device
		result = append(result, &deviceCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DeviceID < result[j].DeviceID
	})

	return result, nil
}
