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

// MemoryReadingRepository keeps readings in insertion order
type MemoryReadingRepository struct {
	mu       sync.RWMutex
	readings []*entities.Reading
}

func NewMemoryReadingRepository() *MemoryReadingRepository {
	return &MemoryReadingRepository{}
}

// Insert implements ReadingRepository interface
func (m *MemoryReadingRepository) Insert(ctx context.Context, reading *entities.Reading) error {
	if reading == nil {
		return errors.New("reading cannot be nil")
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now().UTC()
	}
	if err := reading.Validate(); err != nil {
		return err
	}
	if reading.ID.IsZero() {
		reading.ID = primitive.NewObjectID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	readingCopy := *reading
	m.readings = append(m.readings, &readingCopy)
	return nil
}

func matches(r *entities.Reading, q repositories.ReadingQuery) bool {
	if q.OwnerID != "" && r.OwnerID != q.OwnerID {
		return false
	}
	if q.DeviceID != "" && r.DeviceID != q.DeviceID {
		return false
	}
	if !q.From.IsZero() && r.Timestamp.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && r.Timestamp.After(q.To) {
		return false
	}
	return true
}

// newestFirst orders by timestamp descending. Ties keep the later insert first.
func (m *MemoryReadingRepository) newestFirst(keep func(*entities.Reading) bool) []*entities.Reading {
	var out []*entities.Reading
	for i := len(m.readings) - 1; i >= 0; i-- {
		if keep(m.readings[i]) {
			out = append(out, m.readings[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Find implements ReadingRepository interface
func (m *MemoryReadingRepository) Find(ctx context.Context, q repositories.ReadingQuery) ([]*entities.Reading, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.newestFirst(func(r *entities.Reading) bool { return matches(r, q) })
	total := int64(len(all))

	start := q.Skip
	if start < 0 {
		start = 0
	}
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}

	result := make([]*entities.Reading, 0, end-start)
	for _, r := range all[start:end] {
		readingCopy := *r
		result = append(result, &readingCopy)
	}
	return result, total, nil
}

// LatestPerDevice implements ReadingRepository interface
func (m *MemoryReadingRepository) LatestPerDevice(ctx context.Context, f repositories.LatestFilter) ([]*entities.Reading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q := repositories.ReadingQuery{OwnerID: f.OwnerID, DeviceID: f.DeviceID}
	seen := make(map[string]bool)
	var result []*entities.Reading
	for _, r := range m.newestFirst(func(r *entities.Reading) bool { return matches(r, q) }) {
		if seen[r.DeviceID] {
			continue
		}
		seen[r.DeviceID] = true
		readingCopy := *r
		result = append(result, &readingCopy)
	}
	return result, nil
}

// DeleteByOwner implements ReadingRepository interface
func (m *MemoryReadingRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	if ownerID == "" {
		return 0, errors.New("owner ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.readings[:0]
	var deleted int64
	for _, r := range m.readings {
		if r.OwnerID == ownerID {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.readings = kept
	return deleted, nil
}

// Ping implements repositories.Pinger; memory storage is always reachable
func (m *MemoryReadingRepository) Ping(ctx context.Context) error {
	return nil
}
