package adapters

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
)

// MemoryUserRepository is an in-memory implementation of UserRepository
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*entities.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[primitive.ObjectID]*entities.User),
	}
}

// Create implements UserRepository interface
func (m *MemoryUserRepository) Create(ctx context.Context, user *entities.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) || u.AccessID == user.AccessID {
			return repositories.ErrDuplicate
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	userCopy := *user
	m.users[user.ID] = &userCopy
	return nil
}

// GetByID implements UserRepository interface
func (m *MemoryUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[oid]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (m *MemoryUserRepository) findOne(match func(*entities.User) bool) (*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			userCopy := *u
			return &userCopy, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// GetByUsername implements UserRepository interface
func (m *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	return m.findOne(func(u *entities.User) bool { return u.Username == username })
}

// GetByAccessID implements UserRepository interface
func (m *MemoryUserRepository) GetByAccessID(ctx context.Context, accessID string) (*entities.User, error) {
	if accessID == "" {
		return nil, repositories.ErrNotFound
	}
	return m.findOne(func(u *entities.User) bool { return u.AccessID == accessID })
}

// ExistsByUsernameOrEmail implements UserRepository interface
func (m *MemoryUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	_, err := m.findOne(func(u *entities.User) bool {
		return u.Username == username || strings.EqualFold(u.Email, email)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List implements UserRepository interface, newest accounts first
func (m *MemoryUserRepository) List(ctx context.Context) ([]*entities.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.User, 0, len(m.users))
	for _, u := range m.users {
		userCopy := *u
		result = append(result, &userCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Delete implements UserRepository interface
func (m *MemoryUserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[oid]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.users, oid)
	return nil
}

// CountByRole implements UserRepository interface
func (m *MemoryUserRepository) CountByRole(ctx context.Context, role entities.Role) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, u := range m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
