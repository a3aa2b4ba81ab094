package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bhargav676/intern/adapters"
	"github.com/bhargav676/intern/domain"
	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/auth"
)

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Publish(ctx context.Context, e domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) types() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.EventType
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []repositories.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, msg repositories.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) all() []repositories.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]repositories.Notification(nil), n.sent...)
}

type stubAdvisor struct {
	text string
	err  error
}

func (a stubAdvisor) Advise(ctx context.Context, r *entities.Reading, as entities.ReadingAssessment) (string, error) {
	return a.text, a.err
}

// seedUser stores an account directly and returns it with its identity
func seedUser(t *testing.T, users *adapters.MemoryUserRepository, username string, role entities.Role) (*entities.User, *auth.Identity) {
	t.Helper()
	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &entities.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		AccessID:     "access-" + username,
		Role:         role,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("Create(%s): %v", username, err)
	}
	return u, &auth.Identity{
		UserID:   u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Role:     role,
		Via:      auth.ViaSession,
	}
}

func ptr(v float64) *float64 { return &v }

func sensorInput(ph, turbidity, tds float64) SensorInput {
	return SensorInput{
		PH:        ptr(ph),
		Turbidity: ptr(turbidity),
		TDS:       ptr(tds),
		Latitude:  ptr(17.385),
		Longitude: ptr(78.4867),
	}
}

func testTokens() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", "test", time.Hour)
}
