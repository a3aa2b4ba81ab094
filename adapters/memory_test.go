package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bhargav676/intern/domain"
	"github.com/bhargav676/intern/domain/entities"
	"github.com/bhargav676/intern/domain/repositories"
)

func TestMemoryDeviceRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDeviceRepository()

	first, err := repo.Upsert(ctx, "WM-1", "Water Monitor WM-1", "WM-1", entities.NewGeoPoint(17.6, 83.2))
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	second, err := repo.Upsert(ctx, "WM-1", "ignored", "", entities.NewGeoPoint(18.0, 84.0))
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if second.ID != first.ID {
		t.Error("Second upsert should update the same device")
	}
	if second.Name != "Water Monitor WM-1" {
		t.Errorf("Name should only be set on creation, got %q", second.Name)
	}
	if second.Location.Latitude() != 18.0 {
		t.Errorf("Location should follow the latest reading, got %v", second.Location.Coordinates)
	}

	devices, _ := repo.List(ctx)
	if len(devices) != 1 {
		t.Errorf("Expected 1 device, got %d", len(devices))
	}

	if _, err := repo.GetByDeviceID(ctx, "nope"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUserRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &entities.User{Username: "river", Email: "river@example.com", AccessID: "a1", Role: entities.RoleUser}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.ID.IsZero() {
		t.Error("Create should assign an id")
	}

	dup := &entities.User{Username: "other", Email: "RIVER@example.com", AccessID: "a2", Role: entities.RoleUser}
	if err := repo.Create(ctx, dup); !errors.Is(err, repositories.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for same email, got %v", err)
	}

	found, err := repo.GetByAccessID(ctx, "a1")
	if err != nil || found.Username != "river" {
		t.Errorf("GetByAccessID returned %v, %v", found, err)
	}

	exists, _ := repo.ExistsByUsernameOrEmail(ctx, "river", "x@y.z")
	if !exists {
		t.Error("Username should be reported as taken")
	}

	if err := repo.Delete(ctx, user.ID.Hex()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, user.ID.Hex()); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("Second delete should be ErrNotFound, got %v", err)
	}
}

func TestMemoryReadingRepository_FindAndLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReadingRepository()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		r := entities.NewReading("owner-1", "user-owner-1", 7, 2, 300, 10, 20)
		r.Timestamp = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Insert(ctx, r); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	// Out-of-order timestamp for a second device
	late := entities.NewReading("WM-9", "WM-9", 9.5, 2, 300, 10, 20)
	late.Timestamp = base.Add(-time.Hour)
	if err := repo.Insert(ctx, late); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	page, total, err := repo.Find(ctx, repositories.ReadingQuery{OwnerID: "owner-1", Limit: 15, Skip: 15})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if total != 20 {
		t.Errorf("Expected total 20, got %d", total)
	}
	if len(page) != 5 {
		t.Errorf("Expected 5 readings on second page, got %d", len(page))
	}
	if !page[0].Timestamp.Equal(base.Add(4 * time.Minute)) {
		t.Errorf("Second page should start at minute 4, got %v", page[0].Timestamp)
	}

	ranged, total, _ := repo.Find(ctx, repositories.ReadingQuery{
		From: base.Add(5 * time.Minute),
		To:   base.Add(9 * time.Minute),
	})
	if total != 5 || len(ranged) != 5 {
		t.Errorf("Expected 5 readings in range, got %d (total %d)", len(ranged), total)
	}

	latest, err := repo.LatestPerDevice(ctx, repositories.LatestFilter{})
	if err != nil {
		t.Fatalf("LatestPerDevice failed: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("Expected one reading per device, got %d", len(latest))
	}
	for _, r := range latest {
		if r.DeviceID == "user-owner-1" && !r.Timestamp.Equal(base.Add(19*time.Minute)) {
			t.Errorf("Latest for user device should be minute 19, got %v", r.Timestamp)
		}
	}

	deleted, _ := repo.DeleteByOwner(ctx, "owner-1")
	if deleted != 20 {
		t.Errorf("Expected 20 deleted, got %d", deleted)
	}
	_, total, _ = repo.Find(ctx, repositories.ReadingQuery{})
	if total != 1 {
		t.Errorf("Only the device reading should remain, got %d", total)
	}
}

func TestMemoryReadingRepository_FindOutOfRangeSkip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryReadingRepository()
	for i := 0; i < 3; i++ {
		if err := repo.Insert(ctx, entities.NewReading("owner-1", "user-owner-1", 7, 2, 300, 10, 20)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	tests := []struct {
		name string
		skip int
		want int
	}{
		{"negative skip starts at the newest", -45, 2},
		{"skip past the end", 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, total, err := repo.Find(ctx, repositories.ReadingQuery{Skip: tt.skip, Limit: 2})
			if err != nil {
				t.Fatalf("Find failed: %v", err)
			}
			if total != 3 || len(page) != tt.want {
				t.Errorf("Expected %d of 3 readings, got %d of %d", tt.want, len(page), total)
			}
		})
	}
}

func TestAlertLog_RingBuffer(t *testing.T) {
	log := NewAlertLog()
	ctx := context.Background()

	for i := 0; i < alertLogCapacity+5; i++ {
		_ = log.Publish(ctx, domain.Event{
			Type:    domain.EventNewAlert,
			Payload: domain.AlertPayload{ID: fmt.Sprintf("a%d", i)},
		})
	}
	_ = log.Publish(ctx, domain.Event{Type: domain.EventNewSensorData, Payload: "ignored"})

	all := log.Recent(0)
	if len(all) != alertLogCapacity {
		t.Fatalf("Expected %d alerts, got %d", alertLogCapacity, len(all))
	}
	if all[0].ID != fmt.Sprintf("a%d", alertLogCapacity+4) {
		t.Errorf("Newest alert should come first, got %s", all[0].ID)
	}
	if all[len(all)-1].ID != "a5" {
		t.Errorf("Oldest alerts should have been evicted, got %s", all[len(all)-1].ID)
	}

	if got := log.Recent(3); len(got) != 3 {
		t.Errorf("Expected 3 alerts, got %d", len(got))
	}
}

func TestAlertLog_RelayedPayload(t *testing.T) {
	log := NewAlertLog()
	raw := json.RawMessage(`{"id":"r1","message":"station-2: High pH level detected: 9.5","severity":"high","deviceId":"station-2"}`)

	if err := log.Publish(context.Background(), domain.Event{Type: domain.EventNewAlert, Payload: raw}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	got := log.Recent(1)
	if len(got) != 1 || got[0].ID != "r1" || got[0].Severity != domain.SeverityHigh {
		t.Errorf("unexpected relayed alert %+v", got)
	}

	if err := log.Publish(context.Background(), domain.Event{Type: domain.EventNewAlert, Payload: json.RawMessage(`{`)}); err == nil {
		t.Error("expected malformed payload to be rejected")
	}
}
