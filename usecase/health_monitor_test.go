package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthMonitor(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("unreachable") })

	tests := []struct {
		name       string
		database   pingerFunc
		components map[string]pingerFunc
		want       string
		wantDB     string
	}{
		{"all healthy", ok, map[string]pingerFunc{"redis": ok}, HealthOK, HealthOK},
		{"component down", ok, map[string]pingerFunc{"redis": down}, HealthDegraded, HealthOK},
		{"database down", down, map[string]pingerFunc{"redis": ok}, HealthUnhealthy, HealthUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewHealthMonitor(tt.database, time.Hour, zap.NewNop())
			for name, p := range tt.components {
				m.Watch(name, p)
			}
			if got := m.Snapshot().Status; got != HealthUnknown {
				t.Errorf("status before first check = %s", got)
			}

			m.check()
			snap := m.Snapshot()
			if snap.Status != tt.want || snap.Database != tt.wantDB {
				t.Errorf("got %s/%s, want %s/%s", snap.Status, snap.Database, tt.want, tt.wantDB)
			}
			if snap.CheckedAt.IsZero() {
				t.Error("CheckedAt not set")
			}
		})
	}
}

func TestHealthMonitorStartStop(t *testing.T) {
	m := NewHealthMonitor(pingerFunc(func(context.Context) error { return nil }), 10*time.Millisecond, zap.NewNop())
	m.Start()

	deadline := time.Now().Add(time.Second)
	for m.Snapshot().Status == HealthUnknown && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()
	m.Stop()

	if got := m.Snapshot().Status; got != HealthOK {
		t.Errorf("status = %s, want %s", got, HealthOK)
	}
}
