package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain/repositories"
)

const (
	HealthUnknown   = "unknown"
	HealthOK        = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)

// HealthStatus is the result of the most recent round of pings
type HealthStatus struct {
	Status     string            `json:"status"`
	Database   string            `json:"database"`
	Components map[string]string `json:"components,omitempty"`
	CheckedAt  time.Time         `json:"checkedAt"`
}

// HealthMonitor periodically pings the primary store and optional backends
type HealthMonitor struct {
	database   repositories.Pinger
	components map[string]repositories.Pinger
	interval   time.Duration
	timeout    time.Duration
	logger     *zap.Logger

	mu       sync.RWMutex
	last     HealthStatus
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewHealthMonitor(database repositories.Pinger, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	return &HealthMonitor{
		database:   database,
		components: make(map[string]repositories.Pinger),
		interval:   interval,
		timeout:    5 * time.Second,
		logger:     logger,
		last:       HealthStatus{Status: HealthUnknown, Database: HealthUnknown},
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Watch adds an optional backend. Its failure degrades but does not fail health.
// Must be called before Start.
func (m *HealthMonitor) Watch(name string, p repositories.Pinger) {
	m.components[name] = p
}

// Start begins the check loop. The first check runs immediately.
func (m *HealthMonitor) Start() {
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.check()
		for {
			select {
			case <-ticker.C:
				m.check()
			case <-m.stopChan:
				return
			}
		}
	}()

	m.logger.Info("Health monitor started", zap.Duration("interval", m.interval))
}

// Stop ends the check loop and waits for it to exit
func (m *HealthMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		<-m.done
		m.logger.Info("Health monitor stopped")
	})
}

// Snapshot returns the last recorded status
func (m *HealthMonitor) Snapshot() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.last
	if s.Components != nil {
		s.Components = make(map[string]string, len(m.last.Components))
		for k, v := range m.last.Components {
			s.Components[k] = v
		}
	}
	return s
}

func (m *HealthMonitor) check() {
	status := HealthStatus{Status: HealthOK, Database: HealthOK, CheckedAt: time.Now().UTC()}

	if err := m.ping(m.database); err != nil {
		m.logger.Error("Database health check failed", zap.Error(err))
		status.Status = HealthUnhealthy
		status.Database = HealthUnhealthy
	}

	names := make([]string, 0, len(m.components))
	for name := range m.components {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > 0 {
		status.Components = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := m.ping(m.components[name]); err != nil {
			m.logger.Warn("Component health check failed", zap.String("component", name), zap.Error(err))
			status.Components[name] = HealthUnhealthy
			if status.Status == HealthOK {
				status.Status = HealthDegraded
			}
			continue
		}
		status.Components[name] = HealthOK
	}

	m.mu.Lock()
	m.last = status
	m.mu.Unlock()
}

func (m *HealthMonitor) ping(p repositories.Pinger) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	return p.Ping(ctx)
}
