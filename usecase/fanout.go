package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain"
	"github.com/bhargav676/intern/domain/repositories"
)

const (
	defaultQueueSize    = 256
	defaultQueueTimeout = 10 * time.Second
)

type namedSink struct {
	name string
	sink repositories.EventSink
	// queue is nil for sinks delivered on the caller's goroutine
	queue chan domain.Event
}

// FanOut publishes every event to each registered sink in order. A failing sink
// is logged and never stops the others or the caller.
//
// Sinks added with Add run inline. Sinks added with AddAsync get their own
// bounded queue and worker, so a slow broker never holds up the publisher.
type FanOut struct {
	sinks   []namedSink
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewFanOut(logger *zap.Logger) *FanOut {
	return &FanOut{logger: logger, timeout: defaultQueueTimeout}
}

// WithTimeout bounds each queued delivery
func (f *FanOut) WithTimeout(d time.Duration) *FanOut {
	f.timeout = d
	return f
}

// Add registers a sink under a name used in logs
func (f *FanOut) Add(name string, sink repositories.EventSink) *FanOut {
	f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
	return f
}

// AddAsync registers a sink delivered from a background worker. Events that
// arrive while its queue is full are dropped and logged.
func (f *FanOut) AddAsync(name string, sink repositories.EventSink) *FanOut {
	s := namedSink{name: name, sink: sink, queue: make(chan domain.Event, defaultQueueSize)}
	f.sinks = append(f.sinks, s)

	f.wg.Add(1)
	go f.drain(s)
	return f
}

func (f *FanOut) drain(s namedSink) {
	defer f.wg.Done()
	for event := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		f.deliver(ctx, s, event)
		cancel()
	}
}

// Publish implements repositories.EventSink
func (f *FanOut) Publish(ctx context.Context, event domain.Event) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, s := range f.sinks {
		if s.queue == nil {
			f.deliver(ctx, s, event)
			continue
		}
		if f.closed {
			continue
		}
		select {
		case s.queue <- event:
		default:
			f.logger.Warn("Event sink queue full, dropping event",
				zap.String("sink", s.name),
				zap.String("event", string(event.Type)))
		}
	}
	return nil
}

func (f *FanOut) deliver(ctx context.Context, s namedSink, event domain.Event) {
	if err := s.sink.Publish(ctx, event); err != nil {
		f.logger.Warn("Event sink failed",
			zap.String("sink", s.name),
			zap.String("event", string(event.Type)),
			zap.Error(err))
	}
}

// Close stops accepting queued events and waits until every queue is drained.
// Inline sinks keep working.
func (f *FanOut) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	for _, s := range f.sinks {
		if s.queue != nil {
			close(s.queue)
		}
	}
	f.mu.Unlock()

	f.wg.Wait()
}
