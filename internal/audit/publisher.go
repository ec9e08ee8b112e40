// Package audit records who did what in the collector. Publishers are
// append-only sinks; the gateway treats publish failures as non-fatal.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Publisher accepts audit events.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// Stamp fills ID, Category and Timestamp when they are unset.
func Stamp(event Event, now time.Time) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	return event
}

// MemoryPublisher keeps events in memory. Used by tests and the memory backend.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Emit(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, Stamp(event, time.Now()))
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Actions returns the emitted actions in order.
func (p *MemoryPublisher) Actions() []Action {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Action, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

// LogPublisher writes events as structured log lines with log_type=audit.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	event = Stamp(event, time.Now())
	p.logger.InfoContext(ctx, string(event.Action),
		"log_type", "audit",
		"event_id", event.ID,
		"category", string(event.Category),
		"operator", event.Operator,
		"subject", event.Subject,
		"reason", event.Reason,
		"request_id", event.RequestID,
		"timestamp", event.Timestamp,
	)
	return nil
}
