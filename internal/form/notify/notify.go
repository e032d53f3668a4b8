// Package notify carries user-facing messages out of the form engine.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"demandas/internal/form/models"
)

// DefaultDuration is how long a message stays on screen unless configured.
const DefaultDuration = 3 * time.Second

// Notification is one message for the user.
type Notification struct {
	Message  string          `json:"message"`
	Severity models.Severity `json:"severity"`
	Duration time.Duration   `json:"-"`
}

// MarshalJSON renders the duration in milliseconds for browser timers.
func (n Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Message    string          `json:"message"`
		Severity   models.Severity `json:"severity"`
		DurationMS int64           `json:"duration_ms"`
	}{n.Message, n.Severity, n.Duration.Milliseconds()})
}

// Sink receives notifications.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Policy stamps notifications with a display duration.
type Policy struct {
	Duration time.Duration
}

// New builds a notification with the policy's duration.
func (p Policy) New(message string, severity models.Severity) Notification {
	d := p.Duration
	if d <= 0 {
		d = DefaultDuration
	}
	return Notification{Message: message, Severity: severity, Duration: d}
}

// Collector buffers notifications until they are drained into a response.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

func (c *Collector) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Drain returns and forgets the buffered notifications.
func (c *Collector) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// LogSink writes notifications to a logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink that logs every notification.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, n Notification) {
	if s.logger == nil {
		return
	}
	level := slog.LevelInfo
	switch n.Severity {
	case models.SeverityError:
		level = slog.LevelError
	case models.SeverityWarning:
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "form notification",
		"message", n.Message,
		"severity", string(n.Severity),
	)
}

// Multi fans a notification out to several sinks.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, s := range m {
		if s != nil {
			s.Notify(ctx, n)
		}
	}
}
