package core

import (
	"context"
	"fmt"
	"time"
)

// EventLevel names a client log channel
type EventLevel string

const (
	EventQuery EventLevel = "query"
	EventInfo  EventLevel = "info"
	EventWarn  EventLevel = "warn"
	EventError EventLevel = "error"
)

// EventLevels lists the accepted levels
func EventLevels() []EventLevel {
	return []EventLevel{EventQuery, EventInfo, EventWarn, EventError}
}

// EmitTarget selects where a log level is delivered
type EmitTarget string

const (
	// EmitStdout writes the record through the process logger
	EmitStdout EmitTarget = "stdout"
	// EmitEvent hands the record to subscribers registered for its level
	EmitEvent EmitTarget = "event"
)

// LogRoute enables one log level and chooses its delivery
type LogRoute struct {
	Level EventLevel `mapstructure:"level" json:"level"`
	Emit  EmitTarget `mapstructure:"emit" json:"emit"`
}

// Validate checks that the level and target are known
func (r LogRoute) Validate() error {
	switch r.Level {
	case EventQuery, EventInfo, EventWarn, EventError:
	default:
		return fmt.Errorf("unknown log level %q", r.Level)
	}
	switch r.Emit {
	case EmitStdout, EmitEvent:
	default:
		return fmt.Errorf("unknown log target %q for level %s", r.Emit, r.Level)
	}
	return nil
}

// Event is one record delivered to subscribers. Query events carry the SQL
// text and its duration; the other levels carry a message.
type Event struct {
	Level     EventLevel
	Timestamp time.Time
	Message   string
	Query     string
	Rows      int64
	Duration  time.Duration
	Target    string
	RequestID string
}

// EventSink receives events routed to subscribers
type EventSink interface {
	Emit(event Event)
}

type requestIDKey struct{}

// WithRequestID returns ctx carrying id, which is attached to log records of
// queries run with the returned context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id set by WithRequestID, or ""
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
