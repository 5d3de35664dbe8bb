package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	coreport "github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseLogger is a GORM logger that delivers every enabled level either to
// the core logger (stdout) or to an event sink. Levels without a route are
// dropped.
type DatabaseLogger struct {
	coreLogger    coreport.Logger
	sink          coreport.EventSink
	routes        map[coreport.EventLevel]coreport.EmitTarget
	silent        bool
	slowThreshold time.Duration
	timeProvider  coreport.TimeProvider
}

// NewDatabaseLogger creates a database logger delivering the levels of routes.
// sink may be nil when no route emits events.
func NewDatabaseLogger(coreLogger coreport.Logger, sink coreport.EventSink, routes []coreport.LogRoute, timeProvider coreport.TimeProvider) *DatabaseLogger {
	l := &DatabaseLogger{
		coreLogger:    coreLogger,
		sink:          sink,
		routes:        make(map[coreport.EventLevel]coreport.EmitTarget, len(routes)),
		slowThreshold: 200 * time.Millisecond,
		timeProvider:  timeProvider,
	}
	for _, r := range routes {
		l.routes[r.Level] = r.Emit
	}
	return l
}

// NewGormDatabaseLogger creates a logger writing warnings and errors to the core logger
func NewGormDatabaseLogger(coreLogger coreport.Logger) *DatabaseLogger {
	return NewDatabaseLogger(coreLogger, nil, []coreport.LogRoute{
		{Level: coreport.EventWarn, Emit: coreport.EmitStdout},
		{Level: coreport.EventError, Emit: coreport.EmitStdout},
	}, nil)
}

// LogMode implements logger.Interface. Silent disables every route; other
// modes leave the configured routes in place.
func (l *DatabaseLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.silent = level == logger.Silent
	return &newLogger
}

// WithSlowThreshold returns a new logger with updated slow threshold
func (l *DatabaseLogger) WithSlowThreshold(threshold time.Duration) *DatabaseLogger {
	newLogger := *l
	newLogger.slowThreshold = threshold
	return &newLogger
}

// Enabled reports whether level has a route
func (l *DatabaseLogger) Enabled(level coreport.EventLevel) bool {
	_, ok := l.routes[level]
	return ok && !l.silent
}

func (l *DatabaseLogger) now() time.Time {
	if l.timeProvider != nil {
		return l.timeProvider.Now()
	}
	return time.Now()
}

// Info logs info messages
func (l *DatabaseLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.deliver(ctx, coreport.Event{Level: coreport.EventInfo, Message: fmt.Sprintf(msg, data...)})
}

// Warn logs warn messages
func (l *DatabaseLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.deliver(ctx, coreport.Event{Level: coreport.EventWarn, Message: fmt.Sprintf(msg, data...)})
}

// Error logs error messages
func (l *DatabaseLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.deliver(ctx, coreport.Event{Level: coreport.EventError, Message: fmt.Sprintf(msg, data...)})
}

// Trace reports one executed statement as a query event, plus a warn event
// when it was slow and an error event when it failed. A lookup that found no
// row is not an error.
func (l *DatabaseLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.silent {
		return
	}
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	if !l.Enabled(coreport.EventQuery) && !l.Enabled(coreport.EventWarn) && !(failed && l.Enabled(coreport.EventError)) {
		return
	}

	var elapsed time.Duration
	if l.timeProvider != nil {
		elapsed = l.timeProvider.Since(begin)
	} else {
		elapsed = time.Since(begin)
	}
	sql, rows := fc()
	target := extractTableName(sql)

	if failed {
		l.deliver(ctx, coreport.Event{
			Level:    coreport.EventError,
			Message:  err.Error(),
			Query:    sql,
			Duration: elapsed,
			Target:   target,
		})
	}
	if l.slowThreshold > 0 && elapsed > l.slowThreshold {
		l.deliver(ctx, coreport.Event{
			Level:    coreport.EventWarn,
			Message:  fmt.Sprintf("slow query took %s", elapsed),
			Query:    sql,
			Duration: elapsed,
			Target:   target,
		})
	}
	l.deliver(ctx, coreport.Event{
		Level:    coreport.EventQuery,
		Query:    sql,
		Rows:     rows,
		Duration: elapsed,
		Target:   target,
	})
}

// deliver routes ev to its configured target
func (l *DatabaseLogger) deliver(ctx context.Context, ev coreport.Event) {
	target, ok := l.routes[ev.Level]
	if !ok || l.silent {
		return
	}
	ev.Timestamp = l.now()
	ev.RequestID = coreport.RequestID(ctx)

	if target == coreport.EmitEvent {
		if l.sink != nil {
			l.sink.Emit(ev)
		}
		return
	}

	fields := map[string]any{"source": "database"}
	if ev.Query != "" {
		fields["sql"] = ev.Query
		fields["elapsed"] = ev.Duration.String()
		if queryType := extractQueryType(ev.Query); queryType != "" {
			fields["type"] = queryType
		}
	}
	if ev.Level == coreport.EventQuery {
		fields["rows"] = ev.Rows
	}
	if ev.Target != "" {
		fields["table"] = ev.Target
	}
	if ev.RequestID != "" {
		fields["request_id"] = ev.RequestID
	}

	switch ev.Level {
	case coreport.EventQuery:
		l.coreLogger.Info("SQL Query", fields)
	case coreport.EventInfo:
		l.coreLogger.Info(ev.Message, fields)
	case coreport.EventWarn:
		l.coreLogger.Warn(ev.Message, fields)
	case coreport.EventError:
		l.coreLogger.Error(ev.Message, fields)
	}
}

// extractQueryType determines the type of SQL query (SELECT, INSERT, UPDATE, DELETE)
func extractQueryType(sql string) string {
	sqlUpper := strings.ToUpper(strings.TrimSpace(sql))
	for _, kind := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.HasPrefix(sqlUpper, kind) {
			return kind
		}
	}
	return ""
}

// extractTableName returns the first table named after FROM, INTO or UPDATE,
// without quotes. Derived tables yield "".
func extractTableName(sql string) string {
	sqlUpper := strings.ToUpper(strings.TrimSpace(sql))

	var fromIndex int
	switch {
	case strings.HasPrefix(sqlUpper, "UPDATE "):
		fromIndex = len("UPDATE ")
	case strings.Contains(sqlUpper, " INTO "):
		fromIndex = strings.Index(sqlUpper, " INTO ") + len(" INTO ")
	case strings.Contains(sqlUpper, " FROM "):
		fromIndex = strings.Index(sqlUpper, " FROM ") + len(" FROM ")
	default:
		return ""
	}

	remainder := strings.TrimSpace(sql[fromIndex:])
	if strings.HasPrefix(remainder, "(") {
		return ""
	}
	if end := strings.IndexAny(remainder, " (,"); end != -1 {
		remainder = remainder[:end]
	}
	return strings.Trim(remainder, `"`)
}
