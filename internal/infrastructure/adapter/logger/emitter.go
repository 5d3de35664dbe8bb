package logger

import (
	"sync"

	"github.com/amirhossein-jamali/finance-ledger/internal/domain/port/core"
)

// EventHandler receives an event. Handlers run synchronously on the
// goroutine that issued the query and must not block.
type EventHandler func(event core.Event)

// Emitter fans events out to the handlers subscribed to their level
type Emitter struct {
	mu       sync.RWMutex
	handlers map[core.EventLevel][]EventHandler
}

// NewEmitter creates an emitter without subscribers
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[core.EventLevel][]EventHandler)}
}

// On subscribes handler to level
func (e *Emitter) On(level core.EventLevel, handler EventHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[level] = append(e.handlers[level], handler)
}

// Subscribers returns how many handlers listen on level
func (e *Emitter) Subscribers(level core.EventLevel) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers[level])
}

// Emit delivers event to every handler of its level
func (e *Emitter) Emit(event core.Event) {
	e.mu.RLock()
	handlers := e.handlers[event.Level]
	e.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
