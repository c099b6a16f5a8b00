// Package events provides the typed publish/subscribe channel the account
// controller uses for cross-subsystem side effects.
//
// The legacy client broadcast process-wide named notifications; this package
// replaces that with an explicit bus injected into the controller, so
// subscribers (stats submission, follow-list sync) are wired at construction
// and substitutable in tests.
package events

import (
	"context"
	"sync"
)

// Event is a typed account event.
type Event interface {
	// Name returns the stable event name used for subscription routing.
	Name() string
}

// UserAuthenticated is published after every successful authentication
// commit. Guest entry does not publish: there is no remote account for
// subscribers to sync against.
type UserAuthenticated struct {
	Username string
}

// Name implements Event.
func (UserAuthenticated) Name() string { return "account.user_authenticated" }

// HeaderStatsReady signals that header statistics may be fetched for the
// signed-in user. It follows UserAuthenticated asynchronously so the commit
// never waits on stats consumers.
type HeaderStatsReady struct {
	Username string
}

// Name implements Event.
func (HeaderStatsReady) Name() string { return "account.header_stats_ready" }

// Bus publishes account events to registered subscribers.
type Bus interface {
	Publish(ctx context.Context, event Event)
}

// Handler consumes a published event.
type Handler func(ctx context.Context, event Event)

// Broker is an in-process Bus with per-event-name subscriber lists.
// Publish delivers synchronously in subscription order; handlers that need
// to do slow work should hand off to their own goroutines.
type Broker struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBroker creates an empty in-process event broker.
func NewBroker() *Broker {
	return &Broker{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for one event name.
func (b *Broker) Subscribe(name string, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], handler)
}

// Publish delivers the event to every subscriber of its name.
func (b *Broker) Publish(ctx context.Context, event Event) {
	if b == nil || event == nil {
		return
	}
	b.mu.RLock()
	handlers := b.handlers[event.Name()]
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}
