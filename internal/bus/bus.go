// Package bus is a synchronous in-process publish/subscribe bus for settings events.
//
// Publish calls every matching handler on the caller's goroutine in
// registration order, whether they subscribed to one kind or to all of them.
// A failing handler does not stop delivery to the rest.
package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/qualcodeapp/prefs-core/internal/domain"
)

// Handler receives a published event.
type Handler func(ctx context.Context, event domain.Event) error

type subscription struct {
	id      uint64
	kind    domain.EventKind // empty matches every kind
	handler Handler
}

func (s subscription) matches(kind domain.EventKind) bool {
	return s.kind == "" || s.kind == kind
}

// Bus dispatches events to subscribers.
type Bus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

// New creates an empty Bus.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bus{logger: logger}
}

// Subscribe registers h for events of kind and returns a function that removes it.
func (b *Bus) Subscribe(kind domain.EventKind, h Handler) func() {
	return b.add(kind, h)
}

// SubscribeAll registers h for every event kind.
func (b *Bus) SubscribeAll(h Handler) func() {
	return b.add("", h)
}

func (b *Bus) add(kind domain.EventKind, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, kind: kind, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs = remove(b.subs, id)
	}
}

// Publish delivers event to its subscribers and returns their joined errors.
// Handlers run without the bus lock held, so they may publish or subscribe.
func (b *Bus) Publish(ctx context.Context, event domain.Event) error {
	b.mu.RLock()
	var handlers []Handler
	for _, s := range b.subs {
		if s.matches(event.Kind()) {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if err := call(ctx, h, event); err != nil {
			b.logger.Warn("event handler failed",
				slog.String("kind", string(event.Kind())),
				slog.String("correlation_id", event.Metadata().CorrelationID),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	b.logger.Debug("event published",
		slog.String("kind", string(event.Kind())),
		slog.Int("handlers", len(handlers)),
		slog.Int("failed", len(errs)))

	return errors.Join(errs...)
}

// call runs h, converting a panic into an error.
func call(ctx context.Context, h Handler, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, event)
}

func remove(subs []subscription, id uint64) []subscription {
	out := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
