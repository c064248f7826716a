// Package events fans repository and quiz notifications out to observers such as
// the persistence layer, the desktop frontend and the debug log.
package events

import (
	"context"
	"log"
	"sync"
)

// Event is a notification dispatched to observers.
type Event struct {
	// Type is the event type, one of the Event* constants.
	Type string

	// Data is the typed payload; see messages.go for the payload of each type.
	Data any

	// Context carries request scoped values of the operation that raised the event.
	Context context.Context
}

// Observer receives dispatched events.
type Observer interface {
	// OnEvent handles one event. A returned error is logged and does not stop dispatch.
	OnEvent(event Event) error

	// GetName identifies the observer in logs.
	GetName() string

	// ShouldHandle filters event types.
	ShouldHandle(eventType string) bool
}

// EventDispatcher delivers events to registered observers in registration order.
// It is safe for concurrent use.
type EventDispatcher struct {
	observers []Observer
	mu        sync.RWMutex
}

// NewEventDispatcher creates an empty dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		observers: make([]Observer, 0),
	}
}

// Register adds an observer.
func (d *EventDispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	log.Printf("[EventDispatcher] Registered observer: %s", observer.GetName())
}

// Unregister removes an observer. Unknown observers are ignored.
func (d *EventDispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			log.Printf("[EventDispatcher] Unregistered observer: %s", observer.GetName())
			return
		}
	}
}

// Dispatch notifies every interested observer synchronously. Observer failures are
// logged and dispatch continues.
func (d *EventDispatcher) Dispatch(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			log.Printf("[EventDispatcher] Observer %s failed to handle event %s: %v",
				observer.GetName(), event.Type, err)
		}
	}
}

// ObserverCount returns the number of registered observers.
func (d *EventDispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// Clear removes all observers.
func (d *EventDispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = make([]Observer, 0)
}

func (d *EventDispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}

// NewTypedEvent builds an Event carrying data.
func NewTypedEvent[T any](ctx context.Context, eventType string, data T) Event {
	if ctx == nil {
		ctx = context.Background()
	}
	return Event{
		Type:    eventType,
		Data:    data,
		Context: ctx,
	}
}

// GetTypedData extracts the payload of event as T.
func GetTypedData[T any](event Event) (T, bool) {
	var zero T
	if event.Data == nil {
		return zero, false
	}
	typed, ok := event.Data.(T)
	return typed, ok
}
