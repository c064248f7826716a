package events

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// StateSaver writes a whole repository snapshot. storage.Service implements it.
type StateSaver interface {
	SaveState(ctx context.Context, state models.State) error
}

// PersistenceObserver saves the repository after every change.
// Snapshots older than the last saved revision are dropped.
type PersistenceObserver struct {
	name    string
	saver   StateSaver
	timeout time.Duration

	mu           sync.Mutex
	lastRevision uint64
	lastErr      error
	saves        int
}

// NewPersistenceObserver creates an observer that saves through saver.
func NewPersistenceObserver(saver StateSaver) *PersistenceObserver {
	return &PersistenceObserver{
		name:    "PersistenceObserver",
		saver:   saver,
		timeout: 10 * time.Second,
	}
}

// OnEvent saves the snapshot carried by a state change.
func (o *PersistenceObserver) OnEvent(event Event) error {
	data, ok := GetTypedData[StateChangedEvent](event)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Data, event.Type)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if data.Revision != 0 && data.Revision <= o.lastRevision {
		log.Printf("[%s] Skipping stale revision %d (saved %d)", o.name, data.Revision, o.lastRevision)
		return nil
	}

	ctx := event.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.saver.SaveState(ctx, data.State); err != nil {
		o.lastErr = err
		return fmt.Errorf("save after %s: %w", data.Operation, err)
	}

	o.lastErr = nil
	o.lastRevision = data.Revision
	o.saves++
	return nil
}

// LastError returns the error of the most recent failed save, or nil once a later
// save succeeded.
func (o *PersistenceObserver) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Saves returns the number of successful saves.
func (o *PersistenceObserver) Saves() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.saves
}

// GetName returns the observer's name.
func (o *PersistenceObserver) GetName() string {
	return o.name
}

// ShouldHandle accepts state changes only.
func (o *PersistenceObserver) ShouldHandle(eventType string) bool {
	return eventType == EventStateChanged
}

// LoggingObserver logs all events for debugging purposes.
type LoggingObserver struct {
	name    string
	verbose bool
}

// NewLoggingObserver creates a new observer that logs events.
func NewLoggingObserver(verbose bool) *LoggingObserver {
	return &LoggingObserver{
		name:    "LoggingObserver",
		verbose: verbose,
	}
}

// OnEvent logs the event details.
func (o *LoggingObserver) OnEvent(event Event) error {
	if !o.verbose {
		log.Printf("[%s] Event: %s", o.name, event.Type)
		return nil
	}
	if changed, ok := GetTypedData[StateChangedEvent](event); ok {
		log.Printf("[%s] Event: %s, op=%s deck=%s rev=%d decks=%d keywords=%d", o.name, event.Type,
			changed.Operation, changed.DeckID, changed.Revision, len(changed.State.Decks), len(changed.State.Keywords))
		return nil
	}
	log.Printf("[%s] Event: %s, Data: %+v", o.name, event.Type, event.Data)
	return nil
}

// GetName returns the observer's name.
func (o *LoggingObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all events.
func (o *LoggingObserver) ShouldHandle(eventType string) bool {
	return true
}

// Emitter delivers events to the desktop frontend.
type Emitter interface {
	Emit(eventType string, data any)
}

// FrontendObserver forwards events to the frontend. State changes are sent
// without the snapshot; the frontend refetches what it shows.
type FrontendObserver struct {
	name    string
	emitter Emitter
}

// NewFrontendObserver creates an observer that forwards events through emitter.
func NewFrontendObserver(emitter Emitter) *FrontendObserver {
	return &FrontendObserver{
		name:    "FrontendObserver",
		emitter: emitter,
	}
}

// OnEvent forwards the event payload.
func (o *FrontendObserver) OnEvent(event Event) error {
	if o.emitter == nil {
		return nil
	}
	o.emitter.Emit(event.Type, event.Data)
	return nil
}

// GetName returns the observer's name.
func (o *FrontendObserver) GetName() string {
	return o.name
}

// ShouldHandle returns true for all events.
func (o *FrontendObserver) ShouldHandle(eventType string) bool {
	return true
}
