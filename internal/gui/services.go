// Package gui binds the flashcard core to the desktop frontend. Each facade is
// bound to the wails runtime and returns *AppError for every failure.
package gui

import (
	"context"
	"errors"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/ramonehamilton/flashdeck/internal/config"
	"github.com/ramonehamilton/flashdeck/internal/decks"
	"github.com/ramonehamilton/flashdeck/internal/events"
	"github.com/ramonehamilton/flashdeck/internal/export"
	"github.com/ramonehamilton/flashdeck/internal/i18n"
	"github.com/ramonehamilton/flashdeck/internal/metrics"
	"github.com/ramonehamilton/flashdeck/internal/quiz"
	"github.com/ramonehamilton/flashdeck/internal/storage"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

// Services contains all shared services needed by facades.
// This struct is passed to each facade to provide access to common dependencies.
type Services struct {
	// Context for the application
	Context context.Context

	// Loaded configuration
	Config *config.Config

	// In-memory deck store; the single source of truth while the app runs
	Decks *decks.Repository

	// Storage service for settings and backups. May be nil if the database
	// could not be opened; decks then live in memory only.
	Storage *storage.Service

	// Card selection for quizzes
	Selector *quiz.Selector

	// Event fan-out to persistence, logging and the frontend
	Dispatcher *events.EventDispatcher

	// Message catalogs for the active language
	Translator *i18n.Translator

	// Deck file import
	Importer *export.Importer

	// Answer and import timings. Optional.
	Metrics *metrics.Collector
}

// AppError represents an application error with a user-friendly message.
type AppError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Err     error  `json:"-"` // Wrapped error for errors.Is/As chain
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// toAppError converts err into an AppError localized by its domain code.
func (s *Services) toAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	out := &AppError{Message: err.Error(), Code: errorCode(err), Err: err}
	if s.Translator != nil {
		switch {
		case errors.Is(err, quiz.ErrSessionFinished):
			out.Message = s.Translator.T("sessionFinished", nil)
		case out.Code != "":
			out.Message = s.Translator.ErrorMessage(err)
		}
	}
	return out
}

// message localizes id, or returns fallback when no translator is set.
func (s *Services) message(id, fallback string, data map[string]any) string {
	if s.Translator == nil {
		return fallback
	}
	return s.Translator.T(id, data)
}

func errorCode(err error) string {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// emit sends an event to the frontend. It is a no-op outside a wails runtime,
// whose context carries the "events" value.
func (s *Services) emit(eventType string, data any) {
	if s.Context == nil || s.Context.Value("events") == nil {
		return
	}
	wailsruntime.EventsEmit(s.Context, eventType, data)
}

// Emitter adapts the wails runtime to events.Emitter.
type Emitter struct {
	services *Services
}

// NewEmitter creates an emitter that sends through the services' runtime context.
func NewEmitter(services *Services) *Emitter {
	return &Emitter{services: services}
}

// Emit forwards one event to the frontend.
func (e *Emitter) Emit(eventType string, data any) {
	e.services.emit(eventType, data)
}
