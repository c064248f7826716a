// Package inbox watches a directory for dropped deck exports and merges them
// into the repository.
//
// Files are picked up once they have been quiet for the debounce period, then
// imported through export.Importer and moved to processed/ or failed/.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/flashdeck/internal/decks"
	"github.com/ramonehamilton/flashdeck/internal/export"
	"github.com/ramonehamilton/flashdeck/internal/metrics"
)

// Subdirectories that receive handled files.
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

const (
	defaultDebounce    = 500 * time.Millisecond
	defaultMinInterval = 2 * time.Second

	// minTick bounds how often pending files are checked.
	minTick = time.Millisecond
)

// FileImporter imports one deck file.
type FileImporter interface {
	ImportFile(ctx context.Context, path, password string) (decks.MergeResult, error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must be quiet before it is imported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithMinInterval sets the minimum gap between two imports.
func WithMinInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithPassword opens encrypted exports dropped in the inbox.
func WithPassword(password string) Option {
	return func(w *Watcher) {
		w.password = password
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMetrics records import timings and outcomes.
func WithMetrics(c *metrics.Collector) Option {
	return func(w *Watcher) {
		w.metrics = c
	}
}

// Watcher imports deck files dropped into a directory.
type Watcher struct {
	dir      string
	importer FileImporter
	debounce time.Duration
	limiter  *rate.Limiter
	password string
	logger   *slog.Logger
	metrics  *metrics.Collector

	mu      sync.Mutex
	pending map[string]time.Time

	stopChan chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for dir.
func New(dir string, importer FileImporter, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		importer: importer,
		debounce: defaultDebounce,
		limiter:  rate.NewLimiter(rate.Every(defaultMinInterval), 1),
		logger:   slog.Default(),
		pending:  make(map[string]time.Time),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Start imports files already in the inbox, then watches for new ones until ctx
// is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) (err error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create inbox: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch inbox: %w", err)
	}

	if _, err := w.Scan(ctx); err != nil {
		return err
	}

	w.logger.Info("watching inbox", "dir", w.dir, "debounce", w.debounce)

	ticker := time.NewTicker(max(w.debounce/2, minTick))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopChan:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 && isDeckFile(event.Name) {
				w.touch(event.Name, time.Now())
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("inbox watcher error", "error", werr)
		case now := <-ticker.C:
			for _, path := range w.due(now) {
				if err := w.limiter.Wait(ctx); err != nil {
					return err
				}
				_, _ = w.ProcessFile(ctx, path)
			}
		}
	}
}

// Stop ends a running Start. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// Scan imports every deck file currently in the inbox, oldest name first, and
// returns how many were imported successfully.
func (w *Watcher) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read inbox: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && isDeckFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	imported := 0
	for _, name := range names {
		if err := w.limiter.Wait(ctx); err != nil {
			return imported, err
		}
		if _, err := w.ProcessFile(ctx, filepath.Join(w.dir, name)); err == nil {
			imported++
		}
	}
	return imported, nil
}

// ProcessFile imports one file and moves it to processed/ on success or
// failed/ otherwise.
func (w *Watcher) ProcessFile(ctx context.Context, path string) (decks.MergeResult, error) {
	start := time.Now()
	result, err := w.importer.ImportFile(ctx, path, w.password)
	if w.metrics != nil {
		w.metrics.RecordImport(time.Since(start), err)
	}
	if err != nil {
		w.logger.Warn("inbox import failed", "file", filepath.Base(path), "error", err)
		if moveErr := w.moveTo(path, FailedDir); moveErr != nil {
			w.logger.Error("failed to move rejected file", "file", path, "error", moveErr)
		}
		return result, err
	}

	w.logger.Info("inbox import",
		"file", filepath.Base(path),
		"added", result.DecksAdded,
		"skipped", result.DecksSkipped,
		"cards", result.CardsImported)
	if moveErr := w.moveTo(path, ProcessedDir); moveErr != nil {
		w.logger.Error("failed to move imported file", "file", path, "error", moveErr)
	}
	return result, nil
}

func (w *Watcher) touch(path string, at time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = at
}

// due removes and returns the pending files quiet since before now-debounce.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(ready)

	out := ready[:0]
	for _, path := range ready {
		if _, err := os.Stat(path); err == nil {
			out = append(out, path)
		}
	}
	return out
}

// moveTo moves path into a subdirectory of the inbox, adding a timestamp when
// the name is taken.
func (w *Watcher) moveTo(path, sub string) error {
	destDir := filepath.Join(w.dir, sub)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	name := filepath.Base(path)
	dest := filepath.Join(destDir, name)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(name)
		dest = filepath.Join(destDir, fmt.Sprintf("%s_%s%s", strings.TrimSuffix(name, ext), time.Now().Format("20060102_150405.000"), ext))
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.Rename(path, dest)
}

func isDeckFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == export.JSONExt || ext == export.EncryptedExt
}
