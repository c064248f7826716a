// Package app assembles the flashcard runtime shared by the desktop shell and
// the CLI: storage, the deck repository, event observers and the importer.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/ramonehamilton/flashdeck/internal/config"
	"github.com/ramonehamilton/flashdeck/internal/decks"
	"github.com/ramonehamilton/flashdeck/internal/events"
	"github.com/ramonehamilton/flashdeck/internal/export"
	"github.com/ramonehamilton/flashdeck/internal/i18n"
	"github.com/ramonehamilton/flashdeck/internal/inbox"
	"github.com/ramonehamilton/flashdeck/internal/metrics"
	"github.com/ramonehamilton/flashdeck/internal/quiz"
	"github.com/ramonehamilton/flashdeck/internal/storage"
	"github.com/ramonehamilton/flashdeck/internal/storage/repository"
)

// Runtime holds the wired services of a running app.
type Runtime struct {
	Config      *config.Config
	Storage     *storage.Service
	Decks       *decks.Repository
	Dispatcher  *events.EventDispatcher
	Selector    *quiz.Selector
	Translator  *i18n.Translator
	Importer    *export.Importer
	Persistence *events.PersistenceObserver
	Metrics     *metrics.Collector
	Logger      *slog.Logger
}

// Open opens the configured database, backs it up if asked to, loads the
// stored decks and subscribes persistence to repository changes.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	if cfg.Storage.AutoBackup {
		if _, statErr := os.Stat(dbPath); statErr == nil {
			backupCfg := storage.DefaultBackupConfig()
			backupCfg.BackupDir = cfg.Storage.BackupDir
			if path, err := storage.NewBackupManager(dbPath).Backup(backupCfg); err != nil {
				log.Printf("[App] Warning: auto backup failed: %v", err)
			} else {
				log.Printf("[App] Backed up database to %s", path)
			}
		}
	}

	dbCfg := storage.DefaultConfig(dbPath)
	dbCfg.AutoMigrate = true
	db, err := storage.Open(dbCfg)
	if err != nil {
		return nil, err
	}
	svc := storage.NewService(db)

	rt, err := newRuntime(ctx, cfg, svc)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	log.Printf("[App] Loaded %d decks from %s", len(rt.Decks.Decks()), dbPath)
	return rt, nil
}

// OpenWith wires a runtime over an already opened storage service.
func OpenWith(ctx context.Context, cfg *config.Config, svc *storage.Service) (*Runtime, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return newRuntime(ctx, cfg, svc)
}

func newRuntime(ctx context.Context, cfg *config.Config, svc *storage.Service) (*Runtime, error) {
	state, err := svc.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load decks: %w", err)
	}

	logger := slog.Default()
	dispatcher := events.NewEventDispatcher()
	repo := decks.NewRepository(decks.WithDispatcher(dispatcher), decks.WithLogger(logger))
	repo.Restore(state)

	persistence := events.NewPersistenceObserver(svc)
	dispatcher.Register(persistence)
	if cfg.App.DebugMode {
		dispatcher.Register(events.NewLoggingObserver(true))
	}

	lang := cfg.App.Language
	var stored string
	if err := svc.Settings().GetTyped(ctx, repository.SettingLanguage, &stored); err == nil {
		lang = stored
	} else if !errors.Is(err, repository.ErrSettingNotFound) {
		log.Printf("[App] Warning: failed to read language setting: %v", err)
	}
	translator, err := i18n.New(lang)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Config:      cfg,
		Storage:     svc,
		Decks:       repo,
		Dispatcher:  dispatcher,
		Selector:    NewSelector(cfg.Quiz.ShuffleSeed),
		Translator:  translator,
		Importer:    export.NewImporter(repo, dispatcher),
		Persistence: persistence,
		Metrics:     metrics.NewCollector(),
		Logger:      logger,
	}, nil
}

// NewSelector returns a selector shuffling from seed, or randomly when seed is 0.
func NewSelector(seed uint64) *quiz.Selector {
	if seed == 0 {
		return quiz.NewSelector(nil)
	}
	return quiz.NewSelector(rand.New(rand.NewPCG(seed, seed)))
}

// NewInbox creates the import inbox watcher described by the config.
func (r *Runtime) NewInbox(password string) (*inbox.Watcher, error) {
	dir, err := r.Config.ResolveInboxDir()
	if err != nil {
		return nil, err
	}
	debounce, err := r.Config.GetInboxDebounce()
	if err != nil {
		return nil, err
	}
	gap, err := r.Config.GetInboxRateLimit()
	if err != nil {
		return nil, err
	}
	return inbox.New(dir, r.Importer,
		inbox.WithDebounce(debounce),
		inbox.WithMinInterval(gap),
		inbox.WithPassword(password),
		inbox.WithLogger(r.Logger.With("component", "inbox")),
		inbox.WithMetrics(r.Metrics),
	), nil
}

// Close saves the current state one last time and closes the database.
func (r *Runtime) Close(ctx context.Context) error {
	saveErr := r.Storage.SaveState(ctx, r.Decks.Snapshot())
	if saveErr != nil {
		log.Printf("[App] Final save failed: %v", saveErr)
	}
	return errors.Join(saveErr, r.Storage.Close())
}
