package main

import (
	"context"
	"log"

	"github.com/ramonehamilton/flashdeck/internal/app"
	"github.com/ramonehamilton/flashdeck/internal/config"
	"github.com/ramonehamilton/flashdeck/internal/events"
	"github.com/ramonehamilton/flashdeck/internal/gui"
	"github.com/ramonehamilton/flashdeck/internal/inbox"
	"github.com/ramonehamilton/flashdeck/internal/storage"
	"github.com/ramonehamilton/flashdeck/internal/version"
)

// App struct
type App struct {
	ctx      context.Context
	cancel   context.CancelFunc
	runtime  *app.Runtime
	services *gui.Services
	inbox    *inbox.Watcher

	Decks    *gui.DeckFacade
	Cards    *gui.CardFacade
	Quiz     *gui.QuizFacade
	Export   *gui.ExportFacade
	Settings *gui.SettingsFacade
}

// NewApp creates a new App application struct. Facades exist before startup so
// they can be bound; their services are filled in by startup.
func NewApp() *App {
	services := &gui.Services{}
	return &App{
		services: services,
		Decks:    gui.NewDeckFacade(services),
		Cards:    gui.NewCardFacade(services),
		Quiz:     gui.NewQuizFacade(services),
		Export:   gui.NewExportFacade(services),
		Settings: gui.NewSettingsFacade(services),
	}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	cfg, err := loadConfig()
	if err != nil {
		log.Printf("Warning: Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Printf("Warning: Failed to open database: %v", err)
		log.Printf("Decks will be kept in memory only for this session")
		rt, err = openInMemory(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
	}
	a.runtime = rt

	*a.services = gui.Services{
		Context:    ctx,
		Config:     cfg,
		Decks:      rt.Decks,
		Storage:    rt.Storage,
		Selector:   rt.Selector,
		Dispatcher: rt.Dispatcher,
		Translator: rt.Translator,
		Importer:   rt.Importer,
		Metrics:    rt.Metrics,
	}
	rt.Dispatcher.Register(events.NewFrontendObserver(gui.NewEmitter(a.services)))

	if cfg.Inbox.Enabled {
		a.startInbox()
	}
	log.Printf("%s started", version.String())
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openInMemory(ctx context.Context, cfg *config.Config) (*app.Runtime, error) {
	svc, err := storage.NewMemoryService()
	if err != nil {
		return nil, err
	}
	return app.OpenWith(ctx, cfg, svc)
}

func (a *App) startInbox() {
	w, err := a.runtime.NewInbox("")
	if err != nil {
		log.Printf("Warning: Failed to set up import inbox: %v", err)
		return
	}
	a.inbox = w
	go func() {
		if err := w.Start(a.ctx); err != nil && a.ctx.Err() == nil {
			log.Printf("Import inbox stopped: %v", err)
		}
	}()
}

// shutdown is called when the app shuts down
func (a *App) shutdown(ctx context.Context) {
	if a.inbox != nil {
		a.inbox.Stop()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.runtime != nil {
		if err := a.runtime.Close(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
}

// GetVersion returns the application version.
func (a *App) GetVersion() string {
	return version.GetVersion()
}
