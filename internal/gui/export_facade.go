package gui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/ramonehamilton/flashdeck/internal/charts"
	"github.com/ramonehamilton/flashdeck/internal/config"
	"github.com/ramonehamilton/flashdeck/internal/export"
	"github.com/ramonehamilton/flashdeck/internal/storage"
)

// ExportFacade handles exporting, importing and backing up decks.
type ExportFacade struct {
	services *Services
}

// NewExportFacade creates a new ExportFacade.
func NewExportFacade(services *Services) *ExportFacade {
	return &ExportFacade{
		services: services,
	}
}

// ExportResult reports where an export was written.
type ExportResult struct {
	Path    string `json:"path"`
	Decks   int    `json:"decks"`
	Message string `json:"message"`
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Path          string `json:"path"`
	DecksAdded    int    `json:"decksAdded"`
	DecksSkipped  int    `json:"decksSkipped"`
	CardsImported int    `json:"cardsImported"`
	CardsRejected int    `json:"cardsRejected"`
	Message       string `json:"message"`
}

func (e *ExportFacade) exportConfig() config.ExportConfig {
	if e.services.Config == nil {
		return config.DefaultConfig().Export
	}
	return e.services.Config.Export
}

// ExportDecks asks for a destination and exports every deck. A non-empty
// password encrypts the file. A cancelled dialog returns nil, nil.
func (e *ExportFacade) ExportDecks(ctx context.Context, password string) (*ExportResult, error) {
	cfg := e.exportConfig()
	filePath, err := wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		DefaultDirectory: cfg.Dir,
		DefaultFilename:  cfg.FileName,
		Title:            "Export Decks",
		Filters: []wailsruntime.FileFilter{
			{DisplayName: "Deck Files (*.json, *.fdenc)", Pattern: "*.json;*.fdenc"},
		},
	})
	if err != nil {
		return nil, &AppError{Message: fmt.Sprintf("Failed to open save dialog: %v", err), Err: err}
	}
	if filePath == "" {
		// User cancelled
		return nil, nil
	}
	return e.ExportDecksTo(filePath, password)
}

// ExportDecksTo exports every deck to filePath, replacing an existing file.
func (e *ExportFacade) ExportDecksTo(filePath, password string) (*ExportResult, error) {
	cfg := e.exportConfig()
	all := e.services.Decks.Decks()

	written, err := export.ExportDecks(all, filePath, export.DeckOptions{
		Compact:   !cfg.PrettyJSON,
		Envelope:  cfg.Envelope,
		Password:  password,
		Overwrite: true,
	})
	if err != nil {
		return nil, &AppError{Message: e.services.message("exportFailed", "Export failed", nil), Err: err}
	}

	log.Printf("Successfully exported %d decks to %s", len(all), written)
	return &ExportResult{
		Path:    written,
		Decks:   len(all),
		Message: e.services.message("exportDone", fmt.Sprintf("Exported %d decks to %s", len(all), written), map[string]any{"Count": len(all), "Path": written}),
	}, nil
}

// ImportDecks asks for a deck file and merges it. A cancelled dialog returns
// nil, nil.
func (e *ExportFacade) ImportDecks(ctx context.Context, password string) (*ImportResult, error) {
	filePath, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: "Import Decks",
		Filters: []wailsruntime.FileFilter{
			{DisplayName: "Deck Files (*.json, *.fdenc)", Pattern: "*.json;*.fdenc"},
		},
	})
	if err != nil {
		return nil, &AppError{Message: fmt.Sprintf("Failed to open file dialog: %v", err), Err: err}
	}
	if filePath == "" {
		// User cancelled
		return nil, nil
	}
	return e.ImportDecksFrom(ctx, filePath, password)
}

// ImportDecksFrom merges the decks in filePath. Decks whose id already exists
// are skipped.
func (e *ExportFacade) ImportDecksFrom(ctx context.Context, filePath, password string) (*ImportResult, error) {
	result, err := e.services.Importer.ImportFile(ctx, filePath, password)
	if err != nil {
		msg := e.services.message("importFailed", "Import failed", nil)
		switch {
		case errors.Is(err, export.ErrUnsupportedFile):
			msg = e.services.message("jsonOnly", "Only JSON files can be selected.", nil)
		case errors.Is(err, export.ErrPasswordRequired):
			msg = e.services.message("passwordRequired", "This file is encrypted. Enter its password.", nil)
		}
		return nil, &AppError{Message: msg, Err: err}
	}

	return &ImportResult{
		Path:          filePath,
		DecksAdded:    result.DecksAdded,
		DecksSkipped:  result.DecksSkipped,
		CardsImported: result.CardsImported,
		CardsRejected: result.CardsRejected,
		Message: e.services.message("importDone",
			fmt.Sprintf("Imported %d decks (%d already present)", result.DecksAdded, result.DecksSkipped),
			map[string]any{"Added": result.DecksAdded, "Skipped": result.DecksSkipped}),
	}, nil
}

// ExportStats asks for a destination and writes per-card statistics as CSV.
func (e *ExportFacade) ExportStats(ctx context.Context) (string, error) {
	filePath, err := wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		DefaultFilename: fmt.Sprintf("flashdeck-stats-%s.csv", time.Now().Format("2006-01-02")),
		Title:           "Export Statistics to CSV",
		Filters: []wailsruntime.FileFilter{
			{DisplayName: "CSV Files (*.csv)", Pattern: "*.csv"},
		},
	})
	if err != nil {
		return "", &AppError{Message: fmt.Sprintf("Failed to open save dialog: %v", err), Err: err}
	}
	if filePath == "" {
		return "", nil
	}
	return filePath, e.ExportStatsTo(filePath)
}

// ExportStatsTo writes per-card statistics to filePath.
func (e *ExportFacade) ExportStatsTo(filePath string) error {
	if err := export.ExportStatsCSV(e.services.Decks.Decks(), filePath, true); err != nil {
		return &AppError{Message: e.services.message("exportFailed", "Export failed", nil), Err: err}
	}
	return nil
}

// OpenStatsReport renders the charts report into the app directory and opens
// it in the browser.
func (e *ExportFacade) OpenStatsReport() (string, error) {
	dir, err := config.HomeDir()
	if err != nil {
		return "", &AppError{Message: fmt.Sprintf("Failed to locate app directory: %v", err), Err: err}
	}
	path, err := e.WriteStatsReport(filepath.Join(dir, "reports"))
	if err != nil {
		return "", err
	}
	if err := charts.OpenInBrowser(path); err != nil {
		log.Printf("Warning: Failed to open report: %v", err)
	}
	return path, nil
}

// WriteStatsReport renders the charts report into dir and returns its path.
func (e *ExportFacade) WriteStatsReport(dir string) (string, error) {
	cfg := charts.DefaultChartConfig()
	if e.services.Config != nil && e.services.Config.App.Theme == "dark" {
		cfg.Theme = "dark"
	}

	path := filepath.Join(dir, fmt.Sprintf("flashdeck-stats-%s.html", time.Now().Format("20060102-150405")))
	if err := charts.RenderReport(e.services.Decks.Decks(), cfg, path); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			return "", &AppError{Message: e.services.message("noDecksYet", "No decks yet", nil), Err: err}
		}
		return "", &AppError{Message: fmt.Sprintf("Failed to render report: %v", err), Err: err}
	}
	return path, nil
}

// CreateBackup snapshots the database into the configured backup directory.
func (e *ExportFacade) CreateBackup(password string) (string, error) {
	if e.services.Storage == nil {
		return "", &AppError{Message: "Database not initialized"}
	}

	backupCfg := storage.DefaultBackupConfig()
	backupCfg.Password = password
	if e.services.Config != nil {
		backupCfg.BackupDir = e.services.Config.Storage.BackupDir
	}

	path, err := storage.NewBackupManager(e.services.Storage.DB().Path()).Backup(backupCfg)
	if err != nil {
		return "", &AppError{Message: fmt.Sprintf("Failed to create backup: %v", err), Err: err}
	}
	log.Printf("Created backup at %s", path)
	return path, nil
}
