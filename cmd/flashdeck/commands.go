package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ramonehamilton/flashdeck/internal/app"
	"github.com/ramonehamilton/flashdeck/internal/charts"
	"github.com/ramonehamilton/flashdeck/internal/config"
	"github.com/ramonehamilton/flashdeck/internal/decks"
	"github.com/ramonehamilton/flashdeck/internal/export"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

func listDecks(rt *app.Runtime, w io.Writer) error {
	summaries := rt.Decks.DeckSummaries()
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, rt.Translator.T("noDecksYet", nil))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCARDS\tCORRECT\tWRONG\tACCURACY")
	for _, s := range summaries {
		accuracy := "-"
		if s.Attempts > 0 {
			accuracy = fmt.Sprintf("%.0f%%", float64(s.Correct)/float64(s.Attempts)*100)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", s.ID, s.Title, s.CardCount, s.Correct, s.Wrong, accuracy)
	}
	return tw.Flush()
}

// findDeck resolves a deck by id, then by exact title, then by case-insensitive title.
func findDeck(repo *decks.Repository, ref string) (models.Deck, error) {
	if deck, err := repo.Deck(ref); err == nil {
		return deck, nil
	}
	all := repo.Decks()
	for _, d := range all {
		if d.Title == ref {
			return d, nil
		}
	}
	for _, d := range all {
		if strings.EqualFold(d.Title, ref) {
			return d, nil
		}
	}
	return models.Deck{}, models.ErrDeckNotFound
}

func runExport(rt *app.Runtime, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("o", rt.Config.ExportPath(), "Output file")
	passwordEnv := fs.String("password-env", "", "Environment variable holding the encryption password")
	pretty := fs.Bool("pretty", rt.Config.Export.PrettyJSON, "Indent the JSON output")
	envelope := fs.Bool("envelope", rt.Config.Export.Envelope, "Wrap decks in a versioned envelope")
	force := fs.Bool("force", false, "Overwrite an existing file")
	deckRef := fs.String("deck", "", "Export only this deck (id or title)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	selected := rt.Decks.Decks()
	if *deckRef != "" {
		deck, err := findDeck(rt.Decks, *deckRef)
		if err != nil {
			return fmt.Errorf("%s: %w", *deckRef, err)
		}
		selected = []models.Deck{deck}
	}

	password, err := passwordFromEnv(*passwordEnv)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	written, err := export.ExportDecks(selected, *output, export.DeckOptions{
		Compact:   !*pretty,
		Envelope:  *envelope,
		Password:  password,
		Overwrite: *force,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, rt.Translator.T("exportDone", map[string]any{"Count": len(selected), "Path": written}))
	return err
}

func runImport(ctx context.Context, rt *app.Runtime, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	passwordEnv := fs.String("password-env", "", "Environment variable holding the decryption password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("import requires at least one file")
	}

	password, err := passwordFromEnv(*passwordEnv)
	if err != nil {
		return err
	}

	var errs []error
	for _, path := range fs.Args() {
		result, err := rt.Importer.ImportFile(ctx, path, password)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", path, rt.Translator.T("importDone", map[string]any{
			"Added":   result.DecksAdded,
			"Skipped": result.DecksSkipped,
		}))
		if result.CardsRejected > 0 {
			fmt.Fprintf(w, "  %d cards rejected\n", result.CardsRejected)
		}
	}
	return errors.Join(errs...)
}

func runStats(rt *app.Runtime, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	output := fs.String("o", "", "Output CSV file (default: stdout)")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *output == "" {
		return export.WriteStatsCSV(w, rt.Decks.Decks())
	}
	if err := export.ExportStatsCSV(rt.Decks.Decks(), *output, *force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Wrote statistics to %s\n", *output)
	return err
}

func runChart(rt *app.Runtime, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	output := fs.String("o", "", "Output HTML file (default: reports/ in the app directory)")
	open := fs.Bool("open", true, "Open the report in the browser")
	theme := fs.String("theme", rt.Config.App.Theme, "Chart theme (light or dark)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *output
	if path == "" {
		dir, err := config.HomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "reports", fmt.Sprintf("flashdeck-stats-%s.html", time.Now().Format("20060102-150405")))
	}

	cfg := charts.DefaultChartConfig()
	cfg.Theme = *theme
	if err := charts.RenderReport(rt.Decks.Decks(), cfg, path); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			return errors.New(rt.Translator.T("noDecksYet", nil))
		}
		return err
	}
	fmt.Fprintf(w, "Wrote report to %s\n", path)

	if *open {
		if err := charts.OpenInBrowser(path); err != nil {
			log.Printf("Warning: Failed to open report: %v", err)
		}
	}
	return nil
}

func runWatch(ctx context.Context, rt *app.Runtime, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	passwordEnv := fs.String("password-env", "", "Environment variable holding the password for .fdenc files")
	once := fs.Bool("once", false, "Import the files already in the inbox and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	password, err := passwordFromEnv(*passwordEnv)
	if err != nil {
		return err
	}
	watcher, err := rt.NewInbox(password)
	if err != nil {
		return err
	}

	if *once {
		n, err := watcher.Scan(ctx)
		log.Printf("Processed %d files from %s", n, watcher.Dir())
		return err
	}

	log.Printf("Watching %s for deck files (Ctrl+C to stop)", watcher.Dir())
	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("Inbox watcher stopped")
	return nil
}

func passwordFromEnv(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	password := os.Getenv(name)
	if password == "" {
		return "", fmt.Errorf("environment variable %s is empty", name)
	}
	return password, nil
}
