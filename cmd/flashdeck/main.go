package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ramonehamilton/flashdeck/internal/app"
	"github.com/ramonehamilton/flashdeck/internal/config"
	"github.com/ramonehamilton/flashdeck/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to config.toml (default: $FLASHDECK_CONFIG or ~/.flashdeck/config.toml)")
	debugMode  = flag.Bool("debug-mode", false, "Log every dispatched event")
	debugShort = flag.Bool("d", false, "Enable debug logging (shorthand for -debug-mode)")
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	flag.Usage = printUsage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *debugMode || *debugShort {
		cfg.App.DebugMode = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, rest := args[0], args[1:]
	switch command {
	case "migrate":
		err = runMigrationCommand(cfg, rest)
	case "backup":
		err = runBackupCommand(cfg, rest)
	case "version":
		fmt.Println(version.String())
	case "decks", "export", "import", "watch", "chart", "quiz", "stats":
		err = withRuntime(ctx, cfg, func(rt *app.Runtime) error {
			return runDeckCommand(ctx, rt, command, rest)
		})
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

func withRuntime(ctx context.Context, cfg *config.Config, fn func(*app.Runtime) error) error {
	rt, err := app.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	return fn(rt)
}

func runDeckCommand(ctx context.Context, rt *app.Runtime, command string, args []string) error {
	switch command {
	case "decks":
		return listDecks(rt, os.Stdout)
	case "export":
		return runExport(rt, args, os.Stdout)
	case "import":
		return runImport(ctx, rt, args, os.Stdout)
	case "watch":
		return runWatch(ctx, rt, args)
	case "chart":
		return runChart(rt, args, os.Stdout)
	case "stats":
		return runStats(rt, args, os.Stdout)
	case "quiz":
		return runQuizCommand(rt, args, os.Stdin, os.Stdout)
	}
	return fmt.Errorf("unknown command %q", command)
}

func printUsage() {
	fmt.Println("Flashdeck - Flashcard Tool")
	fmt.Println("==========================")
	fmt.Println()
	fmt.Println("Usage: flashdeck [-config path] [-d] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  decks      - List decks with card counts and accuracy")
	fmt.Println("  quiz       - Run a quiz in the terminal")
	fmt.Println("  export     - Export decks to JSON (optionally encrypted)")
	fmt.Println("  import     - Import decks from a .json or .fdenc file")
	fmt.Println("  stats      - Write per-card statistics as CSV")
	fmt.Println("  chart      - Render statistics charts as HTML")
	fmt.Println("  watch      - Import files dropped into the inbox directory")
	fmt.Println("  migrate    - Run database migrations")
	fmt.Println("  backup     - Create, list or restore database backups")
	fmt.Println("  version    - Print the version")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  flashdeck quiz -deck Capitals -mode solve")
	fmt.Println("  flashdeck quiz -deck Capitals -mode retryWrong -min-wrong 2")
	fmt.Println("  flashdeck export -o decks.json")
	fmt.Println("  flashdeck import decks.fdenc -password-env DECK_PASSWORD")
	fmt.Println("  flashdeck backup create")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  FLASHDECK_CONFIG   Override the config file path")
	fmt.Println("  FLASHDECK_DB_PATH  Override the database path")
	fmt.Println()
}
