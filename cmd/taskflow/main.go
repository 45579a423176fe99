package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskflow/internal/config"
	"github.com/tgienger/taskflow/internal/db"
	"github.com/tgienger/taskflow/internal/logging"
	"github.com/tgienger/taskflow/internal/storage"
	"github.com/tgienger/taskflow/internal/store"
	"github.com/tgienger/taskflow/internal/ui"
	"go.uber.org/zap"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	memory := flag.Bool("memory", false, "keep tasks in memory only")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.BoolVar(showVersion, "v", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("taskflow %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.LogPath(),
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Pick the durable medium
	var medium storage.Medium
	if *memory {
		medium = storage.NewMemoryMedium()
		logger.Info("using in-memory storage")
	} else {
		database, err := db.Open(cfg.DBPath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing database: %v\n", err)
			os.Exit(1)
		}
		defer database.Close()
		medium = database
		logger.Info("database opened", zap.String("path", cfg.DBPath()))
	}

	taskStorage := storage.New(medium, logger)
	taskStore := store.New(taskStorage, store.WithLogger(logger))

	// Validated by config.Load
	filters, _ := cfg.Filters()
	taskStore.SetFilters(filters)

	// Create and run the application
	app := ui.NewApp(taskStore, taskStorage, cfg.UI.DefaultView)
	p := tea.NewProgram(app, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		logger.Error("application exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
	if a, ok := final.(*ui.App); ok {
		logger.Info("session ended", zap.String("view", string(a.Mode())), zap.Int("tasks", taskStore.Stats().Total))
	}
}
