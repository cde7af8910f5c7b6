package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"aulaplan/internal/ai"
	"aulaplan/internal/config"
	"aulaplan/internal/logger"
	"aulaplan/internal/storage"
	"aulaplan/internal/wizard"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "aulaplan",
		Short: "AI-assisted didactic planning: proposals and learning situations from curriculum PDFs",
	}
	configPath string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the SQLite database (overrides storage.path)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(refineCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(sdaCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	return cfg
}

// app bundles what every command needs.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store *storage.SQLiteStore
	svc   *wizard.Service
}

func (a *app) Close() {
	a.store.Close()
	a.log.Sync()
}

// initApp opens the database and wires the wizard service. When requireAI
// is false a missing API key is tolerated and AI calls fail with
// ai.ErrMissingAPIKey.
func initApp(ctx context.Context, requireAI bool) *app {
	cfg := loadConfig()

	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	gen, err := ai.NewGenerator(ctx, ai.Options{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
		Timeout:  cfg.Timeout(),
	})
	switch {
	case err == nil:
	case errors.Is(err, ai.ErrMissingAPIKey) && !requireAI:
		lg.Warn("AI provider not configured", "provider", cfg.AI.Provider)
		gen = ai.Unavailable(err)
	default:
		log.Fatalf("Setup failed: %v\nCheck your config.yaml and AULAPLAN_API_KEY.", err)
	}

	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	svc := wizard.NewService(store, gen, wizard.WithTimeout(cfg.Timeout()), wizard.WithLogger(lg))
	return &app{cfg: cfg, log: lg, store: store, svc: svc}
}
