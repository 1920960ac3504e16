package main

import (
	"context"
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"movierec/internal/app"
	"movierec/internal/config"
	"movierec/internal/logging"
	"movierec/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/movierec/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	if cfg.Logging.File == "" {
		cfg.Logging.File = "movierec.log"
	}
	closer, err := app.InitLogging(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logging: %v", err)
	}
	defer closer.Close()

	svc, err := app.NewService(cfg)
	if err != nil {
		logging.Error().Err(err).Msg("failed to load recommender artifacts")
		log.Fatalf("failed to load recommender artifacts: %v", err)
	}

	m := tui.New(context.Background(), svc)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
