package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"movierec/internal/app"
	"movierec/internal/config"
	"movierec/internal/logging"
	"movierec/internal/web"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, addr string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/movierec/config.yaml if not provided)")
	flag.StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
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
	if addr != "" {
		cfg.Server.Addr = addr
	}

	closer, err := app.InitLogging(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to init logging: %v", err)
	}
	defer closer.Close()

	svc, err := app.NewService(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load recommender artifacts")
	}

	srv, err := web.NewServer(svc, web.Config{
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   time.Duration(cfg.Server.RateLimitWindowSec) * time.Second,
		CORSOrigins:       cfg.Server.CORSOrigins,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build web server")
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logging.Err(httpServer.Shutdown(shutdownCtx)).Msg("server stopped")
}
