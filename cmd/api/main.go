package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/dossier-agent/backend/internal/config"
	"github.com/zhouzirui/dossier-agent/backend/internal/handler"
	"github.com/zhouzirui/dossier-agent/backend/internal/middleware"
	"github.com/zhouzirui/dossier-agent/backend/internal/service/dossier"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var dossierService *dossier.Service
	if cfg.AI.Enabled() {
		dossierService, err = dossier.NewFromConfig(ctx, cfg)
		if err != nil {
			log.Printf("warning: failed to initialize dossier service: %v", err)
			log.Println("continuing without dossier generation - check the ARK_* variables")
		} else {
			log.Println("dossier service initialized successfully")
		}
	} else {
		log.Println("Ark credentials not configured, dossier generation disabled")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled() {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
		log.Printf("rate limiting generate routes: %.1f/min burst %d", cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	}

	router := handler.NewRouter(dossierService, limiter)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	// No WriteTimeout: a dossier request blocks until the agent finishes.
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Dossier agent listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
