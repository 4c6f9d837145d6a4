package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumiread/lumiread/internal/answer"
	"github.com/lumiread/lumiread/internal/api"
	"github.com/lumiread/lumiread/internal/config"
	"github.com/lumiread/lumiread/internal/history"
	"github.com/lumiread/lumiread/internal/pipeline"
	"github.com/lumiread/lumiread/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the answer service.
	client := answer.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	svc := answer.NewService(client, answer.NewStats(time.Hour), cfg.ContextTokenBudget, log)

	// Session and history state.
	sessions := session.NewManager()
	hist := history.NewStore(cfg.HistoryDir)

	// Initialize the import pipeline.
	orch := pipeline.NewOrchestrator(cfg, svc, sessions, hist, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, svc, sessions, hist, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting lumiread", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
