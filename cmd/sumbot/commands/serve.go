package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jholhewres/sumbot/pkg/sumbot/bot"
	"github.com/jholhewres/sumbot/pkg/sumbot/config"
	"github.com/jholhewres/sumbot/pkg/sumbot/gateway"
	"github.com/jholhewres/sumbot/pkg/sumbot/llm"
	sig "github.com/jholhewres/sumbot/pkg/sumbot/signal"
	"github.com/jholhewres/sumbot/pkg/sumbot/store"
)

// newServeCmd creates the `sumbot serve` command that starts the daemon.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the daemon: poll the relay and answer /summary",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// ── Load config ──
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// ── Configure logger ──
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	logLevel := slog.LevelInfo
	if verbose || cfg.Logging.Level == "debug" {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	logger := slog.New(handler)

	// ── Open the message store ──
	st, err := store.OpenSQLite(cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info("message store opened", "path", cfg.Database.Path)

	// ── Wire the pipeline ──
	relay := sig.NewClient(cfg.Relay, cfg.Group.ID, logger)
	model := llm.NewClient(cfg.LLM, logger)
	b := bot.New(st, model, relay, cfg.Group.ID, cfg.Summary.Limit, logger)
	poller := bot.NewPoller(relay, b, cfg.Poll.Interval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go poller.Run(ctx)

	// ── Optional scheduled digest ──
	var digest *bot.Digest
	if cfg.Digest.Enabled {
		digest = bot.NewDigest(b, cfg.Digest, logger)
		if err := digest.Start(ctx); err != nil {
			return err
		}
	}

	// ── Liveness endpoint ──
	gw := gateway.New(cfg.Gateway, logger)
	if err := gw.Start(); err != nil {
		return err
	}

	logger.Info("sumbot running. Press Ctrl+C to stop.",
		"group", cfg.Group.ID,
		"poll_interval", cfg.Poll.Interval,
		"model", cfg.LLM.Model,
	)

	// ── Wait for shutdown ──
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")
	cancel()

	done := make(chan struct{})
	go func() {
		if digest != nil {
			digest.Stop()
		}
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		_ = gw.Stop(shutdownCtx)
		cancelShutdown()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out after 10s, forcing exit")
	}

	return nil
}
