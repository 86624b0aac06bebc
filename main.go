package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"mailwatch/internal/app"
	"mailwatch/internal/config"
	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, shutdown, err := app.Observability(ctx, cfg, os.Stdout)
	mlog := observability.Component(logger, "main")
	if err != nil {
		return exitCode(ctx, mlog, err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			mlog.Warn(sctx, "otel shutdown failed", observability.AttrErr(err))
		}
	}()

	return exitCode(ctx, mlog, serve(ctx, cfg, logger))
}

// exitCode logs a fatal error and maps it to the process exit status.
func exitCode(ctx context.Context, mlog *observability.Logger, err error) int {
	if err == nil {
		return 0
	}
	ctx = context.WithoutCancel(ctx)
	mlog.Error(ctx, "mailwatch exited", observability.AttrErr(err))
	if errors.Is(err, graph.ErrAuthExpired) {
		mlog.Error(ctx, "credentials rejected; run mailwatch-admin login")
	}
	return 1
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	mlog := observability.Component(logger, "main")

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another mailwatch agent is already running for %s", cfg.DataDir)
	}
	defer lock.Unlock()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if a.Ollama != nil {
		if err := a.Ollama.Ping(ctx); err != nil {
			mlog.Warn(ctx, "ollama not reachable; urgency will fall back to the default", observability.AttrErr(err))
		}
	}
	if a.Telegram != nil {
		if me, err := a.Telegram.GetMe(ctx); err != nil {
			mlog.Warn(ctx, "telegram bot check failed", observability.AttrErr(err))
		} else {
			mlog.Info(ctx, "telegram alerts enabled", "bot", me.Username, "chat_id", cfg.TelegramChatID)
		}
	}

	mlog.Info(ctx, "mailwatch starting",
		"check_interval", cfg.CheckInterval.String(),
		"heartbeat", cfg.HeartbeatInterval.String(),
		"max_emails", cfg.MaxEmailsPerCheck,
		"backend", cfg.AgentBackend,
	)
	return a.Monitor().Run(ctx)
}
