// Package app wires configuration into the Graph client, the model, the
// triage pipeline and the reporters shared by the agent and the admin CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"mailwatch/internal/agent"
	"mailwatch/internal/auth"
	"mailwatch/internal/chat"
	"mailwatch/internal/config"
	"mailwatch/internal/graph"
	"mailwatch/internal/heartbeat"
	"mailwatch/internal/monitor"
	"mailwatch/internal/observability"
	"mailwatch/internal/platform/telegram"
	"mailwatch/internal/report"
	"mailwatch/internal/triage"
)

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Graph    *graph.Client
	Model    agent.Generator
	Ollama   *agent.OllamaClient // nil with the echo backend
	Pipeline *triage.Pipeline
	Reporter *report.Reporter
	Telegram *telegram.Client
}

// Observability builds the process logger and installs OTel providers. The
// returned shutdown flushes exporters.
func Observability(ctx context.Context, cfg *config.Config, out io.Writer) (*slog.Logger, func(context.Context) error, error) {
	logger := observability.New(observability.LogConfig{
		Level:   cfg.LogLevel,
		Verbose: cfg.LogVerbose,
		Output:  out,
	})
	shutdown, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:     cfg.OTELEnabled,
		Endpoint:    cfg.OTELEndpoint,
		ServiceName: cfg.OTELServiceName,
		Environment: cfg.OTELEnvironment,
		Insecure:    cfg.OTELInsecure,
	})
	if err != nil {
		return logger, nil, fmt.Errorf("init otel: %w", err)
	}
	return logger, shutdown, nil
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tokens, err := Tokens(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	hc := &http.Client{Transport: observability.NewTransport(http.DefaultTransport, logger)}
	gc := graph.NewClient(tokens,
		graph.WithBaseURL(cfg.GraphBaseURL),
		graph.WithHTTPClient(hc),
		graph.WithRetryPolicy(RetryPolicy(cfg)),
		graph.WithLogger(logger),
	)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Graph:    gc,
		Reporter: report.New(gc, gc, clockIn(cfg.Location()), logger),
	}
	if cfg.AgentBackend == "echo" {
		a.Model = agent.EchoGenerator{}
	} else {
		a.Ollama = agent.NewOllamaClient(agent.OllamaConfig{
			Host:    cfg.OllamaHost,
			Model:   cfg.OllamaModel,
			Timeout: cfg.OllamaTimeout,
		}, logger)
		a.Model = a.Ollama
	}

	var notifier triage.Notifier
	if cfg.TelegramEnabled() {
		a.Telegram = telegram.NewClient(cfg.TelegramBotToken)
		notifier = telegram.NewAlerter(a.Telegram, cfg.TelegramChatID, telegram.NewDedup(cfg.AlertTTL), logger)
	}
	a.Pipeline = triage.NewPipeline(a.Model, notifier, logger)
	return a, nil
}

// Monitor builds the polling loop with a fresh heartbeat.
func (a *App) Monitor(opts ...monitor.Option) *monitor.Monitor {
	hb := heartbeat.New(a.Config.HeartbeatInterval, nil, a.Logger)
	return monitor.New(a.Graph, a.Graph, a.Pipeline, hb, monitor.Config{
		CheckInterval: a.Config.CheckInterval,
		MaxItems:      a.Config.MaxEmailsPerCheck,
		EventWindow:   a.Config.EventWindow,
		EventLimit:    a.Config.EventLimit,
		MarkAsRead:    a.Config.MarkAsRead,
	}, a.Logger, opts...)
}

func (a *App) Chat() *chat.Session {
	return chat.NewSession(a.Model, a.Graph, a.Reporter, clockIn(a.Config.Location()), a.Logger)
}

// Tokens prefers a static GRAPH_ACCESS_TOKEN and otherwise reads the
// device-code cache.
func Tokens(ctx context.Context, cfg *config.Config, logger *slog.Logger) (oauth2.TokenSource, error) {
	if cfg.GraphAccessToken != "" {
		return auth.Static(cfg.GraphAccessToken), nil
	}
	src, err := auth.TokenSource(ctx, AuthConfig(cfg), auth.NewStore(cfg.TokenCachePath()), logger)
	if err != nil {
		return nil, fmt.Errorf("load credentials (run mailwatch-admin login): %w", err)
	}
	return src, nil
}

func AuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{TenantID: cfg.TenantID, ClientID: cfg.ClientID}
}

func RetryPolicy(cfg *config.Config) graph.RetryPolicy {
	return graph.RetryPolicy{
		MaxRetries:      cfg.HTTPMaxRetries,
		BaseDelay:       cfg.HTTPRetryDelay,
		RequestTimeout:  cfg.HTTPTimeout,
		UserListTimeout: cfg.HTTPUsersTimeout,
	}
}

func clockIn(loc *time.Location) func() time.Time {
	return func() time.Time { return time.Now().In(loc) }
}
