package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"mailwatch/internal/observability"
)

const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2:3b"
)

type OllamaConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// OllamaClient implements Generator against Ollama's /api/chat endpoint.
type OllamaClient struct {
	host       string
	model      string
	httpClient *http.Client
	log        *observability.Logger
}

func NewOllamaClient(cfg OllamaConfig, logger *slog.Logger) *OllamaClient {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := &OllamaClient{
		host:       strings.TrimRight(cfg.Host, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        observability.Component(logger, "agent.ollama"),
	}
	c.log.Info(context.Background(), "ollama client configured", "model", c.model, "host", c.host)
	return c
}

func (c *OllamaClient) Model() string { return c.model }

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
	Error   string  `json:"error,omitempty"`
}

func (c *OllamaClient) Generate(ctx context.Context, messages []Message, opts Options) (string, error) {
	ctx, span := observability.StartSpan(ctx, "agent.generate",
		attribute.String("model", c.model),
		attribute.Int("messages", len(messages)),
	)
	defer span.End()

	options := map[string]any{"temperature": opts.Temperature}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	payload, err := json.Marshal(ollamaChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options:  options,
	})
	if err != nil {
		return "", fmt.Errorf("ollama: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ollama: request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("ollama: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("ollama: decode: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama: %s", result.Error)
	}
	text := strings.TrimSpace(result.Message.Content)
	c.log.Debug(ctx, "ollama response", "duration_ms", time.Since(start).Milliseconds(), "response_len", len(text))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Ping checks that the server is reachable and has the configured model pulled.
func (c *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("ollama: request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: tags status %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("ollama: decode tags: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == c.model {
			return nil
		}
	}
	return fmt.Errorf("ollama: model %q not pulled", c.model)
}
