package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	TenantID         string
	ClientID         string
	GraphAccessToken string // static bearer token; skips the device-code cache
	GraphBaseURL     string

	CheckInterval     time.Duration
	HeartbeatInterval time.Duration
	MaxEmailsPerCheck int
	MarkAsRead        bool
	EventWindow       time.Duration
	EventLimit        int

	HTTPMaxRetries   int
	HTTPRetryDelay   time.Duration
	HTTPTimeout      time.Duration
	HTTPUsersTimeout time.Duration

	AgentBackend  string // "ollama" or "echo" (dry run without a model)
	OllamaHost    string
	OllamaModel   string
	OllamaTimeout time.Duration

	TelegramBotToken string
	TelegramChatID   int64
	AlertTTL         time.Duration

	DataDir         string // base directory for runtime data (default: "data")
	LogLevel        string
	LogVerbose      bool
	OTELEnabled     bool
	OTELEndpoint    string
	OTELServiceName string
	OTELEnvironment string
	OTELInsecure    bool
	Timezone        string
}

// fileConfig mirrors the TOML layout. It is pre-filled with defaults so the
// decoder only overwrites keys present in the file.
type fileConfig struct {
	DataDir  string `toml:"data_dir"`
	Timezone string `toml:"timezone"`

	Graph struct {
		TenantID            string `toml:"tenant_id"`
		ClientID            string `toml:"client_id"`
		AccessToken         string `toml:"access_token"`
		BaseURL             string `toml:"base_url"`
		MaxRetries          int    `toml:"max_retries"`
		RetryDelaySeconds   int    `toml:"retry_delay_seconds"`
		TimeoutSeconds      int    `toml:"timeout_seconds"`
		UsersTimeoutSeconds int    `toml:"users_timeout_seconds"`
	} `toml:"graph"`

	Monitor struct {
		CheckIntervalSeconds int  `toml:"check_interval_seconds"`
		HeartbeatMinutes     int  `toml:"heartbeat_minutes"`
		MaxEmailsPerCheck    int  `toml:"max_emails_per_check"`
		MarkAsRead           bool `toml:"mark_as_read"`
		EventWindowHours     int  `toml:"event_window_hours"`
		EventLimit           int  `toml:"event_limit"`
	} `toml:"monitor"`

	Agent struct {
		Backend string `toml:"backend"`
	} `toml:"agent"`

	Ollama struct {
		Host           string `toml:"host"`
		Model          string `toml:"model"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
	} `toml:"ollama"`

	Telegram struct {
		BotToken        string `toml:"bot_token"`
		ChatID          int64  `toml:"chat_id"`
		AlertTTLMinutes int    `toml:"alert_ttl_minutes"`
	} `toml:"telegram"`

	Log struct {
		Level   string `toml:"level"`
		Verbose bool   `toml:"verbose"`
	} `toml:"log"`

	OTel struct {
		Enabled     bool   `toml:"enabled"`
		Endpoint    string `toml:"endpoint"`
		ServiceName string `toml:"service_name"`
		Environment string `toml:"environment"`
		Insecure    bool   `toml:"insecure"`
	} `toml:"otel"`
}

func defaults() fileConfig {
	var fc fileConfig
	fc.DataDir = "data"
	fc.Timezone = "UTC"
	fc.Graph.BaseURL = "https://graph.microsoft.com/v1.0"
	fc.Graph.MaxRetries = 3
	fc.Graph.RetryDelaySeconds = 2
	fc.Graph.TimeoutSeconds = 10
	fc.Graph.UsersTimeoutSeconds = 15
	fc.Monitor.CheckIntervalSeconds = 30
	fc.Monitor.HeartbeatMinutes = 20
	fc.Monitor.MaxEmailsPerCheck = 5
	fc.Monitor.EventWindowHours = 24
	fc.Monitor.EventLimit = 3
	fc.Agent.Backend = "ollama"
	fc.Ollama.Host = "http://localhost:11434"
	fc.Ollama.Model = "llama3.2:3b"
	fc.Ollama.TimeoutSeconds = 30
	fc.Telegram.AlertTTLMinutes = 24 * 60
	fc.Log.Level = "info"
	fc.OTel.ServiceName = "mailwatch"
	fc.OTel.Environment = "dev"
	return fc
}

// Load reads MAILWATCH_CONFIG (if set) and then the environment, which wins.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("MAILWATCH_CONFIG"), os.LookupEnv)
}

// LoadFrom applies defaults, the TOML file at path (when non-empty) and the
// variables returned by lookup, in that order.
func LoadFrom(path string, lookup func(string) (string, bool)) (*Config, error) {
	fc := defaults()
	if path != "" {
		md, err := toml.DecodeFile(path, &fc)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if und := md.Undecoded(); len(und) > 0 {
			return nil, fmt.Errorf("config file %s: unknown keys %v", path, und)
		}
	}

	e := envReader{lookup: lookup}
	e.stringVar("TENANT_ID", &fc.Graph.TenantID)
	e.stringVar("CLIENT_ID", &fc.Graph.ClientID)
	e.stringVar("GRAPH_ACCESS_TOKEN", &fc.Graph.AccessToken)
	e.stringVar("GRAPH_BASE_URL", &fc.Graph.BaseURL)
	e.intVar("HTTP_MAX_RETRIES", &fc.Graph.MaxRetries)
	e.intVar("HTTP_RETRY_DELAY_SECONDS", &fc.Graph.RetryDelaySeconds)
	e.intVar("HTTP_TIMEOUT_SECONDS", &fc.Graph.TimeoutSeconds)
	e.intVar("HTTP_USERS_TIMEOUT_SECONDS", &fc.Graph.UsersTimeoutSeconds)
	e.intVar("CHECK_INTERVAL_SECONDS", &fc.Monitor.CheckIntervalSeconds)
	e.intVar("HEARTBEAT_MINUTES", &fc.Monitor.HeartbeatMinutes)
	e.intVar("MAX_EMAILS_PER_CHECK", &fc.Monitor.MaxEmailsPerCheck)
	e.boolVar("MARK_AS_READ", &fc.Monitor.MarkAsRead)
	e.intVar("EVENT_WINDOW_HOURS", &fc.Monitor.EventWindowHours)
	e.intVar("EVENT_LIMIT", &fc.Monitor.EventLimit)
	e.stringVar("AGENT_BACKEND", &fc.Agent.Backend)
	e.stringVar("OLLAMA_HOST", &fc.Ollama.Host)
	e.stringVar("OLLAMA_MODEL", &fc.Ollama.Model)
	e.intVar("OLLAMA_TIMEOUT", &fc.Ollama.TimeoutSeconds)
	e.stringVar("TELEGRAM_BOT_TOKEN", &fc.Telegram.BotToken)
	e.int64Var("TELEGRAM_CHAT_ID", &fc.Telegram.ChatID)
	e.intVar("ALERT_TTL_MINUTES", &fc.Telegram.AlertTTLMinutes)
	e.stringVar("DATA_DIR", &fc.DataDir)
	e.stringVar("LOG_LEVEL", &fc.Log.Level)
	e.boolVar("LOG_VERBOSE", &fc.Log.Verbose)
	e.boolVar("OTEL_ENABLED", &fc.OTel.Enabled)
	e.stringVar("OTEL_EXPORTER_OTLP_ENDPOINT", &fc.OTel.Endpoint)
	e.stringVar("OTEL_SERVICE_NAME", &fc.OTel.ServiceName)
	e.stringVar("OTEL_ENVIRONMENT", &fc.OTel.Environment)
	e.boolVar("OTEL_INSECURE", &fc.OTel.Insecure)
	e.stringVar("TZ", &fc.Timezone)
	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}

	cfg := fc.toConfig()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (fc fileConfig) toConfig() *Config {
	return &Config{
		TenantID:          fc.Graph.TenantID,
		ClientID:          fc.Graph.ClientID,
		GraphAccessToken:  fc.Graph.AccessToken,
		GraphBaseURL:      fc.Graph.BaseURL,
		CheckInterval:     seconds(fc.Monitor.CheckIntervalSeconds),
		HeartbeatInterval: time.Duration(fc.Monitor.HeartbeatMinutes) * time.Minute,
		MaxEmailsPerCheck: fc.Monitor.MaxEmailsPerCheck,
		MarkAsRead:        fc.Monitor.MarkAsRead,
		EventWindow:       time.Duration(fc.Monitor.EventWindowHours) * time.Hour,
		EventLimit:        fc.Monitor.EventLimit,
		HTTPMaxRetries:    fc.Graph.MaxRetries,
		HTTPRetryDelay:    seconds(fc.Graph.RetryDelaySeconds),
		HTTPTimeout:       seconds(fc.Graph.TimeoutSeconds),
		HTTPUsersTimeout:  seconds(fc.Graph.UsersTimeoutSeconds),
		AgentBackend:      strings.ToLower(fc.Agent.Backend),
		OllamaHost:        fc.Ollama.Host,
		OllamaModel:       fc.Ollama.Model,
		OllamaTimeout:     seconds(fc.Ollama.TimeoutSeconds),
		TelegramBotToken:  fc.Telegram.BotToken,
		TelegramChatID:    fc.Telegram.ChatID,
		AlertTTL:          time.Duration(fc.Telegram.AlertTTLMinutes) * time.Minute,
		DataDir:           fc.DataDir,
		LogLevel:          fc.Log.Level,
		LogVerbose:        fc.Log.Verbose,
		OTELEnabled:       fc.OTel.Enabled,
		OTELEndpoint:      fc.OTel.Endpoint,
		OTELServiceName:   fc.OTel.ServiceName,
		OTELEnvironment:   fc.OTel.Environment,
		OTELInsecure:      fc.OTel.Insecure,
		Timezone:          fc.Timezone,
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.GraphAccessToken == "" && (c.TenantID == "" || c.ClientID == "") {
		errs = append(errs, fmt.Errorf("TENANT_ID and CLIENT_ID are required unless GRAPH_ACCESS_TOKEN is set"))
	}
	if c.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("CHECK_INTERVAL_SECONDS must be positive"))
	}
	if c.HeartbeatInterval <= 0 {
		errs = append(errs, fmt.Errorf("HEARTBEAT_MINUTES must be positive"))
	}
	if c.MaxEmailsPerCheck <= 0 {
		errs = append(errs, fmt.Errorf("MAX_EMAILS_PER_CHECK must be positive"))
	}
	if c.HTTPMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("HTTP_MAX_RETRIES must not be negative"))
	}
	if c.HTTPTimeout <= 0 || c.HTTPUsersTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HTTP timeouts must be positive"))
	}
	if c.AgentBackend != "ollama" && c.AgentBackend != "echo" {
		errs = append(errs, fmt.Errorf("AGENT_BACKEND must be ollama or echo, got %q", c.AgentBackend))
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		errs = append(errs, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("TZ %q: %w", c.Timezone, err))
	}
	return errors.Join(errs...)
}

func (c *Config) TelegramEnabled() bool { return c.TelegramBotToken != "" }

func (c *Config) TokenCachePath() string { return filepath.Join(c.DataDir, "token.json") }

func (c *Config) LockPath() string { return filepath.Join(c.DataDir, "mailwatch.lock") }

// Location is the configured timezone; validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) stringVar(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) intVar(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s must be a number: %w", key, err))
		return
	}
	*dst = n
}

func (e *envReader) int64Var(key string, dst *int64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s must be a number: %w", key, err))
		return
	}
	*dst = n
}

func (e *envReader) boolVar(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}
