package observability

import (
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"runtime"
	"strings"
)

type LogConfig struct {
	Level   string
	Verbose bool
	Output  io.Writer
}

type Logger struct {
	base      *slog.Logger
	component string
}

// New builds the process logger. It is handed to every component explicitly;
// nothing here touches slog's default logger.
func New(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	handler := slog.NewTextHandler(out, &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.Verbose,
	})
	return slog.New(handler)
}

// Nop returns a logger that drops everything. Used by tests and by
// constructors that were given a nil logger.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
}

func Component(base *slog.Logger, name string) *Logger {
	if base == nil {
		base = Nop()
	}
	return &Logger{base: base, component: name}
}

func (l *Logger) Debug(ctx context.Context, msg string, attrs ...any) {
	l.log(ctx, slog.LevelDebug, msg, attrs...)
}

func (l *Logger) Info(ctx context.Context, msg string, attrs ...any) {
	l.log(ctx, slog.LevelInfo, msg, attrs...)
}

func (l *Logger) Warn(ctx context.Context, msg string, attrs ...any) {
	l.log(ctx, slog.LevelWarn, msg, attrs...)
}

func (l *Logger) Error(ctx context.Context, msg string, attrs ...any) {
	l.log(ctx, slog.LevelError, msg, attrs...)
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.base.Enabled(ctx, level) {
		return
	}
	args := make([]any, 0, len(attrs)+6)
	args = append(args, "component", l.component)
	args = append(args, "function", caller(4))
	if cycleID := CycleIDFromContext(ctx); cycleID != "" {
		args = append(args, "cycle_id", cycleID)
	}
	args = append(args, attrs...)
	l.base.Log(ctx, level, msg, args...)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func caller(depth int) string {
	pc := make([]uintptr, 1)
	n := runtime.Callers(depth, pc)
	if n == 0 {
		return "unknown"
	}
	frames := runtime.CallersFrames(pc[:n])
	frame, _ := frames.Next()
	fn := frame.Function
	if fn == "" {
		return "unknown"
	}
	parts := strings.Split(fn, "/")
	return parts[len(parts)-1]
}

func AttrErr(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
