package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const cycleIDKey contextKey = "cycle_id"

func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, cycleIDKey, cycleID)
}

func CycleIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(cycleIDKey).(string)
	return v
}

func NewCycleID() string {
	return uuid.NewString()
}
