// Package agent talks to the text-generation backend used for triage and chat.
package agent

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrEmptyResponse = errors.New("agent: empty response")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are the sampling knobs passed with every generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Generator is the interface for any text-generation backend.
type Generator interface {
	Generate(ctx context.Context, messages []Message, opts Options) (string, error)
}

// UserPrompt is the single-turn message list used by triage.
func UserPrompt(prompt string) []Message {
	return []Message{{Role: RoleUser, Content: prompt}}
}
