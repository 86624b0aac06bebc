package agent

import (
	"context"
	"fmt"
)

// EchoGenerator is a stub backend that echoes the last message. Used for
// dry runs and tests.
type EchoGenerator struct{}

func (EchoGenerator) Generate(_ context.Context, messages []Message, _ Options) (string, error) {
	if len(messages) == 0 {
		return "", ErrEmptyResponse
	}
	return fmt.Sprintf("echo: %s", messages[len(messages)-1].Content), nil
}
