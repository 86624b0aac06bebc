package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mailwatch/internal/graph"
	"mailwatch/internal/observability"
)

func TestExitCode(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantLogs []string
		noLogs   []string
	}{
		{name: "clean shutdown", wantCode: 0, noLogs: []string{"level=ERROR"}},
		{
			name:     "wiring failure",
			err:      errors.New("acquire instance lock: busy"),
			wantCode: 1,
			wantLogs: []string{"level=ERROR", "component=main", "acquire instance lock: busy"},
			noLogs:   []string{"mailwatch-admin login"},
		},
		{
			name:     "expired credentials",
			err:      fmt.Errorf("monitor: %w", graph.ErrAuthExpired),
			wantCode: 1,
			wantLogs: []string{"mailwatch exited", "run mailwatch-admin login"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			mlog := observability.Component(observability.New(observability.LogConfig{Output: &buf}), "main")
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if got := exitCode(ctx, mlog, tc.err); got != tc.wantCode {
				t.Fatalf("exitCode = %d, want %d", got, tc.wantCode)
			}
			out := buf.String()
			for _, want := range tc.wantLogs {
				if !strings.Contains(out, want) {
					t.Errorf("log missing %q:\n%s", want, out)
				}
			}
			for _, unwanted := range tc.noLogs {
				if strings.Contains(out, unwanted) {
					t.Errorf("log contains %q:\n%s", unwanted, out)
				}
			}
		})
	}
}
