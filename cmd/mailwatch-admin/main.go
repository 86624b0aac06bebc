// mailwatch-admin runs one-off mailbox tasks: login, a single check,
// reports, the user directory and an interactive chat.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mailwatch/internal/app"
	"mailwatch/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// errExit signals a non-zero exit after the command already reported its
// error on stderr.
var errExit = errors.New("exit")

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errExit) {
			fmt.Fprintf(stderr, "mailwatch-admin: %v\n", err) //nolint:errcheck // best-effort stderr
		}
		return 1
	}
	return 0
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "mailwatch-admin",
		Short:         "Administer the mailwatch agent and query the mailbox",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(
		newLoginCmd(stdout, stderr),
		newCheckCmd(stdout, stderr),
		newUsersCmd(stdout, stderr),
		newReportCmd(stdout, stderr),
		newChatCmd(stdin, stdout, stderr),
	)
	return root
}

// session is the loaded configuration and wired app for one command.
type session struct {
	cfg      *config.Config
	app      *app.App
	shutdown func(context.Context) error
}

func (s *session) close() {
	if s.shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.shutdown(ctx)
}

// openSession loads config and wires the app. Logs go to stderr so command
// output stays clean.
func openSession(ctx context.Context, stderr io.Writer) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger, shutdown, err := app.Observability(ctx, cfg, stderr)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		s := &session{shutdown: shutdown}
		s.close()
		return nil, err
	}
	return &session{cfg: cfg, app: a, shutdown: shutdown}, nil
}
