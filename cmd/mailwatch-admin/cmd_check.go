package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mailwatch/internal/graph"
	"mailwatch/internal/monitor"
	"mailwatch/internal/report"
	"mailwatch/internal/triage"
)

func newCheckCmd(stdout, stderr io.Writer) *cobra.Command {
	var withEvents bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single monitoring cycle and print the triage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), stderr)
			if err != nil {
				return err
			}
			defer s.close()

			var (
				results []triage.Result
				events  []graph.CalendarEvent
			)
			m := s.app.Monitor(
				monitor.WithResultHandler(func(_ context.Context, r triage.Result) { results = append(results, r) }),
				monitor.WithEventsHandler(func(_ context.Context, ev []graph.CalendarEvent) { events = ev }),
			)
			if err := m.Tick(cmd.Context()); err != nil {
				return err
			}
			if withEvents {
				ev, err := s.app.Graph.UpcomingEvents(cmd.Context(), s.cfg.EventWindow, s.cfg.EventLimit)
				if err != nil {
					return err
				}
				events = ev
			}

			if len(results) == 0 {
				fmt.Fprintln(stdout, "📭 Nenhum email novo") //nolint:errcheck // best-effort stdout
			}
			if out := report.FormatResults(results, nil); out != "" {
				fmt.Fprintln(stdout, out) //nolint:errcheck // best-effort stdout
			}
			if withEvents || len(events) > 0 {
				fmt.Fprintln(stdout, report.FormatEvents(events)) //nolint:errcheck // best-effort stdout
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withEvents, "events", false, "also list upcoming calendar events")
	return cmd
}
