package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"mailwatch/internal/report"
)

func newReportCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Mailbox reports",
	}
	cmd.AddCommand(
		newReportTodayCmd(stdout, stderr),
		newReportUnansweredCmd(stdout, stderr),
	)
	return cmd
}

func newReportTodayCmd(stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Summarise mail received since midnight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), stderr)
			if err != nil {
				return err
			}
			defer s.close()

			sum, err := s.app.Reporter.TodaySummary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, report.FormatTodaySummary(sum)) //nolint:errcheck // best-effort stdout
			return nil
		},
	}
}

func newReportUnansweredCmd(stdout, stderr io.Writer) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "unanswered",
		Short: "List recent mail nobody has replied to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), stderr)
			if err != nil {
				return err
			}
			defer s.close()

			items, err := s.app.Reporter.Unanswered(cmd.Context(), days)
			if err != nil {
				return err
			}
			now := time.Now().In(s.cfg.Location())
			fmt.Fprintln(stdout, report.FormatUnanswered(items, days, now)) //nolint:errcheck // best-effort stdout
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "look back this many days")
	return cmd
}
