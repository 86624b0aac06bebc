package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mailwatch/internal/report"
)

func newUsersCmd(stdout, stderr io.Writer) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List organisation users with their presence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), stderr)
			if err != nil {
				return err
			}
			defer s.close()

			users, err := s.app.Reporter.UsersWithPresence(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, report.FormatUsersTable(users)) //nolint:errcheck // best-effort stdout
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "max", 50, "maximum number of users to look up")
	return cmd
}
