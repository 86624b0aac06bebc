package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mailwatch/internal/app"
	"mailwatch/internal/auth"
	"mailwatch/internal/config"
)

func newLoginCmd(stdout, stderr io.Writer) *cobra.Command {
	var logout bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with the device-code flow and cache the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			store := auth.NewStore(cfg.TokenCachePath())
			if logout {
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(stdout, "token cache %s removed\n", store.Path()) //nolint:errcheck // best-effort stdout
				return nil
			}
			if cfg.TenantID == "" || cfg.ClientID == "" {
				fmt.Fprintln(stderr, "mailwatch-admin login: TENANT_ID and CLIENT_ID are required") //nolint:errcheck // best-effort stderr
				return errExit
			}
			tok, err := auth.Login(cmd.Context(), app.AuthConfig(cfg), store, auth.WritePrompt(stdout), nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "logged in; token valid until %s, cached at %s\n", //nolint:errcheck // best-effort stdout
				tok.Expiry.Format("2006-01-02 15:04"), store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&logout, "logout", false, "remove the cached token instead")
	return cmd
}
