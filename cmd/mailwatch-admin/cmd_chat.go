package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newChatCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about recent mail (/help for commands)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), stderr)
			if err != nil {
				return err
			}
			defer s.close()

			sess := s.app.Chat()
			fmt.Fprintln(stdout, "💬 Chat com o agente. Digite /help para comandos ou /sair para encerrar.") //nolint:errcheck // best-effort stdout

			sc := bufio.NewScanner(stdin)
			for {
				fmt.Fprint(stdout, "> ") //nolint:errcheck // best-effort stdout
				if !sc.Scan() {
					break
				}
				reply, quit := sess.Handle(cmd.Context(), sc.Text())
				if quit {
					break
				}
				if reply != "" {
					fmt.Fprintf(stdout, "%s\n", reply) //nolint:errcheck // best-effort stdout
				}
				if cmd.Context().Err() != nil {
					break
				}
			}
			fmt.Fprintln(stdout, "👋 Até logo!") //nolint:errcheck // best-effort stdout
			return sc.Err()
		},
	}
}
