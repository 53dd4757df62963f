package commands

import (
	"github.com/spf13/cobra"

	"github.com/heuermh/eggo/cmd/eggo/handlers"
)

// Login returns the login command.
func Login(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:       "login <master|manager|launcher>",
		Short:     "Open an interactive shell on a node",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"master", "manager", "launcher"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Login(cmd.Context(), g, args[0])
		},
	}
}
