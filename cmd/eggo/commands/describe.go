package commands

import (
	"github.com/spf13/cobra"

	"github.com/heuermh/eggo/cmd/eggo/handlers"
)

// Describe returns the describe command.
func Describe(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "List the nodes of the stack with their addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Describe(cmd.Context(), g)
		},
	}
}
