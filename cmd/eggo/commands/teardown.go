package commands

import (
	"github.com/spf13/cobra"

	"github.com/heuermh/eggo/cmd/eggo/handlers"
)

// Teardown returns the teardown command.
func Teardown(g *handlers.Globals) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "teardown",
		Short: "Terminate the cluster, the launcher and the network stack",
		Long: `Teardown asks Cloudera Director on the launcher to terminate the
cluster, then terminates the launcher and deletes the CloudFormation stack.

WARNING: This operation is irreversible. All cluster data will be lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Teardown(cmd.Context(), g, assumeYes)
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt (required without a terminal)")
	return cmd
}
