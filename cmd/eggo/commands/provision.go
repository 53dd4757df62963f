package commands

import (
	"github.com/spf13/cobra"

	"github.com/heuermh/eggo/cmd/eggo/handlers"
)

// Provision returns the provision command.
func Provision(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create the network stack and launcher and bootstrap the cluster",
		Long: `Provision creates a Cloudera cluster on EC2.

The workflow checks the AWS credentials, creates (or reuses) the
CloudFormation network stack, launches (or reuses) the launcher instance,
installs the Cloudera Director client on it and bootstraps the cluster
from the rendered director configuration.

Example:
  eggo provision -r us-east-1 -s demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), g)
		},
	}
}
