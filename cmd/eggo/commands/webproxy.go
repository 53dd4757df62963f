package commands

import (
	"github.com/spf13/cobra"

	"github.com/heuermh/eggo/cmd/eggo/handlers"
)

// WebProxy returns the web-proxy command.
func WebProxy(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:     "web-proxy",
		Aliases: []string{"web_proxy"},
		Short:   "Forward the cluster web interfaces to localhost",
		Long: `Web-proxy forwards the Cloudera Manager web UI (7180), the YARN
ResourceManager (8088) and the YARN JobHistory server (19888) to the same
ports on localhost. It runs until interrupted or until a tunnel drops.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.WebProxy(cmd.Context(), g)
		},
	}
}
