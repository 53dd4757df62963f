// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/heuermh/eggo/cmd/eggo/handlers"
)

// Root returns the root command for the eggo CLI.
func Root() *cobra.Command {
	g := &handlers.Globals{}

	cmd := &cobra.Command{
		Use:           "eggo",
		Short:         "Provision Cloudera genomics clusters on EC2",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return handlers.InitLogging(g)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&g.ConfigPath, "config", "c", "", "Path to configuration file (default ~/.eggo/config.yaml)")
	flags.StringVarP(&g.Region, "region", "r", "", "AWS region (overrides config and EGGO_REGION)")
	flags.StringVarP(&g.StackName, "stack-name", "s", "", "Stack name (overrides config and EGGO_STACK_NAME)")
	flags.StringVar(&g.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.BoolVar(&g.LogJSON, "log-json", false, "Log as JSON instead of console output")
	flags.StringVar(&g.MetricsFile, "metrics-file", "", "Write workflow metrics to this file in Prometheus text format")

	// Lifecycle
	cmd.AddCommand(Provision(g))
	cmd.AddCommand(ConfigCluster(g))
	cmd.AddCommand(Teardown(g))

	// Access
	cmd.AddCommand(Describe(g))
	cmd.AddCommand(Login(g))
	cmd.AddCommand(WebProxy(g))

	// Maintenance
	cmd.AddCommand(InstallEnvVars(g))
	cmd.AddCommand(AdjustYarnMemoryLimits(g))

	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
