package commands

import (
	"github.com/spf13/cobra"

	"github.com/heuermh/eggo/cmd/eggo/handlers"
	"github.com/heuermh/eggo/internal/provisioning/configure"
)

// ConfigCluster returns the config-cluster command.
func ConfigCluster(g *handlers.Globals) *cobra.Command {
	var opts configure.Options

	cmd := &cobra.Command{
		Use:     "config-cluster",
		Aliases: []string{"config_cluster"},
		Short:   "Install the toolchain and genomics packages on the cluster",
		Long: `Config-cluster prepares a bootstrapped cluster for genomics work.

It creates the HDFS home directory, sizes YARN to the instances, upgrades
every host to JDK 8, installs development tools, git, Maven, Gradle and
parquet-tools on the master, builds the selected packages and eggo itself,
and installs the cluster endpoint environment variables.

Example:
  eggo config-cluster --adam --quince --quince-branch develop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ConfigCluster(cmd.Context(), g, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.Adam.Enabled, "adam", false, "Build ADAM")
	f.StringVar(&opts.Adam.Fork, "adam-fork", "", "GitHub fork to clone ADAM from (default bigdatagenomics)")
	f.StringVar(&opts.Adam.Branch, "adam-branch", "", "ADAM branch to build (default master)")
	f.BoolVar(&opts.OpenCB.Enabled, "opencb", false, "Build the OpenCB stack (ga4gh, java-common-libs, biodata, hpg-bigdata)")
	f.BoolVar(&opts.GATK.Enabled, "gatk", false, "Build GATK")
	f.BoolVar(&opts.Quince.Enabled, "quince", false, "Build Quince")
	f.StringVar(&opts.Quince.Fork, "quince-fork", "", "GitHub fork to clone Quince from (default cloudera)")
	f.StringVar(&opts.Quince.Branch, "quince-branch", "", "Quince branch to build (default master)")
	f.BoolVar(&opts.ReinstallEggo, "reinstall-eggo", false, "Remove an existing eggo checkout before installing")

	return cmd
}

// InstallEnvVars returns the install-env-vars command.
func InstallEnvVars(g *handlers.Globals) *cobra.Command {
	return &cobra.Command{
		Use:     "install-env-vars",
		Aliases: []string{"install_env_vars"},
		Short:   "Write the cluster endpoint environment variables on the master",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.InstallEnvVars(cmd.Context(), g)
		},
	}
}

// AdjustYarnMemoryLimits returns the adjust-yarn-memory-limits command.
func AdjustYarnMemoryLimits(g *handlers.Globals) *cobra.Command {
	var restart bool

	cmd := &cobra.Command{
		Use:     "adjust-yarn-memory-limits",
		Aliases: []string{"adjust_yarn_memory_limits"},
		Short:   "Size YARN memory and vcores to the cluster instances",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.AdjustYarnMemoryLimits(cmd.Context(), g, restart)
		},
	}

	cmd.Flags().BoolVar(&restart, "restart", true, "Restart the cluster after deploying client configuration")
	return cmd
}
