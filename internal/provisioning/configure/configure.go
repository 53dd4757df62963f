package configure

import (
	"fmt"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/remote"
)

// Configurer runs the post-bootstrap configuration of a cluster.
type Configurer struct {
	opts Options
	topo *cluster.Topology
}

// NewConfigurer creates a configurer installing what opts selects.
func NewConfigurer(opts Options) *Configurer {
	return &Configurer{opts: opts}
}

// Run resolves the cluster hosts and runs every configuration step in order.
func (c *Configurer) Run(ctx *provisioning.Context) error {
	topo, err := ctx.Locator.ClusterHosts(ctx, ctx.Config.StackName)
	if err != nil {
		return err
	}
	c.topo = topo

	return provisioning.RunPhases(ctx, c.Phases())
}

// Phases returns the configuration steps in execution order.
func (c *Configurer) Phases() []provisioning.Phase {
	phases := []provisioning.Phase{
		provisioning.PhaseFunc{PhaseName: "private-key", Fn: c.installKey},
		provisioning.PhaseFunc{PhaseName: "hdfs-home", Fn: c.createHDFSHome},
		provisioning.PhaseFunc{PhaseName: "yarn-limits", Fn: func(ctx *provisioning.Context) error {
			return AdjustYarnMemoryLimits(ctx, c.topo.Manager, false)
		}},
		provisioning.PhaseFunc{PhaseName: "jdk", Fn: func(ctx *provisioning.Context) error {
			return UpgradeJDK(ctx, c.topo)
		}},
		provisioning.PhaseFunc{PhaseName: "dev-tools", Fn: c.installDevTools},
		provisioning.PhaseFunc{PhaseName: "build-tools", Fn: c.installBuildTools},
	}
	for _, g := range c.opts.groups() {
		phases = append(phases, provisioning.PhaseFunc{PhaseName: g.name, Fn: func(ctx *provisioning.Context) error {
			return c.installGroup(ctx, g.name, g.Fork, g.Branch)
		}})
	}
	return append(phases,
		provisioning.PhaseFunc{PhaseName: "eggo", Fn: c.installEggo},
		provisioning.PhaseFunc{PhaseName: "env-vars", Fn: func(ctx *provisioning.Context) error {
			return InstallEnvVars(ctx, c.topo)
		}},
	)
}

func (c *Configurer) master() string {
	return c.topo.Master.PublicIP
}

func (c *Configurer) installKey(ctx *provisioning.Context) error {
	return provisioning.InstallPrivateKey(ctx, c.master())
}

func (c *Configurer) createHDFSHome(ctx *provisioning.Context) error {
	ctx.Observer.Printf("Creating HDFS home for %s", ctx.Config.Remote.User)
	return remote.ExecSeq(ctx, ctx.Remote, c.master(), HDFSHome(ctx.Config.Remote.User)...)
}

func (c *Configurer) installDevTools(ctx *provisioning.Context) error {
	ctx.Observer.Printf("Installing development tools")
	return remote.ExecSeq(ctx, ctx.Remote, c.master(), DevTools()...)
}

func (c *Configurer) installBuildTools(ctx *provisioning.Context) error {
	home := ctx.Home()
	profile := ctx.Config.Remote.HomePath(".bash_profile")
	host := c.master()

	ctx.Observer.Printf("Installing git")
	if _, err := ctx.Remote.Exec(ctx, host, Git()); err != nil {
		return err
	}
	for _, tool := range []struct {
		name string
		fn   func(home, version string) ([]remote.Command, string)
		ver  string
	}{
		{"Maven", Maven, MavenVersion},
		{"Gradle", Gradle, GradleVersion},
	} {
		ctx.Observer.Printf("Installing %s %s", tool.name, tool.ver)
		cmds, pathLine := tool.fn(home, tool.ver)
		if err := remote.ExecSeq(ctx, ctx.Remote, host, cmds...); err != nil {
			return err
		}
		if err := remote.Append(ctx, ctx.Remote, host, profile, pathLine); err != nil {
			return err
		}
	}
	ctx.Observer.Printf("Installing parquet-tools %s", ParquetToolsVersion)
	_, err := ctx.Remote.Exec(ctx, host, ParquetTools(home, ParquetToolsVersion))
	return err
}

func (c *Configurer) installGroup(ctx *provisioning.Context, group, fork, branch string) error {
	pkgs, err := Group(group)
	if err != nil {
		return err
	}
	for _, p := range pkgs {
		if err := c.installPackage(ctx, p, fork, branch); err != nil {
			return err
		}
	}
	return nil
}

// installPackage clones and builds p unless a checkout already exists.
func (c *Configurer) installPackage(ctx *provisioning.Context, p Package, fork, branch string) error {
	host := c.master()
	exists, err := remote.Exists(ctx, ctx.Remote, host, p.Dir(ctx.Home()))
	if err != nil {
		return err
	}
	if exists {
		ctx.Observer.Printf("%s is already checked out; skipping", p.Name)
		return nil
	}
	ctx.Observer.Printf("Installing %s", p.Name)
	if err := remote.ExecSeq(ctx, ctx.Remote, host, p.Commands(ctx.Home(), fork, branch)...); err != nil {
		return fmt.Errorf("failed to install %s: %w", p.Name, err)
	}
	return nil
}

func (c *Configurer) installEggo(ctx *provisioning.Context) error {
	pkgs, err := Group(GroupEggo)
	if err != nil {
		return err
	}
	eggo := pkgs[0]
	if c.opts.ReinstallEggo {
		dir := eggo.Dir(ctx.Home())
		if _, err := ctx.Remote.Exec(ctx, c.master(), remote.Sudo("rm -rf "+remote.Quote(dir))); err != nil {
			return err
		}
	}
	return c.installPackage(ctx, eggo, "", "")
}
