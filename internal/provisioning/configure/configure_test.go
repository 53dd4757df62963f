package configure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/remote"
	eggotesting "github.com/heuermh/eggo/internal/testing"
)

type fixture struct {
	ctx     *provisioning.Context
	cloud   *eggotesting.FakeCloud
	exec    *remote.MockExecutor
	manager *eggotesting.FakeManager
	tunnels *eggotesting.LoopbackOpener
	obs     *provisioning.MockObserver
	topo    *cluster.Topology
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cloud := eggotesting.NewFakeCloud()
	cloud.PopulateCluster("demo", 2)
	fm := eggotesting.NewFakeManager(t)
	tunnels := &eggotesting.LoopbackOpener{Target: fm.Addr()}
	exec := &remote.MockExecutor{}
	cfg := eggotesting.NewConfigBuilder().
		WithStackName("demo").
		WithPrivateKeyFile(eggotesting.WritePrivateKey(t)).
		WithManager("admin", "admin", 0).
		Build()

	ctx := provisioning.NewContext(eggotesting.TestContext(t), cfg, cloud, exec, tunnels)
	obs := provisioning.NewMockObserver()
	ctx.Observer = obs

	topo, err := ctx.Locator.ClusterHosts(ctx, "demo")
	require.NoError(t, err)
	return &fixture{ctx: ctx, cloud: cloud, exec: exec, manager: fm, tunnels: tunnels, obs: obs, topo: topo}
}

func TestPackageCommands(t *testing.T) {
	adam, err := Group(GroupAdam)
	require.NoError(t, err)
	require.Len(t, adam, 1)

	t.Run("default fork and branch", func(t *testing.T) {
		cmds := adam[0].Commands("/home/ec2-user", "", "")
		require.Len(t, cmds, 2)
		assert.Equal(t, "git clone https://github.com/bigdatagenomics/adam.git", cmds[0].Script)
		assert.Equal(t, "/home/ec2-user", cmds[0].Dir)
		assert.Equal(t, "mvn clean package -DskipTests", cmds[1].Script)
		assert.Equal(t, "/home/ec2-user/adam", cmds[1].Dir)
		assert.False(t, cmds[1].Sudo)
	})

	t.Run("other fork and branch", func(t *testing.T) {
		cmds := adam[0].Commands("/home/ec2-user", "someone", "feature")
		require.Len(t, cmds, 3)
		assert.Equal(t, "git clone https://github.com/someone/adam.git", cmds[0].Script)
		assert.Equal(t, "git checkout origin/feature", cmds[1].Script)
		assert.Equal(t, "/home/ec2-user/adam", cmds[1].Dir)
	})

	t.Run("default branch named explicitly", func(t *testing.T) {
		assert.Len(t, adam[0].Commands("/home/ec2-user", "", "master"), 2)
	})
}

func TestGroups(t *testing.T) {
	opencb, err := Group(GroupOpenCB)
	require.NoError(t, err)
	var names []string
	for _, p := range opencb {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"ga4gh", "java-common-libs", "biodata", "hpg-bigdata"}, names)

	eggo, err := Group(GroupEggo)
	require.NoError(t, err)
	build := eggo[0].Commands("/home/ec2-user", "", "")[1]
	assert.True(t, build.Sudo)
	assert.Equal(t, "python setup.py install", build.Script)

	_, err = Group("spark")
	assert.EqualError(t, err, `unknown package group "spark"`)
}

func TestOptionsGroups(t *testing.T) {
	opts := Options{
		Quince: Selection{Enabled: true},
		Adam:   Selection{Enabled: true, Fork: "me"},
	}
	groups := opts.groups()
	require.Len(t, groups, 2)
	assert.Equal(t, GroupAdam, groups[0].name)
	assert.Equal(t, "me", groups[0].Fork)
	assert.Equal(t, GroupQuince, groups[1].name)
}

func TestYarnLimits(t *testing.T) {
	l := YarnLimits{MemoryMB: 61440, Vcores: 8}
	assert.Equal(t, map[string]string{
		KeySchedulerMaxMB:     "61440",
		KeySchedulerMaxVcores: "8",
	}, l.ResourceManager())
	assert.Equal(t, map[string]string{
		KeyNodeManagerMB:     "61440",
		KeyNodeManagerVcores: "8",
	}, l.NodeManager())
}

func TestAdjustYarnMemoryLimits(t *testing.T) {
	t.Run("without restart", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, AdjustYarnMemoryLimits(f.ctx, f.topo.Manager, false))

		updates := f.manager.Updates()
		assert.Equal(t, "61440", updates["YARN-1-RESOURCEMANAGER-BASE"][KeySchedulerMaxMB])
		assert.Equal(t, "8", updates["YARN-1-RESOURCEMANAGER-BASE"][KeySchedulerMaxVcores])
		assert.Equal(t, "61440", updates["YARN-1-NODEMANAGER-BASE"][KeyNodeManagerMB])
		assert.Equal(t, "8", updates["YARN-1-NODEMANAGER-BASE"][KeyNodeManagerVcores])
		assert.NotContains(t, updates, "YARN-1-NODEMANAGER-1")
		assert.Equal(t, []string{"cluster/deployClientConfig"}, f.manager.Commands())

		specs := f.tunnels.Specs()
		require.Len(t, specs, 1)
		assert.Equal(t, f.topo.Manager.PublicIP, specs[0].BastionHost)
		assert.Equal(t, f.topo.Manager.PrivateIP, specs[0].RemoteHost)
		assert.Equal(t, 7180, specs[0].RemotePort)
	})

	t.Run("with restart", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, AdjustYarnMemoryLimits(f.ctx, f.topo.Manager, true))
		assert.Equal(t, []string{"cluster/deployClientConfig", "cluster/restart"}, f.manager.Commands())
	})

	t.Run("failed deploy skips restart", func(t *testing.T) {
		f := newFixture(t)
		f.manager.FailCommands["cluster/deployClientConfig"] = true

		err := AdjustYarnMemoryLimits(f.ctx, f.topo.Manager, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated failure")
		assert.Equal(t, []string{"cluster/deployClientConfig"}, f.manager.Commands())
	})
}

func TestInstallEnvVars(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, InstallEnvVars(f.ctx, f.topo))

	scripts := strings.Join(f.exec.Scripts(f.topo.Master.PublicIP), "\n")
	for _, line := range []string{
		"export CM_HOST=" + f.topo.Manager.PrivateIP,
		"export CM_PORT=7180",
		"export EGGO_CLUSTER_NAME=cluster1",
		"export HDFS_NAMENODE=hdfs://ip-10-0-0-3.ec2.internal:8020",
		"export SPARK_MASTER=yarn",
		"export YARN_RESOURCEMANAGER=ip-10-0-0-3.ec2.internal:8032",
		"source /home/ec2-user/eggo_env_vars.sh",
	} {
		assert.Contains(t, scripts, line)
	}
	assert.Contains(t, scripts, "/home/ec2-user/.bash_profile")
	assert.Empty(t, f.exec.Scripts(f.topo.Manager.PublicIP))
}

func TestEnvVarsLinesSorted(t *testing.T) {
	lines := EnvVars{"B": "2", "A": "1"}.Lines()
	assert.Equal(t, []string{"export A=1", "export B=2"}, lines)
}

func TestUpgradeJDK(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, UpgradeJDK(f.ctx, f.topo))

	assert.Equal(t, []string{"mgmt/stop", "cluster/stop", "cluster/start", "mgmt/start"}, f.manager.Commands())

	manager := f.exec.Scripts(f.topo.Manager.PublicIP)
	require.NotEmpty(t, manager)
	assert.Equal(t, "service cloudera-scm-agent stop", manager[0])
	assert.Equal(t, "service cloudera-scm-server stop", manager[1])
	assert.Equal(t, "service cloudera-scm-server start", manager[len(manager)-3])
	assert.Equal(t, "timeout 60 bash -c 'until (exec 3<>/dev/tcp/127.0.0.1/7180) 2>/dev/null; do sleep 2; done'",
		manager[len(manager)-2])
	assert.Equal(t, "service cloudera-scm-agent start", manager[len(manager)-1])

	for _, host := range f.topo.Hosts() {
		scripts := f.exec.Scripts(host.PublicIP)
		joined := strings.Join(scripts, "\n")
		assert.Contains(t, joined, "yum install -y jdk-8-linux-x64.rpm", host.PublicIP)
		assert.Contains(t, joined, "JAVA_HOME", host.PublicIP)
		assert.Equal(t, "service cloudera-scm-agent stop", scripts[0])
		assert.Equal(t, "service cloudera-scm-agent start", scripts[len(scripts)-1])
	}
}

func TestUpgradeJDK_SwapFailureLeavesServicesStopped(t *testing.T) {
	f := newFixture(t)
	worker := f.topo.Workers[0].PublicIP
	f.exec.ExecFunc = func(_ context.Context, host string, cmd remote.Command) (string, error) {
		if host == worker && strings.HasPrefix(cmd.Script, "yum install -y jdk") {
			return "", errors.New("mirror unavailable")
		}
		return "", nil
	}

	err := UpgradeJDK(f.ctx, f.topo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to install JDK 8")
	assert.Equal(t, []string{"mgmt/stop", "cluster/stop"}, f.manager.Commands())
}

func TestUpgradeJDK_ManagerNeverReturns(t *testing.T) {
	f := newFixture(t)
	manager := f.topo.Manager.PublicIP
	f.exec.ExecFunc = func(_ context.Context, host string, cmd remote.Command) (string, error) {
		if host == manager && strings.HasPrefix(cmd.Script, "timeout ") {
			return "", errors.New("exit status 124")
		}
		return "", nil
	}

	err := UpgradeJDK(f.ctx, f.topo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manager did not come back within 1m0s")
	assert.Equal(t, []string{"mgmt/stop", "cluster/stop"}, f.manager.Commands())
	for _, script := range f.exec.Scripts(f.topo.Workers[0].PublicIP) {
		assert.NotEqual(t, "service cloudera-scm-agent start", script)
	}
}

func TestConfigurerRun(t *testing.T) {
	f := newFixture(t)
	opts := Options{Adam: Selection{Enabled: true, Branch: "dev"}}

	require.NoError(t, NewConfigurer(opts).Run(f.ctx))

	master := f.topo.Master.PublicIP
	puts := f.exec.Puts(master)
	require.Len(t, puts, 1)
	assert.Equal(t, "/home/ec2-user/id.pem", puts[0].Path)

	scripts := f.exec.Scripts(master)
	assert.Equal(t, "hadoop fs -mkdir -p /user/ec2-user", scripts[0])
	order := []string{
		"hadoop fs -chmod 777 /user/ec2-user",
		"yum install -y jdk-8-linux-x64.rpm",
		"yum groupinstall -y 'Development Tools'",
		"yum install -y git",
		"tar -xzf apache-maven-3.3.3-bin.tar.gz",
		"unzip gradle-2.6-bin.zip",
		"git clone https://github.com/bigdatagenomics/adam.git",
		"git checkout origin/dev",
		"git clone https://github.com/bigdatagenomics/eggo.git",
		"python setup.py install",
	}
	last := -1
	for _, want := range order {
		idx := indexOf(scripts, want)
		require.GreaterOrEqual(t, idx, 0, "missing %q", want)
		assert.Greater(t, idx, last, "%q out of order", want)
		last = idx
	}
	assert.Contains(t, strings.Join(scripts[last:], "\n"), "eggo_env_vars.sh")

	assert.Equal(t, []string{
		"cluster/deployClientConfig",
		"mgmt/stop", "cluster/stop", "cluster/start", "mgmt/start",
	}, f.manager.Commands())
	assert.True(t, f.obs.Contains("All phases completed"))
}

func TestConfigurerRun_SkipsExistingCheckout(t *testing.T) {
	f := newFixture(t)
	f.exec.ExecFunc = func(_ context.Context, _ string, cmd remote.Command) (string, error) {
		if strings.Contains(cmd.Script, "test -e") && strings.Contains(cmd.Script, "/eggo") {
			return "yes\n", nil
		}
		return "", nil
	}

	require.NoError(t, NewConfigurer(Options{}).Run(f.ctx))
	scripts := f.exec.Scripts(f.topo.Master.PublicIP)
	assert.Equal(t, -1, indexOf(scripts, "git clone https://github.com/bigdatagenomics/eggo.git"))
	assert.True(t, f.obs.Contains("eggo is already checked out; skipping"))
}

func TestConfigurerRun_ReinstallRemovesCheckout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, NewConfigurer(Options{ReinstallEggo: true}).Run(f.ctx))

	scripts := f.exec.Scripts(f.topo.Master.PublicIP)
	rm := indexOf(scripts, "rm -rf /home/ec2-user/eggo")
	clone := indexOf(scripts, "git clone https://github.com/bigdatagenomics/eggo.git")
	require.GreaterOrEqual(t, rm, 0)
	assert.Greater(t, clone, rm)
}

func TestConfigurerRun_StopsAtFirstFailure(t *testing.T) {
	f := newFixture(t)
	f.exec.ExecFunc = func(_ context.Context, _ string, cmd remote.Command) (string, error) {
		if strings.HasPrefix(cmd.Script, "hadoop fs -mkdir") {
			return "", errors.New("namenode in safe mode")
		}
		return "", nil
	}

	err := NewConfigurer(Options{}).Run(f.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hdfs-home phase failed")
	assert.Empty(t, f.manager.Commands())
	assert.False(t, f.obs.Contains("All phases completed"))
}

func TestConfigurerRun_MissingMaster(t *testing.T) {
	cloud := eggotesting.NewFakeCloud()
	cfg := eggotesting.NewConfigBuilder().WithStackName("demo").Build()
	ctx := provisioning.NewContext(eggotesting.TestContext(t), cfg, cloud, &remote.MockExecutor{}, nil)
	ctx.Observer = provisioning.NewMockObserver()

	err := NewConfigurer(Options{}).Run(ctx)
	require.Error(t, err)
	assert.True(t, cluster.IsNotFound(err))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
