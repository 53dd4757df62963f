package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eggocluster "github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/remote"
	eggotesting "github.com/heuermh/eggo/internal/testing"
	"github.com/heuermh/eggo/internal/util/tags"
)

type staticTemplates map[string]string

func (s staticTemplates) Read(_ context.Context, ref string) ([]byte, error) {
	body, ok := s[ref]
	if !ok {
		return nil, errors.New("no such template")
	}
	return []byte(body), nil
}

func newContext(t *testing.T) (*provisioning.Context, *eggotesting.FakeCloud, *remote.MockExecutor) {
	t.Helper()
	cloud := eggotesting.NewFakeCloud()
	exec := &remote.MockExecutor{}
	cfg := eggotesting.NewConfigBuilder().WithStackName("demo").WithNumWorkers(5).Build()
	ctx := provisioning.NewContext(eggotesting.TestContext(t), cfg, cloud, exec, nil)
	ctx.Observer = provisioning.NewMockObserver()
	ctx.State.SubnetID = "subnet-demo"
	ctx.State.SecurityGroupID = "sg-demo"
	return ctx, cloud, exec
}

func TestProvisionerName(t *testing.T) {
	assert.Equal(t, "cluster", NewProvisioner().Name())
}

func TestProvision_UploadsConfAndBootstraps(t *testing.T) {
	ctx, cloud, exec := newContext(t)
	launcher := cloud.AddInstance("demo", tags.NodeLauncher)
	ctx.State.Launcher = launcher

	require.NoError(t, NewProvisioner().Provision(ctx))

	puts := exec.Puts(launcher.PublicIP)
	require.Len(t, puts, 1)
	assert.Equal(t, "/home/ec2-user/director.conf", puts[0].Path)
	conf := string(puts[0].Content)
	assert.Contains(t, conf, "count: 5\n")
	assert.Contains(t, conf, "subnetId: subnet-demo\n")
	assert.Contains(t, conf, "securityGroupsIds: sg-demo\n")
	assert.Contains(t, conf, `accessKeyId: "AKIATEST"`)
	assert.Contains(t, conf, "image: ami-cluster\n")
	assert.NotContains(t, conf, "%(")

	calls := exec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "put", calls[0].Op)
	assert.Equal(t, "cloudera-director bootstrap director.conf", calls[1].Command.Script)
	assert.Equal(t, "/home/ec2-user", calls[1].Command.Dir)
}

func TestProvision_LocatesLauncherWhenStateEmpty(t *testing.T) {
	ctx, cloud, exec := newContext(t)
	launcher := cloud.AddInstance("demo", tags.NodeLauncher)

	require.NoError(t, NewProvisioner().Provision(ctx))
	assert.Len(t, exec.Puts(launcher.PublicIP), 1)
}

func TestProvision_NoLauncher(t *testing.T) {
	ctx, _, exec := newContext(t)

	err := NewProvisioner().Provision(ctx)
	assert.True(t, eggocluster.IsNotFound(err))
	assert.Empty(t, exec.Calls())
}

func TestProvision_CustomTemplate(t *testing.T) {
	ctx, cloud, exec := newContext(t)
	ctx.State.Launcher = cloud.AddInstance("demo", tags.NodeLauncher)
	ctx.Config.Templates.Director = "/etc/eggo/director.conf"
	ctx.Templates = staticTemplates{"/etc/eggo/director.conf": "workers=%(num_workers)d type=%(worker_instance_type)s 100%%\n"}

	require.NoError(t, NewProvisioner().Provision(ctx))
	puts := exec.Puts(ctx.State.Launcher.PublicIP)
	require.Len(t, puts, 1)
	assert.Equal(t, "workers=5 type=r3.2xlarge 100%\n", string(puts[0].Content))
}

func TestProvision_BadTemplate(t *testing.T) {
	ctx, cloud, exec := newContext(t)
	ctx.State.Launcher = cloud.AddInstance("demo", tags.NodeLauncher)
	ctx.Config.Templates.Director = "bad.conf"
	ctx.Templates = staticTemplates{"bad.conf": "%(unknown)s"}

	err := NewProvisioner().Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing parameter "unknown"`)
	assert.Empty(t, exec.Calls())
}

func TestProvision_BootstrapFailure(t *testing.T) {
	ctx, cloud, exec := newContext(t)
	ctx.State.Launcher = cloud.AddInstance("demo", tags.NodeLauncher)
	exec.ExecFunc = func(_ context.Context, host string, cmd remote.Command) (string, error) {
		return "Validation failed", &remote.Error{Host: host, Command: cmd.String(), Output: "Validation failed", Err: errors.New("exit status 1")}
	}

	err := NewProvisioner().Provision(ctx)
	require.Error(t, err)
	var remoteErr *remote.Error
	assert.True(t, errors.As(err, &remoteErr))
	assert.Contains(t, err.Error(), "director bootstrap failed")
}
