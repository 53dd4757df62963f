package destroy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/remote"
	eggotesting "github.com/heuermh/eggo/internal/testing"
	"github.com/heuermh/eggo/internal/util/tags"
)

func newContext(t *testing.T) (*provisioning.Context, *eggotesting.FakeCloud, *remote.MockExecutor) {
	t.Helper()
	cloud := eggotesting.NewFakeCloud()
	cloud.PopulateStack("demo", 3)
	exec := &remote.MockExecutor{}
	// The director terminates the instances it bootstrapped.
	exec.ExecFunc = func(ctx context.Context, _ string, cmd remote.Command) (string, error) {
		if strings.HasPrefix(cmd.Script, "cloudera-director terminate") {
			for _, inst := range cloud.LiveInstances("demo") {
				if inst.NodeType() != tags.NodeLauncher {
					require.NoError(t, cloud.TerminateInstance(ctx, inst.ID))
				}
			}
		}
		return "", nil
	}
	cfg := eggotesting.NewConfigBuilder().WithStackName("demo").Build()
	ctx := provisioning.NewContext(eggotesting.TestContext(t), cfg, cloud, exec, nil)
	ctx.Observer = provisioning.NewMockObserver()
	return ctx, cloud, exec
}

func TestProvisionerName(t *testing.T) {
	assert.Equal(t, "teardown", NewProvisioner().Name())
}

func TestProvision_TearsDownInOrder(t *testing.T) {
	ctx, cloud, exec := newContext(t)
	launcher, err := ctx.Locator.Launcher(ctx, "demo")
	require.NoError(t, err)

	var order []string
	cloud.TerminateInstanceFunc = func(c context.Context, id string) error {
		order = append(order, "terminate "+id)
		return nil
	}
	cloud.DeleteStackFunc = func(c context.Context, name string) error {
		order = append(order, "delete "+name)
		return nil
	}
	exec.ExecFunc = func(_ context.Context, host string, cmd remote.Command) (string, error) {
		order = append(order, "exec "+host)
		return "", nil
	}

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Equal(t, []string{
		"exec " + launcher.PublicIP,
		"terminate " + launcher.ID,
		"delete demo",
	}, order)
	scripts := exec.Scripts(launcher.PublicIP)
	require.Len(t, scripts, 1)
	assert.Equal(t, "cloudera-director terminate --lp.terminate.assumeYes=true director.conf", scripts[0])
	assert.Equal(t, "/home/ec2-user", exec.Calls()[0].Command.Dir)
}

func TestProvision_WaitsWithConfiguredTimeouts(t *testing.T) {
	ctx, cloud, _ := newContext(t)
	ctx.Timeouts.InstanceTerminated = 7 * time.Minute
	ctx.Timeouts.StackDelete = 9 * time.Minute

	var instanceWait, stackWait time.Duration
	cloud.WaitInstanceTerminatedFunc = func(_ context.Context, _ string, d time.Duration) error {
		instanceWait = d
		return nil
	}
	cloud.WaitStackDeletedFunc = func(_ context.Context, _ string, d time.Duration) error {
		stackWait = d
		return nil
	}

	require.NoError(t, NewProvisioner().Provision(ctx))
	assert.Equal(t, 7*time.Minute, instanceWait)
	assert.Equal(t, 9*time.Minute, stackWait)
}

func TestProvision_RemovesEverything(t *testing.T) {
	ctx, cloud, _ := newContext(t)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Empty(t, cloud.LiveInstances("demo"))
	assert.False(t, cloud.HasStack("demo"))
	assert.Equal(t, 1, cloud.StackDeletes)

	obs := ctx.Observer.(*provisioning.MockObserver)
	assert.Len(t, obs.EventsOfType(provisioning.EventResourceDeleted), 2)
}

func TestProvision_DescribeAfterTeardownFails(t *testing.T) {
	ctx, _, _ := newContext(t)
	require.NoError(t, NewProvisioner().Provision(ctx))

	_, err := ctx.Locator.Topology(ctx, "demo")
	require.Error(t, err)
	assert.True(t, cluster.IsNotFound(err))
}

func TestProvision_Failures(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(*eggotesting.FakeCloud, *remote.MockExecutor)
		errorContains string
		stackKept     bool
		launcherKept  bool
	}{
		{
			name: "director terminate fails",
			setup: func(_ *eggotesting.FakeCloud, exec *remote.MockExecutor) {
				exec.ExecFunc = func(context.Context, string, remote.Command) (string, error) {
					return "", errors.New("bad conf")
				}
			},
			errorContains: "director terminate failed",
			stackKept:     true,
			launcherKept:  true,
		},
		{
			name: "launcher termination fails",
			setup: func(cloud *eggotesting.FakeCloud, _ *remote.MockExecutor) {
				cloud.TerminateInstanceFunc = func(context.Context, string) error {
					return errors.New("UnauthorizedOperation")
				}
			},
			errorContains: "failed to terminate launcher",
			stackKept:     true,
			launcherKept:  true,
		},
		{
			name: "stack deletion fails",
			setup: func(cloud *eggotesting.FakeCloud, _ *remote.MockExecutor) {
				cloud.DeleteStackFunc = func(context.Context, string) error {
					return errors.New("DependencyViolation")
				}
			},
			errorContains: "failed to delete stack demo",
			stackKept:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cloud, exec := newContext(t)
			tt.setup(cloud, exec)

			err := NewProvisioner().Provision(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.Equal(t, tt.stackKept, cloud.HasStack("demo"))

			_, lerr := ctx.Locator.Launcher(ctx, "demo")
			assert.Equal(t, tt.launcherKept, lerr == nil)
		})
	}
}

func TestProvision_NoLauncher(t *testing.T) {
	cloud := eggotesting.NewFakeCloud()
	cloud.AddStack("demo")
	cfg := eggotesting.NewConfigBuilder().WithStackName("demo").Build()
	ctx := provisioning.NewContext(eggotesting.TestContext(t), cfg, cloud, &remote.MockExecutor{}, nil)
	ctx.Observer = provisioning.NewMockObserver()

	err := NewProvisioner().Provision(ctx)
	require.Error(t, err)
	assert.True(t, cluster.IsNotFound(err))
	assert.True(t, cloud.HasStack("demo"))
}
