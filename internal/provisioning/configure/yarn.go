package configure

import (
	"context"
	"errors"
	"strconv"

	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/platform/cm"
	"github.com/heuermh/eggo/internal/provisioning"
)

// YARN configuration keys.
const (
	KeySchedulerMaxMB     = "yarn_scheduler_maximum_allocation_mb"
	KeySchedulerMaxVcores = "yarn_scheduler_maximum_allocation_vcores"
	KeyNodeManagerMB      = "yarn_nodemanager_resource_memory_mb"
	KeyNodeManagerVcores  = "yarn_nodemanager_resource_cpu_vcores"
)

var errNoHosts = errors.New("the manager reports no hosts")

// YarnLimits are the per-host resources YARN may hand out.
type YarnLimits struct {
	MemoryMB int64
	Vcores   int
}

// LimitsFor sizes YARN to the whole host.
func LimitsFor(h cm.Host) YarnLimits {
	return YarnLimits{MemoryMB: h.MemoryMB(), Vcores: h.NumCores}
}

// ResourceManager returns the RESOURCEMANAGER settings.
func (l YarnLimits) ResourceManager() map[string]string {
	return map[string]string{
		KeySchedulerMaxMB:     strconv.FormatInt(l.MemoryMB, 10),
		KeySchedulerMaxVcores: strconv.Itoa(l.Vcores),
	}
}

// NodeManager returns the NODEMANAGER settings.
func (l YarnLimits) NodeManager() map[string]string {
	return map[string]string{
		KeyNodeManagerMB:     strconv.FormatInt(l.MemoryMB, 10),
		KeyNodeManagerVcores: strconv.Itoa(l.Vcores),
	}
}

// AdjustYarnMemoryLimits sizes the YARN scheduler and node managers to the
// first host reported by the manager, deploys client configuration and, when
// restart is set, restarts the cluster. All hosts share one instance type.
func AdjustYarnMemoryLimits(ctx *provisioning.Context, manager *aws.Instance, restart bool) error {
	return provisioning.WithManager(ctx, manager, func(client *cm.Client) error {
		clusterName, err := firstCluster(ctx, client)
		if err != nil {
			return err
		}
		hosts, err := client.Hosts(ctx)
		if err != nil {
			return err
		}
		if len(hosts) == 0 {
			return errNoHosts
		}
		limits := LimitsFor(hosts[0])

		services, err := client.Services(ctx, clusterName)
		if err != nil {
			return err
		}
		yarn, err := cm.FindService(services, "YARN")
		if err != nil {
			return err
		}
		groups, err := client.RoleConfigGroups(ctx, clusterName, yarn.Name)
		if err != nil {
			return err
		}
		rm, err := cm.FindRoleConfigGroup(groups, "RESOURCEMANAGER")
		if err != nil {
			return err
		}
		nm, err := cm.FindRoleConfigGroup(groups, "NODEMANAGER")
		if err != nil {
			return err
		}

		ctx.Observer.Printf("Setting YARN limits to %d MB and %d vcores per host", limits.MemoryMB, limits.Vcores)
		if err := client.UpdateRoleConfigGroup(ctx, clusterName, yarn.Name, rm.Name, limits.ResourceManager()); err != nil {
			return err
		}
		if err := client.UpdateRoleConfigGroup(ctx, clusterName, yarn.Name, nm.Name, limits.NodeManager()); err != nil {
			return err
		}

		ctx.Observer.Printf("Deploying client configuration")
		if err := run(ctx, func(c context.Context) (*cm.Command, error) { return client.DeployClientConfig(c, clusterName) }); err != nil {
			return err
		}
		if !restart {
			return nil
		}
		ctx.Observer.Printf("Restarting the cluster")
		return run(ctx, func(c context.Context) (*cm.Command, error) { return client.RestartCluster(c, clusterName) })
	})
}
