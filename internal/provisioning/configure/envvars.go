package configure

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/platform/cm"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/remote"
)

// EnvFile holds the exported endpoint variables, relative to the remote home.
const EnvFile = "eggo_env_vars.sh"

const (
	namenodePort        = 8020
	resourceManagerPort = 8032
)

// EnvVars maps variable name to value.
type EnvVars map[string]string

// Lines returns sorted export lines.
func (e EnvVars) Lines() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("export %s=%s", k, e[k]))
	}
	return lines
}

// DiscoverEnvVars asks the manager where the cluster endpoints live.
func DiscoverEnvVars(ctx *provisioning.Context, client *cm.Client, managerIP string) (EnvVars, error) {
	clusterName, err := firstCluster(ctx, client)
	if err != nil {
		return nil, err
	}
	hosts, err := client.Hosts(ctx)
	if err != nil {
		return nil, err
	}
	services, err := client.Services(ctx, clusterName)
	if err != nil {
		return nil, err
	}

	namenode, err := roleHost(ctx, client, clusterName, services, hosts, "HDFS", "NAMENODE")
	if err != nil {
		return nil, err
	}
	rm, err := roleHost(ctx, client, clusterName, services, hosts, "YARN", "RESOURCEMANAGER")
	if err != nil {
		return nil, err
	}

	return EnvVars{
		"EGGO_CLUSTER_NAME":    clusterName,
		"CM_HOST":              managerIP,
		"CM_PORT":              strconv.Itoa(ctx.Config.Manager.Port),
		"HDFS_NAMENODE":        fmt.Sprintf("hdfs://%s:%d", namenode, namenodePort),
		"YARN_RESOURCEMANAGER": fmt.Sprintf("%s:%d", rm, resourceManagerPort),
		"SPARK_MASTER":         "yarn",
	}, nil
}

// roleHost returns the hostname running the first roleType role of serviceType.
func roleHost(ctx *provisioning.Context, client *cm.Client, clusterName string, services []cm.Service, hosts []cm.Host, serviceType, roleType string) (string, error) {
	svc, err := cm.FindService(services, serviceType)
	if err != nil {
		return "", err
	}
	roles, err := client.Roles(ctx, clusterName, svc.Name)
	if err != nil {
		return "", err
	}
	role, err := cm.FindRole(roles, roleType)
	if err != nil {
		return "", err
	}
	for _, h := range hosts {
		if h.HostID == role.HostRef.HostID {
			return h.Hostname, nil
		}
	}
	return "", fmt.Errorf("%s role %s runs on unknown host %s", roleType, role.Name, role.HostRef.HostID)
}

// InstallEnvVars writes the endpoint variables to the master and sources
// them from the login profile.
func InstallEnvVars(ctx *provisioning.Context, topo *cluster.Topology) error {
	var vars EnvVars
	err := provisioning.WithManager(ctx, topo.Manager, func(client *cm.Client) error {
		v, err := DiscoverEnvVars(ctx, client, topo.Manager.PrivateIP)
		vars = v
		return err
	})
	if err != nil {
		return err
	}

	master := topo.Master.PublicIP
	envPath := ctx.Config.Remote.HomePath(EnvFile)
	if err := remote.Append(ctx, ctx.Remote, master, envPath, vars.Lines()...); err != nil {
		return fmt.Errorf("failed to write %s: %w", envPath, err)
	}
	return remote.Append(ctx, ctx.Remote, master, ctx.Config.Remote.HomePath(".bash_profile"), "source "+envPath)
}
