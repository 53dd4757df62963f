package configure

import (
	"context"
	"fmt"
	"time"

	"github.com/heuermh/eggo/internal/cluster"
	"github.com/heuermh/eggo/internal/platform/aws"
	"github.com/heuermh/eggo/internal/platform/cm"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/remote"
)

const (
	jdkURL = "http://download.oracle.com/otn-pub/java/jdk/8u51-b16/jdk-8u51-linux-x64.rpm"
	jdkRPM = "jdk-8-linux-x64.rpm"

	// JavaHomeExport is appended to the login profile of every host.
	JavaHomeExport = "export JAVA_HOME=`find /usr/java -name \"jdk1.8*\"`"
)

var (
	stopAgent   = remote.Sudo("service cloudera-scm-agent stop")
	startAgent  = remote.Sudo("service cloudera-scm-agent start")
	stopServer  = remote.Sudo("service cloudera-scm-server stop")
	startServer = remote.Sudo("service cloudera-scm-server start")
)

// SwapJDK returns the commands removing old JDKs and installing JDK 8.
func SwapJDK(home string) []remote.Command {
	return []remote.Command{
		remote.Sudo("rpm -qa | grep jdk | xargs -r rpm -e"),
		remote.Sudo("rm -rf /usr/java/jdk1.6*"),
		remote.Sudo("rm -rf /usr/java/jdk1.7*"),
		remote.Run("wget -O " + jdkRPM + " --no-cookies --no-check-certificate " +
			"--header \"Cookie: oraclelicense=accept-securebackup-cookie\" " + jdkURL).In(home),
		remote.Sudo("yum install -y " + jdkRPM).In(home),
	}
}

// ManagerReady returns a command run on the manager host that blocks until
// the manager API accepts connections on port, giving up after timeout.
func ManagerReady(port int, timeout time.Duration) remote.Command {
	return remote.Run(fmt.Sprintf(
		"timeout %d bash -c 'until (exec 3<>/dev/tcp/127.0.0.1/%d) 2>/dev/null; do sleep 2; done'",
		int(timeout.Seconds()), port))
}

// UpgradeJDK replaces the JDK on every cluster host. Services are stopped
// through the manager API, agents and the server are stopped over SSH, the
// JDK is swapped everywhere in parallel, and everything is started again in
// reverse order once the restarted server listens.
func UpgradeJDK(ctx *provisioning.Context, topo *cluster.Topology) error {
	hosts := publicIPs(topo.Hosts())
	managerHost := topo.Manager.PublicIP
	var clusterName string

	err := provisioning.WithManager(ctx, topo.Manager, func(client *cm.Client) error {
		ctx.Observer.Printf("Stopping Cloudera Management Service")
		if err := run(ctx, client.StopManagementService); err != nil {
			return err
		}
		name, err := firstCluster(ctx, client)
		if err != nil {
			return err
		}
		clusterName = name
		ctx.Observer.Printf("Stopping the cluster")
		return run(ctx, func(c context.Context) (*cm.Command, error) { return client.StopCluster(c, clusterName) })
	})
	if err != nil {
		return err
	}

	if err := remote.ExecAll(ctx, ctx.Remote, hosts, stopAgent); err != nil {
		return fmt.Errorf("failed to stop agents: %w", err)
	}
	if _, err := ctx.Remote.Exec(ctx, managerHost, stopServer); err != nil {
		return fmt.Errorf("failed to stop manager server: %w", err)
	}

	home := ctx.Home()
	profile := ctx.Config.Remote.HomePath(".bash_profile")
	err = remote.Parallel(ctx, hosts, func(c context.Context, host string) error {
		if err := remote.ExecSeq(c, ctx.Remote, host, SwapJDK(home)...); err != nil {
			return err
		}
		return remote.Append(c, ctx.Remote, host, profile, JavaHomeExport)
	})
	if err != nil {
		return fmt.Errorf("failed to install JDK 8: %w", err)
	}

	if _, err := ctx.Remote.Exec(ctx, managerHost, startServer); err != nil {
		return fmt.Errorf("failed to start manager server: %w", err)
	}
	ctx.Observer.Printf("Waiting for Cloudera Manager to accept connections")
	ready := ManagerReady(ctx.Config.Manager.Port, ctx.Timeouts.ManagerReady)
	if _, err := ctx.Remote.Exec(ctx, managerHost, ready); err != nil {
		return fmt.Errorf("manager did not come back within %s: %w", ctx.Timeouts.ManagerReady, err)
	}
	if err := remote.ExecAll(ctx, ctx.Remote, hosts, startAgent); err != nil {
		return fmt.Errorf("failed to start agents: %w", err)
	}

	return provisioning.WithManager(ctx, topo.Manager, func(client *cm.Client) error {
		ctx.Observer.Printf("Starting the cluster")
		if err := run(ctx, func(c context.Context) (*cm.Command, error) { return client.StartCluster(c, clusterName) }); err != nil {
			return err
		}
		ctx.Observer.Printf("Starting the Cloudera Management Service")
		return run(ctx, client.StartManagementService)
	})
}

// run issues a manager command and waits for it.
func run(ctx context.Context, issue func(context.Context) (*cm.Command, error)) error {
	cmd, err := issue(ctx)
	if err != nil {
		return err
	}
	return cmd.Wait(ctx)
}

func firstCluster(ctx context.Context, client *cm.Client) (string, error) {
	clusters, err := client.Clusters(ctx)
	if err != nil {
		return "", err
	}
	if len(clusters) == 0 {
		return "", fmt.Errorf("the manager reports no clusters")
	}
	return clusters[0].Name, nil
}

func publicIPs(instances []*aws.Instance) []string {
	out := make([]string, 0, len(instances))
	for _, i := range instances {
		out = append(out, i.PublicIP)
	}
	return out
}
