package director

import (
	"path"

	"github.com/heuermh/eggo/internal/remote"
)

// Files written to the remote user's home directory.
const (
	ConfFile = "director.conf"
	KeyFile  = "id.pem"
)

const (
	repoURL  = "http://archive.cloudera.com/director/redhat/6/x86_64/director/cloudera-director.repo"
	repoPath = "/etc/yum.repos.d/cloudera-director.repo"
)

// InstallClient returns the commands installing the director client.
func InstallClient() []remote.Command {
	return []remote.Command{
		remote.Sudo("wget " + repoURL + " -O " + repoPath),
		remote.Sudo("yum -y install cloudera-director-client"),
	}
}

// Bootstrap returns the command bootstrapping a cluster from the conf in home.
func Bootstrap(home string) remote.Command {
	return remote.Run("cloudera-director bootstrap " + ConfFile).In(home)
}

// Terminate returns the command terminating the cluster described by the conf in home.
func Terminate(home string) remote.Command {
	return remote.Run("cloudera-director terminate --lp.terminate.assumeYes=true " + ConfFile).In(home)
}

// ConfPath returns the conf location under home.
func ConfPath(home string) string {
	return path.Join(home, ConfFile)
}

// KeyPath returns the private key location under home.
func KeyPath(home string) string {
	return path.Join(home, KeyFile)
}
