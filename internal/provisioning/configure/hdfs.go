package configure

import (
	"fmt"
	"path"

	"github.com/heuermh/eggo/internal/remote"
)

// HDFSHome returns the commands creating the remote user's HDFS home as the
// hdfs superuser.
func HDFSHome(user string) []remote.Command {
	dir := path.Join("/user", user)
	return []remote.Command{
		remote.Run("hadoop fs -mkdir -p " + dir).As("hdfs"),
		remote.Run(fmt.Sprintf("hadoop fs -chown %s:supergroup %s", user, dir)).As("hdfs"),
		remote.Run("hadoop fs -chmod 777 " + dir).As("hdfs"),
	}
}
