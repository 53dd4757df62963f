package configure

import (
	"fmt"
	"path"

	"github.com/heuermh/eggo/internal/remote"
)

// Tool versions installed on the master.
const (
	MavenVersion        = "3.3.3"
	GradleVersion       = "2.6"
	ParquetToolsVersion = "1.8.1"
)

// DevTools returns the compiler toolchain and Python packaging installs.
func DevTools() []remote.Command {
	return []remote.Command{
		remote.Sudo("yum groupinstall -y 'Development Tools'"),
		remote.Sudo("yum install -y cmake xz-devel ncurses ncurses-devel"),
		remote.Sudo("yum install -y zlib zlib-devel snappy snappy-devel"),
		remote.Sudo("yum install -y python-devel"),
		remote.Sudo("curl https://bootstrap.pypa.io/get-pip.py | python"),
		remote.Sudo("pip install -U pip setuptools"),
	}
}

// Git returns the git install.
func Git() remote.Command {
	return remote.Sudo("yum install -y git")
}

// Maven returns the download and unpack commands and the PATH line for the
// given version.
func Maven(home, version string) ([]remote.Command, string) {
	archive := fmt.Sprintf("apache-maven-%s-bin.tar.gz", version)
	url := fmt.Sprintf("http://apache.mesi.com.ar/maven/maven-3/%s/binaries/%s", version, archive)
	return []remote.Command{
		remote.Run("wget " + url).In(home),
		remote.Run("tar -xzf " + archive).In(home),
	}, pathExport(path.Join(home, "apache-maven-"+version, "bin"))
}

// Gradle returns the download and unpack commands and the PATH line for the
// given version.
func Gradle(home, version string) ([]remote.Command, string) {
	archive := fmt.Sprintf("gradle-%s-bin.zip", version)
	return []remote.Command{
		remote.Run("wget https://services.gradle.org/distributions/" + archive).In(home),
		remote.Run("unzip " + archive).In(home),
	}, pathExport(path.Join(home, "gradle-"+version, "bin"))
}

// ParquetTools returns the jar download for the given version.
func ParquetTools(home, version string) remote.Command {
	return remote.Run(fmt.Sprintf(
		"curl -L -O http://search.maven.org/remotecontent?filepath=org/apache/parquet/parquet-tools/%[1]s/parquet-tools-%[1]s.jar",
		version,
	)).In(home)
}

func pathExport(dir string) string {
	return "export PATH=" + dir + ":$PATH"
}
