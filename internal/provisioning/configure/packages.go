package configure

import (
	"fmt"
	"path"

	"github.com/heuermh/eggo/internal/remote"
)

// Package is one clone-and-build entry.
type Package struct {
	Name   string
	Repo   string
	Fork   string
	Branch string
	Build  string
	// Root runs the build as root.
	Root bool
}

// Package groups selectable from the command line, in install order.
const (
	GroupAdam   = "adam"
	GroupOpenCB = "opencb"
	GroupGATK   = "gatk"
	GroupQuince = "quince"
	GroupEggo   = "eggo"
)

var catalog = map[string][]Package{
	GroupAdam: {
		{Name: "adam", Repo: "adam", Fork: "bigdatagenomics", Branch: "master", Build: "mvn clean package -DskipTests"},
	},
	GroupOpenCB: {
		{Name: "ga4gh", Repo: "ga4gh", Fork: "opencb", Branch: "master", Build: "mvn clean install -DskipTests"},
		{Name: "java-common-libs", Repo: "java-common-libs", Fork: "opencb", Branch: "develop", Build: "mvn clean install -DskipTests"},
		{Name: "biodata", Repo: "biodata", Fork: "opencb", Branch: "develop", Build: "mvn clean install -DskipTests"},
		{Name: "hpg-bigdata", Repo: "hpg-bigdata", Fork: "opencb", Branch: "develop", Build: "./build.sh"},
	},
	GroupGATK: {
		{Name: "gatk", Repo: "gatk", Fork: "broadinstitute", Branch: "master", Build: "gradle sparkJar"},
	},
	GroupQuince: {
		{Name: "quince", Repo: "quince", Fork: "cloudera", Branch: "master", Build: "mvn clean package -DskipTests"},
	},
	GroupEggo: {
		{Name: "eggo", Repo: "eggo", Fork: "bigdatagenomics", Branch: "master", Build: "python setup.py install", Root: true},
	},
}

// Group returns the packages of a group.
func Group(name string) ([]Package, error) {
	pkgs, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown package group %q", name)
	}
	return append([]Package(nil), pkgs...), nil
}

// CloneURL returns the GitHub URL for fork.
func (p Package) CloneURL(fork string) string {
	return fmt.Sprintf("https://github.com/%s/%s.git", fork, p.Repo)
}

// Dir returns the checkout directory under home.
func (p Package) Dir(home string) string {
	return path.Join(home, p.Repo)
}

// Commands returns clone, optional checkout and build. An empty fork or
// branch selects the package default.
func (p Package) Commands(home, fork, branch string) []remote.Command {
	if fork == "" {
		fork = p.Fork
	}
	if branch == "" {
		branch = p.Branch
	}
	dir := p.Dir(home)

	cmds := []remote.Command{remote.Run("git clone " + p.CloneURL(fork)).In(home)}
	if branch != p.Branch {
		cmds = append(cmds, remote.Run("git checkout origin/"+branch).In(dir))
	}
	build := remote.Run(p.Build).In(dir)
	if p.Root {
		build = remote.Sudo(p.Build).In(dir)
	}
	return append(cmds, build)
}
