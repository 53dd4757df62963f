package configure

// Selection enables a package group, optionally from another fork or branch.
type Selection struct {
	Enabled bool
	Fork    string
	Branch  string
}

// Options selects what the configuration workflow installs beyond the
// always-installed toolchain and eggo itself.
type Options struct {
	Adam   Selection
	OpenCB Selection
	GATK   Selection
	Quince Selection

	// ReinstallEggo removes an existing eggo checkout before installing.
	ReinstallEggo bool
}

// groups returns the enabled package groups in install order.
func (o Options) groups() []groupSelection {
	all := []groupSelection{
		{GroupAdam, o.Adam},
		{GroupOpenCB, o.OpenCB},
		{GroupGATK, o.GATK},
		{GroupQuince, o.Quince},
	}
	var out []groupSelection
	for _, g := range all {
		if g.Enabled {
			out = append(out, g)
		}
	}
	return out
}

type groupSelection struct {
	name string
	Selection
}
