package handlers

import (
	"context"

	"github.com/heuermh/eggo/internal/config"
	"github.com/heuermh/eggo/internal/provisioning"
	"github.com/heuermh/eggo/internal/ui"
	"github.com/heuermh/eggo/internal/util/tags"
)

// loginNodes are the node types an operator can log into.
var loginNodes = []tags.NodeType{tags.NodeMaster, tags.NodeManager, tags.NodeLauncher}

// ValidateLoginNode rejects node types other than master, manager and launcher.
func ValidateLoginNode(node string) (tags.NodeType, error) {
	for _, nt := range loginNodes {
		if string(nt) == node {
			return nt, nil
		}
	}
	return "", config.Errorf("node", "%q is not a valid node type", node)
}

// Login opens an interactive shell on the named node.
func Login(ctx context.Context, g *Globals, node string) error {
	nt, err := ValidateLoginNode(node)
	if err != nil {
		return err
	}
	return withSession(ctx, g, accessRemote, func(pCtx *provisioning.Context) error {
		inst, err := pCtx.Locator.One(pCtx, pCtx.Config.StackName, nt)
		if err != nil {
			return err
		}
		ui.Info(stdout, "Logging into the %s node...", nt)
		return pCtx.Remote.Shell(pCtx, inst.PublicIP)
	})
}
