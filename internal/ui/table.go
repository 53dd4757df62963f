package ui

import (
	"fmt"
	"io"
	"strings"
)

// NodeRow is one line of the describe output.
type NodeRow struct {
	Role      string
	PublicIP  string
	PrivateIP string
}

// TunnelRow is one line of the web-proxy output.
type TunnelRow struct {
	Name       string
	PublicIP   string
	PrivateIP  string
	RemotePort int
	LocalPort  int
}

const tunnelFormat = "%-22s%-17s%-17s%-7slocalhost:%s"

// FormatTunnelHeader returns the unstyled web-proxy header line.
func FormatTunnelHeader() string {
	return fmt.Sprintf(tunnelFormat, "name", "public", "private", "remote", "local")
}

// FormatTunnelRow returns one unstyled web-proxy line.
func FormatTunnelRow(r TunnelRow) string {
	return fmt.Sprintf(tunnelFormat, r.Name, r.PublicIP, r.PrivateIP,
		fmt.Sprint(r.RemotePort), fmt.Sprint(r.LocalPort))
}

// RenderTunnels writes the web-proxy table.
func RenderTunnels(w io.Writer, rows []TunnelRow) {
	fmt.Fprintln(w, headerStyle.Render(FormatTunnelHeader()))
	for _, r := range rows {
		fmt.Fprintln(w, FormatTunnelRow(r))
	}
}

const nodeFormat = "%-10s%-17s%s"

// RenderNodes writes the describe table: one line per node with its public
// and private address.
func RenderNodes(w io.Writer, rows []NodeRow) {
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(fmt.Sprintf(nodeFormat, "role", "public", "private"), " ")))
	for _, r := range rows {
		fmt.Fprintf(w, nodeFormat+"\n", r.Role, orDash(r.PublicIP), orDash(r.PrivateIP))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
