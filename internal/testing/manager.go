package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/heuermh/eggo/internal/platform/cm"
)

// FakeManager serves the subset of the Cloudera Manager API the workflows
// use. Commands finish immediately; FailCommands lists command names that
// finish unsuccessfully.
type FakeManager struct {
	*httptest.Server

	ClusterName  string
	Hosts        []cm.Host
	FailCommands map[string]bool

	mu       sync.Mutex
	updates  map[string]map[string]string
	commands []string
	nextID   int64
}

// NewFakeManager starts a manager with one cluster, two hosts and YARN and
// HDFS services. It is closed when the test ends.
func NewFakeManager(t *testing.T) *FakeManager {
	t.Helper()
	m := &FakeManager{
		ClusterName: "cluster1",
		Hosts: []cm.Host{
			{HostID: "h-master", IPAddress: "10.0.0.3", Hostname: "ip-10-0-0-3.ec2.internal", NumCores: 8, TotalPhysMemBytes: 64424509440},
			{HostID: "h-worker", IPAddress: "10.0.0.4", Hostname: "ip-10-0-0-4.ec2.internal", NumCores: 8, TotalPhysMemBytes: 64424509440},
		},
		FailCommands: map[string]bool{},
		updates:      map[string]map[string]string{},
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.Close)
	return m
}

// Updates returns the config values written per role config group.
func (m *FakeManager) Updates() map[string]map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]map[string]string, len(m.updates))
	for g, vals := range m.updates {
		c := make(map[string]string, len(vals))
		for k, v := range vals {
			c[k] = v
		}
		out[g] = c
	}
	return out
}

// Commands returns issued command names in order, e.g. "cluster/restart".
func (m *FakeManager) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.commands...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func items[T any](v []T) map[string]any {
	return map[string]any{"items": v}
}

func (m *FakeManager) serve(w http.ResponseWriter, r *http.Request) {
	if u, p, ok := r.BasicAuth(); !ok || u != "admin" || p != "admin" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})
		return
	}
	path := r.URL.Path
	if i := strings.Index(path, "/api/v"); i >= 0 {
		path = path[i+len("/api/v"):]
		if j := strings.Index(path, "/"); j >= 0 {
			path = path[j:]
		}
	}
	clusterPrefix := "/clusters/" + m.ClusterName

	switch {
	case r.Method == http.MethodGet && path == "/clusters":
		writeJSON(w, http.StatusOK, items([]cm.Cluster{{Name: m.ClusterName}}))
	case r.Method == http.MethodGet && path == "/hosts":
		writeJSON(w, http.StatusOK, items(m.Hosts))
	case r.Method == http.MethodGet && path == clusterPrefix+"/services":
		writeJSON(w, http.StatusOK, items([]cm.Service{{Name: "HDFS-1", Type: "HDFS"}, {Name: "YARN-1", Type: "YARN"}}))
	case r.Method == http.MethodGet && path == clusterPrefix+"/services/HDFS-1/roles":
		writeJSON(w, http.StatusOK, items([]cm.Role{
			{Name: "nn", Type: "NAMENODE", HostRef: cm.HostRef{HostID: "h-master"}},
			{Name: "dn", Type: "DATANODE", HostRef: cm.HostRef{HostID: "h-worker"}},
		}))
	case r.Method == http.MethodGet && path == clusterPrefix+"/services/YARN-1/roles":
		writeJSON(w, http.StatusOK, items([]cm.Role{
			{Name: "rm", Type: "RESOURCEMANAGER", HostRef: cm.HostRef{HostID: "h-master"}},
			{Name: "nm", Type: "NODEMANAGER", HostRef: cm.HostRef{HostID: "h-worker"}},
		}))
	case r.Method == http.MethodGet && path == clusterPrefix+"/services/YARN-1/roleConfigGroups":
		writeJSON(w, http.StatusOK, items([]cm.RoleConfigGroup{
			{Name: "YARN-1-RESOURCEMANAGER-BASE", RoleType: "RESOURCEMANAGER", Base: true},
			{Name: "YARN-1-NODEMANAGER-BASE", RoleType: "NODEMANAGER", Base: true},
			{Name: "YARN-1-NODEMANAGER-1", RoleType: "NODEMANAGER"},
		}))
	case r.Method == http.MethodPut && strings.HasPrefix(path, clusterPrefix+"/services/YARN-1/roleConfigGroups/"):
		group := strings.TrimSuffix(strings.TrimPrefix(path, clusterPrefix+"/services/YARN-1/roleConfigGroups/"), "/config")
		var body struct {
			Items []cm.Config `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		m.mu.Lock()
		if m.updates[group] == nil {
			m.updates[group] = map[string]string{}
		}
		for _, c := range body.Items {
			m.updates[group][c.Name] = c.Value
		}
		m.mu.Unlock()
		writeJSON(w, http.StatusOK, body)
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/cm/service/commands/"):
		m.command(w, "mgmt/"+strings.TrimPrefix(path, "/cm/service/commands/"))
	case r.Method == http.MethodPost && strings.HasPrefix(path, clusterPrefix+"/commands/"):
		m.command(w, "cluster/"+strings.TrimPrefix(path, clusterPrefix+"/commands/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no route for " + r.Method + " " + path})
	}
}

func (m *FakeManager) command(w http.ResponseWriter, name string) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.commands = append(m.commands, name)
	failed := m.FailCommands[name]
	m.mu.Unlock()

	info := cm.CommandInfo{ID: id, Name: name, Success: !failed}
	if failed {
		info.ResultMessage = "simulated failure"
	}
	writeJSON(w, http.StatusOK, info)
}

// Addr returns the host:port the manager listens on.
func (m *FakeManager) Addr() string {
	return m.Listener.Addr().String()
}
