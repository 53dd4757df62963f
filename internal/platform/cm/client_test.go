package cm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type apiServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recorded
}

func newAPIServer(t *testing.T, routes map[string]http.HandlerFunc) *apiServer {
	t.Helper()
	s := &apiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "admin" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, recorded{r.Method, r.URL.Path, r.URL.RawQuery, string(body)})
		s.mu.Unlock()

		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
			return
		}
		h(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *apiServer) Requests() []recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recorded(nil), s.requests...)
}

func jsonResponse(v any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
}

func newTestClient(s *apiServer, opts ...Option) *Client {
	opts = append([]Option{WithPollInterval(5 * time.Millisecond)}, opts...)
	return NewClient(s.URL+"/api/v9", "admin", "admin", opts...)
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:64999/api/v9", BaseURL("127.0.0.1", 64999, 9))
}

func TestClient_Reads(t *testing.T) {
	s := newAPIServer(t, map[string]http.HandlerFunc{
		"GET /api/v9/clusters": jsonResponse(map[string]any{"items": []Cluster{{Name: "cluster1"}}}),
		"GET /api/v9/hosts": jsonResponse(map[string]any{"items": []Host{{
			HostID: "h1", IPAddress: "10.0.0.3", Hostname: "ip-10-0-0-3", NumCores: 8, TotalPhysMemBytes: 64424509440,
		}}}),
		"GET /api/v9/clusters/cluster1/services": jsonResponse(map[string]any{"items": []Service{
			{Name: "HDFS-1", Type: "HDFS"}, {Name: "YARN-1", Type: "YARN"},
		}}),
		"GET /api/v9/clusters/cluster1/services/YARN-1/roles": jsonResponse(map[string]any{"items": []Role{
			{Name: "rm", Type: "RESOURCEMANAGER", HostRef: HostRef{HostID: "h1"}},
		}}),
		"GET /api/v9/clusters/cluster1/services/YARN-1/roleConfigGroups": jsonResponse(map[string]any{"items": []RoleConfigGroup{
			{Name: "YARN-1-RESOURCEMANAGER-BASE", RoleType: "RESOURCEMANAGER", Base: true},
		}}),
	})
	c := newTestClient(s)
	ctx := context.Background()

	clusters, err := c.Clusters(ctx)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, "cluster1", clusters[0].Name)

	hosts, err := c.Hosts(ctx)
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, 8, hosts[0].NumCores)
	assert.Equal(t, int64(61440), hosts[0].MemoryMB())

	services, err := c.Services(ctx, "cluster1")
	require.NoError(t, err)
	yarn, err := FindService(services, "YARN")
	require.NoError(t, err)
	assert.Equal(t, "YARN-1", yarn.Name)

	roles, err := c.Roles(ctx, "cluster1", "YARN-1")
	require.NoError(t, err)
	rm, err := FindRole(roles, "RESOURCEMANAGER")
	require.NoError(t, err)
	assert.Equal(t, "h1", rm.HostRef.HostID)

	groups, err := c.RoleConfigGroups(ctx, "cluster1", "YARN-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Base)

	reqs := s.Requests()
	assert.Equal(t, "view=full", reqs[1].Query)
}

func TestClient_UpdateRoleConfigGroup(t *testing.T) {
	s := newAPIServer(t, map[string]http.HandlerFunc{
		"PUT /api/v9/clusters/cluster1/services/YARN-1/roleConfigGroups/YARN-1-NODEMANAGER-BASE/config": jsonResponse(map[string]any{"items": []Config{}}),
	})
	c := newTestClient(s)

	err := c.UpdateRoleConfigGroup(context.Background(), "cluster1", "YARN-1", "YARN-1-NODEMANAGER-BASE", map[string]string{
		"yarn_nodemanager_resource_memory_mb":  "61440",
		"yarn_nodemanager_resource_cpu_vcores": "8",
	})
	require.NoError(t, err)

	reqs := s.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"items":[
		{"name":"yarn_nodemanager_resource_cpu_vcores","value":"8"},
		{"name":"yarn_nodemanager_resource_memory_mb","value":"61440"}
	]}`, reqs[0].Body)
}

func TestClient_APIError(t *testing.T) {
	s := newAPIServer(t, map[string]http.HandlerFunc{
		"GET /api/v9/clusters": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"API version 9 is not supported"}`))
		},
	})

	_, err := newTestClient(s).Clusters(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "API version 9 is not supported", apiErr.Message)
	assert.Equal(t, "cm api GET /clusters: status 400: API version 9 is not supported", apiErr.Error())
}

func TestClient_BadCredentials(t *testing.T) {
	s := newAPIServer(t, nil)
	c := NewClient(s.URL+"/api/v9", "admin", "wrong")

	_, err := c.Clusters(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func commandSequence(infos ...CommandInfo) http.HandlerFunc {
	var mu sync.Mutex
	i := 0
	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		info := infos[i]
		if i < len(infos)-1 {
			i++
		}
		mu.Unlock()
		jsonResponse(info)(w, r)
	}
}

func TestCommand_WaitPollsUntilInactive(t *testing.T) {
	s := newAPIServer(t, map[string]http.HandlerFunc{
		"POST /api/v9/clusters/cluster1/commands/restart": jsonResponse(CommandInfo{ID: 42, Name: "Restart", Active: true}),
		"GET /api/v9/commands/42": commandSequence(
			CommandInfo{ID: 42, Name: "Restart", Active: true},
			CommandInfo{ID: 42, Name: "Restart", Active: false, Success: true},
		),
	})
	c := newTestClient(s)

	cmd, err := c.RestartCluster(context.Background(), "cluster1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), cmd.ID)

	require.NoError(t, cmd.Wait(context.Background()))
	assert.ErrorIs(t, cmd.Wait(context.Background()), ErrCommandConsumed)

	var polls int
	for _, r := range s.Requests() {
		if r.Path == "/api/v9/commands/42" {
			polls++
		}
	}
	assert.Equal(t, 2, polls)
}

func TestCommand_WaitSurfacesFailure(t *testing.T) {
	s := newAPIServer(t, map[string]http.HandlerFunc{
		"POST /api/v9/clusters/cluster1/commands/deployClientConfig": jsonResponse(CommandInfo{ID: 7, Name: "DeployClientConfig", Active: true}),
		"GET /api/v9/commands/7": jsonResponse(CommandInfo{
			ID: 7, Name: "DeployClientConfig", Active: false, Success: false, ResultMessage: "host unreachable",
		}),
	})
	c := newTestClient(s)

	cmd, err := c.DeployClientConfig(context.Background(), "cluster1")
	require.NoError(t, err)

	err = cmd.Wait(context.Background())
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, int64(7), cmdErr.ID)
	assert.Equal(t, "command DeployClientConfig (7) failed: host unreachable", cmdErr.Error())
}

func TestCommand_WaitAlreadyFinished(t *testing.T) {
	s := newAPIServer(t, map[string]http.HandlerFunc{
		"POST /api/v9/cm/service/commands/stop":  jsonResponse(CommandInfo{ID: 1, Name: "Stop", Success: true}),
		"POST /api/v9/cm/service/commands/start": jsonResponse(CommandInfo{ID: 2, Name: "Start", Success: true}),
	})
	c := newTestClient(s)
	ctx := context.Background()

	stop, err := c.StopManagementService(ctx)
	require.NoError(t, err)
	require.NoError(t, stop.Wait(ctx))

	start, err := c.StartManagementService(ctx)
	require.NoError(t, err)
	require.NoError(t, start.Wait(ctx))

	// no polling for commands that were never active
	assert.Len(t, s.Requests(), 2)
}

func TestCommand_WaitTimeout(t *testing.T) {
	s := newAPIServer(t, map[string]http.HandlerFunc{
		"POST /api/v9/clusters/cluster1/commands/stop": jsonResponse(CommandInfo{ID: 9, Name: "Stop", Active: true}),
		"GET /api/v9/commands/9":                        jsonResponse(CommandInfo{ID: 9, Name: "Stop", Active: true}),
	})
	c := newTestClient(s, WithWaitTimeout(50*time.Millisecond))

	cmd, err := c.StopCluster(context.Background(), "cluster1")
	require.NoError(t, err)
	err = cmd.Wait(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFindRoleConfigGroup(t *testing.T) {
	base := RoleConfigGroup{Name: "nm-base", RoleType: "NODEMANAGER", Base: true}
	custom := RoleConfigGroup{Name: "nm-big", RoleType: "NODEMANAGER"}
	other := RoleConfigGroup{Name: "nm-small", RoleType: "NODEMANAGER"}
	rm := RoleConfigGroup{Name: "rm-base", RoleType: "RESOURCEMANAGER", Base: true}

	tests := []struct {
		name    string
		groups  []RoleConfigGroup
		want    string
		wantErr string
	}{
		{"single", []RoleConfigGroup{rm, custom}, "nm-big", ""},
		{"prefers base", []RoleConfigGroup{custom, base, rm}, "nm-base", ""},
		{"none", []RoleConfigGroup{rm}, "", "no NODEMANAGER role config group found"},
		{"ambiguous", []RoleConfigGroup{custom, other}, "", "found 2 NODEMANAGER role config groups and none is the base group"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := FindRoleConfigGroup(tt.groups, "NODEMANAGER")
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Name)
		})
	}
}

func TestFindService(t *testing.T) {
	_, err := FindService([]Service{{Name: "HDFS-1", Type: "HDFS"}}, "YARN")
	assert.EqualError(t, err, "no YARN service found")

	_, err = FindService([]Service{{Name: "a", Type: "YARN"}, {Name: "b", Type: "YARN"}}, "YARN")
	assert.EqualError(t, err, "found 2 YARN services, expected one")
}
