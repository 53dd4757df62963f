package cm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultWaitTimeout  = 30 * time.Minute
	maxPollInterval     = 30 * time.Second
)

// Client talks to one Cloudera Manager instance.
type Client struct {
	http         *resty.Client
	pollInterval time.Duration
	waitTimeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithPollInterval sets the first delay between command refreshes.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithWaitTimeout bounds a single Command.Wait.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.waitTimeout = d
		}
	}
}

// BaseURL returns the API root for a manager reachable on host:port.
func BaseURL(host string, port, apiVersion int) string {
	return fmt.Sprintf("http://%s:%d/api/v%d", host, port, apiVersion)
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetBasicAuth(username, password),
		pollInterval: defaultPollInterval,
		waitTimeout:  defaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().
		SetContext(ctx).
		SetError(&errorBody{})
	if result != nil {
		req.SetResult(result)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("cm api %s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode()}
		if eb, ok := resp.Error().(*errorBody); ok && eb.Message != "" {
			apiErr.Message = eb.Message
		} else {
			apiErr.Message = resp.String()
		}
		return apiErr
	}
	return nil
}

func servicePath(cluster, service string) string {
	return "/clusters/" + url.PathEscape(cluster) + "/services/" + url.PathEscape(service)
}

// Clusters lists every cluster.
func (c *Client) Clusters(ctx context.Context) ([]Cluster, error) {
	var out itemList[Cluster]
	if err := c.do(ctx, http.MethodGet, "/clusters", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Hosts lists every host in the full view.
func (c *Client) Hosts(ctx context.Context) ([]Host, error) {
	var out itemList[Host]
	if err := c.do(ctx, http.MethodGet, "/hosts?view=full", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Services lists the services of cluster.
func (c *Client) Services(ctx context.Context, cluster string) ([]Service, error) {
	var out itemList[Service]
	if err := c.do(ctx, http.MethodGet, "/clusters/"+url.PathEscape(cluster)+"/services", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Roles lists the roles of a service.
func (c *Client) Roles(ctx context.Context, cluster, service string) ([]Role, error) {
	var out itemList[Role]
	if err := c.do(ctx, http.MethodGet, servicePath(cluster, service)+"/roles", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// RoleConfigGroups lists the role config groups of a service.
func (c *Client) RoleConfigGroups(ctx context.Context, cluster, service string) ([]RoleConfigGroup, error) {
	var out itemList[RoleConfigGroup]
	if err := c.do(ctx, http.MethodGet, servicePath(cluster, service)+"/roleConfigGroups", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// UpdateRoleConfigGroup sets configuration values on a role config group.
// The manager applies config updates synchronously, so there is no handle.
func (c *Client) UpdateRoleConfigGroup(ctx context.Context, cluster, service, group string, values map[string]string) error {
	body := itemList[Config]{Items: make([]Config, 0, len(values))}
	for _, k := range sortedKeys(values) {
		body.Items = append(body.Items, Config{Name: k, Value: values[k]})
	}
	path := servicePath(cluster, service) + "/roleConfigGroups/" + url.PathEscape(group) + "/config"
	return c.do(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) command(ctx context.Context, path string) (*Command, error) {
	var info CommandInfo
	if err := c.do(ctx, http.MethodPost, path, nil, &info); err != nil {
		return nil, err
	}
	return newCommand(c, info), nil
}

func clusterCommand(cluster, name string) string {
	return "/clusters/" + url.PathEscape(cluster) + "/commands/" + name
}

// StopManagementService stops the Cloudera Management Service.
func (c *Client) StopManagementService(ctx context.Context) (*Command, error) {
	return c.command(ctx, "/cm/service/commands/stop")
}

// StartManagementService starts the Cloudera Management Service.
func (c *Client) StartManagementService(ctx context.Context) (*Command, error) {
	return c.command(ctx, "/cm/service/commands/start")
}

// StopCluster stops every service of cluster.
func (c *Client) StopCluster(ctx context.Context, cluster string) (*Command, error) {
	return c.command(ctx, clusterCommand(cluster, "stop"))
}

// StartCluster starts every service of cluster.
func (c *Client) StartCluster(ctx context.Context, cluster string) (*Command, error) {
	return c.command(ctx, clusterCommand(cluster, "start"))
}

// RestartCluster restarts every service of cluster.
func (c *Client) RestartCluster(ctx context.Context, cluster string) (*Command, error) {
	return c.command(ctx, clusterCommand(cluster, "restart"))
}

// DeployClientConfig pushes client configuration to every host of cluster.
func (c *Client) DeployClientConfig(ctx context.Context, cluster string) (*Command, error) {
	return c.command(ctx, clusterCommand(cluster, "deployClientConfig"))
}

// Command refreshes a command by id.
func (c *Client) Command(ctx context.Context, id int64) (*CommandInfo, error) {
	var info CommandInfo
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/commands/%d", id), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
