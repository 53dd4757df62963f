package testing

import (
	"time"

	"github.com/heuermh/eggo/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a ConfigBuilder that passes every validation
// and uses short timeouts.
func NewConfigBuilder() *ConfigBuilder {
	cfg := *config.Default()
	cfg.Owner = "tester"
	cfg.StackName = "test-stack"
	cfg.AWS = config.AWSConfig{
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
		KeyPair:         "test-key",
		PrivateKeyFile:  "/tmp/test-key.pem",
	}
	cfg.Launcher.AMI = "ami-launcher"
	cfg.Cluster.AMI = "ami-cluster"
	cfg.Timeouts = &config.Timeouts{
		StackCreate:        time.Second,
		StackDelete:        time.Second,
		InstanceRunning:    time.Second,
		InstanceTerminated: time.Second,
		SSHReady:           time.Second,
		CommandWait:        5 * time.Second,
		CommandPoll:        10 * time.Millisecond,
		ManagerReady:       time.Minute,
		RetryMaxAttempts:   2,
		RetryInitialDelay:  10 * time.Millisecond,
	}
	return &ConfigBuilder{cfg: cfg}
}

// WithStackName sets the stack name.
func (b *ConfigBuilder) WithStackName(name string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.StackName = name
	return nb
}

// WithRegion sets the region.
func (b *ConfigBuilder) WithRegion(region string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Region = region
	return nb
}

// WithNumWorkers sets the worker count.
func (b *ConfigBuilder) WithNumWorkers(n int) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Cluster.NumWorkers = n
	return nb
}

// WithPrivateKeyFile sets the private key path.
func (b *ConfigBuilder) WithPrivateKeyFile(path string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.AWS.PrivateKeyFile = path
	return nb
}

// WithCredentials sets the AWS access key pair.
func (b *ConfigBuilder) WithCredentials(accessKey, secretKey string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.AWS.AccessKeyID = accessKey
	nb.cfg.AWS.SecretAccessKey = secretKey
	return nb
}

// WithManager sets the cluster-manager API credentials and local port.
func (b *ConfigBuilder) WithManager(username, password string, localPort int) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Manager.Username = username
	nb.cfg.Manager.Password = password
	nb.cfg.Manager.LocalPort = localPort
	return nb
}

// WithTemplates sets the CloudFormation and director template locations.
func (b *ConfigBuilder) WithTemplates(cloudFormation, director string) *ConfigBuilder {
	nb := b.clone()
	nb.cfg.Templates.CloudFormation = cloudFormation
	nb.cfg.Templates.Director = director
	return nb
}

// Build returns the constructed configuration.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	return &cfg
}

func (b *ConfigBuilder) clone() *ConfigBuilder {
	nb := &ConfigBuilder{cfg: b.cfg}
	if b.cfg.Timeouts != nil {
		t := *b.cfg.Timeouts
		nb.cfg.Timeouts = &t
	}
	return nb
}
