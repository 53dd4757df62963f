package config

import (
	"fmt"
	"os/user"
	"path"
	"strings"
)

// Default values mirroring a stock Cloudera Director deployment on Amazon Linux.
const (
	DefaultRegion             = "us-east-1"
	DefaultAvailabilityZone   = "us-east-1b"
	DefaultStackName          = "bdg-eggo"
	DefaultRemoteUser         = "ec2-user"
	DefaultSSHPort            = 22
	DefaultLauncherType       = "m3.large"
	DefaultWorkerInstanceType = "r3.2xlarge"
	DefaultNumWorkers         = 3
	DefaultManagerUser        = "admin"
	DefaultManagerPassword    = "admin"
	DefaultManagerAPIVersion  = 9
	DefaultManagerPort        = 7180
	DefaultManagerLocalPort   = 64999
)

// Config holds the application configuration.
type Config struct {
	Region           string `mapstructure:"region" yaml:"region"`
	AvailabilityZone string `mapstructure:"availability_zone" yaml:"availability_zone"`
	StackName        string `mapstructure:"stack_name" yaml:"stack_name"`

	// Owner is written to the owner tag. Defaults to the local user name.
	Owner string `mapstructure:"owner" yaml:"owner"`

	AWS       AWSConfig       `mapstructure:"aws" yaml:"aws"`
	Remote    RemoteConfig    `mapstructure:"remote" yaml:"remote"`
	Launcher  LauncherConfig  `mapstructure:"launcher" yaml:"launcher"`
	Cluster   ClusterConfig   `mapstructure:"cluster" yaml:"cluster"`
	Templates TemplatesConfig `mapstructure:"templates" yaml:"templates"`
	Manager   ManagerConfig   `mapstructure:"manager" yaml:"manager"`

	Timeouts *Timeouts `mapstructure:"-" yaml:"-"`
}

// AWSConfig holds credentials and the EC2 key pair.
type AWSConfig struct {
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	KeyPair         string `mapstructure:"key_pair" yaml:"key_pair"`
	PrivateKeyFile  string `mapstructure:"private_key_file" yaml:"private_key_file"`
}

// RemoteConfig describes how eggo logs into stack instances.
type RemoteConfig struct {
	User string `mapstructure:"user" yaml:"user"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// HomeDir returns the remote user's home directory.
func (r RemoteConfig) HomeDir() string {
	return path.Join("/home", r.User)
}

// HomePath joins elements onto the remote user's home directory.
func (r RemoteConfig) HomePath(elem ...string) string {
	return path.Join(append([]string{r.HomeDir()}, elem...)...)
}

// LauncherConfig sizes the launcher instance.
type LauncherConfig struct {
	AMI          string `mapstructure:"ami" yaml:"ami"`
	InstanceType string `mapstructure:"instance_type" yaml:"instance_type"`
}

// ClusterConfig sizes the fleet created by the director bootstrap.
type ClusterConfig struct {
	AMI                string `mapstructure:"ami" yaml:"ami"`
	WorkerInstanceType string `mapstructure:"worker_instance_type" yaml:"worker_instance_type"`
	NumWorkers         int    `mapstructure:"num_workers" yaml:"num_workers"`
}

// TemplatesConfig points at the CloudFormation and director templates.
// Each value is a local path or an s3://bucket/key URI. Empty values select the
// embedded defaults.
type TemplatesConfig struct {
	CloudFormation string `mapstructure:"cloudformation" yaml:"cloudformation"`
	Director       string `mapstructure:"director" yaml:"director"`
}

// ManagerConfig holds cluster-manager API settings.
type ManagerConfig struct {
	Username   string `mapstructure:"username" yaml:"username"`
	Password   string `mapstructure:"password" yaml:"password"`
	APIVersion int    `mapstructure:"api_version" yaml:"api_version"`
	Port       int    `mapstructure:"port" yaml:"port"`
	LocalPort  int    `mapstructure:"local_port" yaml:"local_port"`
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Region:           DefaultRegion,
		AvailabilityZone: DefaultAvailabilityZone,
		StackName:        DefaultStackName,
		Owner:            currentUser(),
		Remote: RemoteConfig{
			User: DefaultRemoteUser,
			Port: DefaultSSHPort,
		},
		Launcher: LauncherConfig{
			InstanceType: DefaultLauncherType,
		},
		Cluster: ClusterConfig{
			WorkerInstanceType: DefaultWorkerInstanceType,
			NumWorkers:         DefaultNumWorkers,
		},
		Manager: ManagerConfig{
			Username:   DefaultManagerUser,
			Password:   DefaultManagerPassword,
			APIVersion: DefaultManagerAPIVersion,
			Port:       DefaultManagerPort,
			LocalPort:  DefaultManagerLocalPort,
		},
		Timeouts: LoadTimeouts(),
	}
}

func currentUser() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "unknown"
	}
	// Windows reports DOMAIN\name
	if i := strings.LastIndex(u.Username, `\`); i >= 0 {
		return u.Username[i+1:]
	}
	return u.Username
}

// Error is a configuration error: invalid operator input that is never retried.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Errorf builds a configuration error for field.
func Errorf(field, format string, args ...any) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}
