package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func validProvisionConfig() *Config {
	cfg := Default()
	cfg.AWS = AWSConfig{
		AccessKeyID:     "AKIA",
		SecretAccessKey: "secret",
		KeyPair:         "laptop",
		PrivateKeyFile:  "/keys/laptop.pem",
	}
	cfg.Launcher.AMI = "ami-launcher"
	cfg.Cluster.AMI = "ami-cluster"
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Equal(t, DefaultStackName, cfg.StackName)
	assert.Equal(t, "ec2-user", cfg.Remote.User)
	assert.Equal(t, 22, cfg.Remote.Port)
	assert.Equal(t, 3, cfg.Cluster.NumWorkers)
	assert.Equal(t, "admin", cfg.Manager.Username)
	assert.Equal(t, 9, cfg.Manager.APIVersion)
	assert.Equal(t, 7180, cfg.Manager.Port)
	assert.Equal(t, 64999, cfg.Manager.LocalPort)
	assert.NotEmpty(t, cfg.Owner)
	require.NotNil(t, cfg.Timeouts)
}

func TestRemoteConfig_HomePath(t *testing.T) {
	r := RemoteConfig{User: "ec2-user"}

	assert.Equal(t, "/home/ec2-user", r.HomeDir())
	assert.Equal(t, "/home/ec2-user/.bash_profile", r.HomePath(".bash_profile"))
	assert.Equal(t, "/home/ec2-user/eggo/setup.py", r.HomePath("eggo", "setup.py"))
}

func TestLoadFile_MergesOverDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
region: us-west-2
stack_name: demo
cluster:
  num_workers: 5
  ami: ami-123
manager:
  password: s3cret
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, "demo", cfg.StackName)
	assert.Equal(t, 5, cfg.Cluster.NumWorkers)
	assert.Equal(t, "ami-123", cfg.Cluster.AMI)
	assert.Equal(t, DefaultWorkerInstanceType, cfg.Cluster.WorkerInstanceType)
	assert.Equal(t, "s3cret", cfg.Manager.Password)
	assert.Equal(t, "admin", cfg.Manager.Username)
}

func TestLoadFile_UnknownKey(t *testing.T) {
	path := writeFile(t, "config.yaml", "regoin: us-west-2\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regoin")
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "region: [unterminated\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal yaml")
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "stack_name: from-file\nregion: eu-west-1\n")
	t.Setenv(EnvStackName, "from-env")
	t.Setenv(EnvKeyPair, "laptop")
	t.Setenv(EnvRegion, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.StackName)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "laptop", cfg.AWS.KeyPair)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAccessKeyID:     "AKIA",
		EnvSecretAccessKey: "secret",
		EnvPrivateKeyFile:  "/tmp/key.pem",
		EnvNumWorkers:      "7",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "AKIA", cfg.AWS.AccessKeyID)
	assert.Equal(t, "secret", cfg.AWS.SecretAccessKey)
	assert.Equal(t, "/tmp/key.pem", cfg.AWS.PrivateKeyFile)
	assert.Equal(t, 7, cfg.Cluster.NumWorkers)
	assert.Equal(t, DefaultRegion, cfg.Region)
}

func TestReadPrivateKey(t *testing.T) {
	cfg := Default()
	_, err := cfg.ReadPrivateKey()
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "aws.private_key_file", cfgErr.Field)

	cfg.AWS.PrivateKeyFile = writeFile(t, "id.pem", "PRIVATE KEY")
	data, err := cfg.ReadPrivateKey()
	require.NoError(t, err)
	assert.Equal(t, "PRIVATE KEY", string(data))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty region", func(c *Config) { c.Region = "" }, "region"},
		{"stack name with underscore", func(c *Config) { c.StackName = "bad_name" }, "stack_name"},
		{"stack name starting with digit", func(c *Config) { c.StackName = "1demo" }, "stack_name"},
		{"empty remote user", func(c *Config) { c.Remote.User = "" }, "remote.user"},
		{"bad port", func(c *Config) { c.Remote.Port = 70000 }, "remote.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateForProvision(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero workers allowed", func(c *Config) { c.Cluster.NumWorkers = 0 }, ""},
		{"missing access key", func(c *Config) { c.AWS.AccessKeyID = "" }, "aws.access_key_id"},
		{"missing secret", func(c *Config) { c.AWS.SecretAccessKey = "" }, "aws.secret_access_key"},
		{"missing key pair", func(c *Config) { c.AWS.KeyPair = "" }, "aws.key_pair"},
		{"missing private key", func(c *Config) { c.AWS.PrivateKeyFile = "" }, "aws.private_key_file"},
		{"missing launcher ami", func(c *Config) { c.Launcher.AMI = "" }, "launcher.ami"},
		{"missing cluster ami", func(c *Config) { c.Cluster.AMI = "" }, "cluster.ami"},
		{"negative workers", func(c *Config) { c.Cluster.NumWorkers = -1 }, "cluster.num_workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validProvisionConfig()
			tt.mutate(cfg)
			err := cfg.ValidateForProvision()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "expected *config.Error, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateForManager(t *testing.T) {
	cfg := validProvisionConfig()
	require.NoError(t, cfg.ValidateForManager())

	cfg.Manager.APIVersion = 0
	var cfgErr *Error
	require.True(t, errors.As(cfg.ValidateForManager(), &cfgErr))
	assert.Equal(t, "manager.api_version", cfgErr.Field)
}

func TestError(t *testing.T) {
	assert.Equal(t, "configuration error: node: bogus", (&Error{Field: "node", Reason: "bogus"}).Error())
	assert.Equal(t, "configuration error: bogus", (&Error{Reason: "bogus"}).Error())
}
