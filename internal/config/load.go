package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvKeyPair         = "EC2_KEY_PAIR"
	EnvPrivateKeyFile  = "EC2_PRIVATE_KEY_FILE"
	EnvRegion          = "EGGO_REGION"
	EnvStackName       = "EGGO_STACK_NAME"
	EnvNumWorkers      = "EGGO_NUM_WORKERS"
)

// DefaultPath returns ~/.eggo/config.yaml, or "" when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".eggo", "config.yaml")
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. An empty path falls back to DefaultPath, which may be absent.
// An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// LoadFile reads and parses the configuration from a YAML file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	if raw == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.AWS.AccessKeyID, EnvAccessKeyID)
	set(&c.AWS.SecretAccessKey, EnvSecretAccessKey)
	set(&c.AWS.KeyPair, EnvKeyPair)
	set(&c.AWS.PrivateKeyFile, EnvPrivateKeyFile)
	set(&c.Region, EnvRegion)
	set(&c.StackName, EnvStackName)

	if v := getenv(EnvNumWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cluster.NumWorkers = n
		}
	}
}

// ReadPrivateKey returns the contents of the configured private key file.
func (c *Config) ReadPrivateKey() ([]byte, error) {
	if c.AWS.PrivateKeyFile == "" {
		return nil, Errorf("aws.private_key_file", "not set (export %s)", EnvPrivateKeyFile)
	}
	// #nosec G304
	data, err := os.ReadFile(expandHome(c.AWS.PrivateKeyFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	return data, nil
}

func expandHome(p string) string {
	if len(p) < 2 || p[:2] != "~/" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}
