package config

import (
	"regexp"
)

// CloudFormation stack names: letters, digits and hyphens, starting with a letter.
var stackNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]{0,127}$`)

// Validate checks the settings every command needs: region and stack name.
func (c *Config) Validate() error {
	if c.Region == "" {
		return Errorf("region", "must not be empty")
	}
	if !stackNamePattern.MatchString(c.StackName) {
		return Errorf("stack_name", "%q must start with a letter and contain only letters, digits and hyphens", c.StackName)
	}
	if c.Remote.User == "" {
		return Errorf("remote.user", "must not be empty")
	}
	if c.Remote.Port <= 0 || c.Remote.Port > 65535 {
		return Errorf("remote.port", "%d is out of range", c.Remote.Port)
	}
	return nil
}

// ValidateForRemote additionally requires the key material used for SSH.
func (c *Config) ValidateForRemote() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.AWS.PrivateKeyFile == "" {
		return Errorf("aws.private_key_file", "not set (export %s)", EnvPrivateKeyFile)
	}
	return nil
}

// ValidateForProvision checks everything the provisioning workflow substitutes
// into templates or passes to EC2.
func (c *Config) ValidateForProvision() error {
	if err := c.ValidateForRemote(); err != nil {
		return err
	}
	switch {
	case c.AWS.AccessKeyID == "":
		return Errorf("aws.access_key_id", "not set (export %s)", EnvAccessKeyID)
	case c.AWS.SecretAccessKey == "":
		return Errorf("aws.secret_access_key", "not set (export %s)", EnvSecretAccessKey)
	case c.AWS.KeyPair == "":
		return Errorf("aws.key_pair", "not set (export %s)", EnvKeyPair)
	case c.AvailabilityZone == "":
		return Errorf("availability_zone", "must not be empty")
	case c.Launcher.AMI == "":
		return Errorf("launcher.ami", "must not be empty")
	case c.Launcher.InstanceType == "":
		return Errorf("launcher.instance_type", "must not be empty")
	case c.Cluster.AMI == "":
		return Errorf("cluster.ami", "must not be empty")
	case c.Cluster.WorkerInstanceType == "":
		return Errorf("cluster.worker_instance_type", "must not be empty")
	case c.Cluster.NumWorkers < 0:
		return Errorf("cluster.num_workers", "must not be negative, got %d", c.Cluster.NumWorkers)
	}
	return nil
}

// ValidateForManager checks the cluster-manager API settings.
func (c *Config) ValidateForManager() error {
	if err := c.ValidateForRemote(); err != nil {
		return err
	}
	switch {
	case c.Manager.Username == "":
		return Errorf("manager.username", "must not be empty")
	case c.Manager.APIVersion <= 0:
		return Errorf("manager.api_version", "must be positive")
	case c.Manager.Port <= 0 || c.Manager.Port > 65535:
		return Errorf("manager.port", "%d is out of range", c.Manager.Port)
	case c.Manager.LocalPort < 0 || c.Manager.LocalPort > 65535:
		return Errorf("manager.local_port", "%d is out of range", c.Manager.LocalPort)
	}
	return nil
}
