package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	StackCreate        time.Duration // CloudFormation stack creation
	StackDelete        time.Duration // CloudFormation stack deletion
	InstanceRunning    time.Duration // launcher reaching the running state
	InstanceTerminated time.Duration // launcher reaching the terminated state
	SSHReady           time.Duration // sshd accepting connections after boot
	CommandWait        time.Duration // a single cluster-manager command
	CommandPoll        time.Duration // first poll interval for command handles
	ManagerReady       time.Duration // manager API listening again after a server restart
	RetryMaxAttempts   int           // SSH dial attempts while an instance boots
	RetryInitialDelay  time.Duration // first delay between SSH dial attempts
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - EGGO_TIMEOUT_STACK_CREATE (default: 30m)
//   - EGGO_TIMEOUT_STACK_DELETE (default: 30m)
//   - EGGO_TIMEOUT_INSTANCE_RUNNING (default: 10m)
//   - EGGO_TIMEOUT_INSTANCE_TERMINATED (default: 10m)
//   - EGGO_TIMEOUT_SSH_READY (default: 5m)
//   - EGGO_TIMEOUT_COMMAND_WAIT (default: 30m)
//   - EGGO_COMMAND_POLL_INTERVAL (default: 2s)
//   - EGGO_TIMEOUT_MANAGER_READY (default: 5m)
//   - EGGO_RETRY_MAX_ATTEMPTS (default: 10)
//   - EGGO_RETRY_INITIAL_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		StackCreate:        parseDuration("EGGO_TIMEOUT_STACK_CREATE", 30*time.Minute),
		StackDelete:        parseDuration("EGGO_TIMEOUT_STACK_DELETE", 30*time.Minute),
		InstanceRunning:    parseDuration("EGGO_TIMEOUT_INSTANCE_RUNNING", 10*time.Minute),
		InstanceTerminated: parseDuration("EGGO_TIMEOUT_INSTANCE_TERMINATED", 10*time.Minute),
		SSHReady:           parseDuration("EGGO_TIMEOUT_SSH_READY", 5*time.Minute),
		CommandWait:        parseDuration("EGGO_TIMEOUT_COMMAND_WAIT", 30*time.Minute),
		CommandPoll:        parseDuration("EGGO_COMMAND_POLL_INTERVAL", 2*time.Second),
		ManagerReady:       parseDuration("EGGO_TIMEOUT_MANAGER_READY", 5*time.Minute),
		RetryMaxAttempts:   parseInt("EGGO_RETRY_MAX_ATTEMPTS", 10),
		RetryInitialDelay:  parseDuration("EGGO_RETRY_INITIAL_DELAY", 2*time.Second),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return defaultVal
	}

	return i
}
