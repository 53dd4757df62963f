package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	timeouts := LoadTimeouts()

	assert.Equal(t, 30*time.Minute, timeouts.StackCreate)
	assert.Equal(t, 30*time.Minute, timeouts.StackDelete)
	assert.Equal(t, 10*time.Minute, timeouts.InstanceRunning)
	assert.Equal(t, 10*time.Minute, timeouts.InstanceTerminated)
	assert.Equal(t, 5*time.Minute, timeouts.SSHReady)
	assert.Equal(t, 30*time.Minute, timeouts.CommandWait)
	assert.Equal(t, 2*time.Second, timeouts.CommandPoll)
	assert.Equal(t, 5*time.Minute, timeouts.ManagerReady)
	assert.Equal(t, 10, timeouts.RetryMaxAttempts)
	assert.Equal(t, 2*time.Second, timeouts.RetryInitialDelay)
}

func TestLoadTimeouts_EnvOverrides(t *testing.T) {
	t.Setenv("EGGO_TIMEOUT_STACK_CREATE", "45m")
	t.Setenv("EGGO_TIMEOUT_COMMAND_WAIT", "1h")
	t.Setenv("EGGO_RETRY_MAX_ATTEMPTS", "3")
	t.Setenv("EGGO_TIMEOUT_MANAGER_READY", "90s")

	timeouts := LoadTimeouts()

	assert.Equal(t, 45*time.Minute, timeouts.StackCreate)
	assert.Equal(t, time.Hour, timeouts.CommandWait)
	assert.Equal(t, 3, timeouts.RetryMaxAttempts)
	assert.Equal(t, 90*time.Second, timeouts.ManagerReady)
}

func TestLoadTimeouts_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("EGGO_TIMEOUT_SSH_READY", "soon")
	t.Setenv("EGGO_TIMEOUT_STACK_DELETE", "-5m")
	t.Setenv("EGGO_RETRY_MAX_ATTEMPTS", "many")

	timeouts := LoadTimeouts()

	assert.Equal(t, 5*time.Minute, timeouts.SSHReady)
	assert.Equal(t, 30*time.Minute, timeouts.StackDelete)
	assert.Equal(t, 10, timeouts.RetryMaxAttempts)
}
