// Package metrics records workflow timings and call counts in a private
// Prometheus registry that the CLI can dump to a textfile-collector file.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every eggo metric. It is not exposed over HTTP.
var Registry = prometheus.NewRegistry()

var (
	phaseDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "eggo",
			Subsystem: "workflow",
			Name:      "phase_duration_seconds",
			Help:      "Duration of the last run of a workflow phase in seconds",
		},
		[]string{"stack", "phase"},
	)

	phaseTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eggo",
			Subsystem: "workflow",
			Name:      "phase_total",
			Help:      "Total number of workflow phase runs by result",
		},
		[]string{"stack", "phase", "result"},
	)

	remoteCommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eggo",
			Subsystem: "remote",
			Name:      "commands_total",
			Help:      "Total number of remote commands by result",
		},
		[]string{"result"},
	)

	awsAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eggo",
			Subsystem: "aws",
			Name:      "api_calls_total",
			Help:      "Total number of AWS API calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	managerCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eggo",
			Subsystem: "manager",
			Name:      "command_duration_seconds",
			Help:      "Time spent waiting for cluster-manager commands in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
		},
		[]string{"command", "result"},
	)
)

func init() {
	Registry.MustRegister(
		phaseDuration,
		phaseTotal,
		remoteCommandsTotal,
		awsAPICallsTotal,
		managerCommandDuration,
	)
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordPhase records the duration and outcome of a workflow phase.
func RecordPhase(stack, phase string, seconds float64, err error) {
	phaseDuration.WithLabelValues(stack, phase).Set(seconds)
	phaseTotal.WithLabelValues(stack, phase, result(err)).Inc()
}

// RecordRemoteCommand counts one remote command execution.
func RecordRemoteCommand(err error) {
	remoteCommandsTotal.WithLabelValues(result(err)).Inc()
}

// RecordAWSCall counts one AWS API call.
func RecordAWSCall(operation string, err error) {
	awsAPICallsTotal.WithLabelValues(operation, result(err)).Inc()
}

// RecordManagerCommand observes how long a cluster-manager command took to finish.
func RecordManagerCommand(command string, seconds float64, err error) {
	managerCommandDuration.WithLabelValues(command, result(err)).Observe(seconds)
}

// WriteTextfile writes the registry in the text exposition format to path.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
