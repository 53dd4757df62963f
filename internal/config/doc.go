// Package config defines the configuration threaded through every eggo
// workflow.
//
// A [Config] is assembled from built-in defaults, an optional YAML file,
// environment variables, and finally command-line flags. It carries the AWS
// credentials, the remote user and private key used for SSH, instance sizing,
// template locations and cluster-manager credentials, so no workflow reads
// process-wide state.
package config
