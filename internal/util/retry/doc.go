// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay and maximum delay. eggo uses it while a freshly launched
// instance is still booting and its SSH daemon refuses connections.
package retry
