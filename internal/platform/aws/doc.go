// Package aws wraps the EC2, CloudFormation and STS APIs behind the small
// interfaces the eggo workflows need.
//
// Instances are never tracked locally: every lookup goes back to EC2 with a
// tag filter, and only instances in a live state (pending, running, stopping,
// stopped) are returned. A terminated launcher therefore disappears from
// discovery as soon as EC2 reports it terminated.
//
// [MockClient] is a configurable stand-in for tests in other packages.
package aws
