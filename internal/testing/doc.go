// Package testing provides builders, fixtures and mocks shared by package tests.
//
//   - ConfigBuilder: fluent builder for test configurations
//   - FakeCloud: in-memory EC2 and CloudFormation backed by aws.MockClient
//   - LoopbackOpener: tunnel opener that forwards to a local test server
//   - MockConfirmer: testify mock of ui.Confirmer
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithStackName("demo").
//	    WithNumWorkers(2).
//	    Build()
//
//	cloud := testing.NewFakeCloud()
//	cloud.PopulateCluster("demo", 2)
package testing
