// Package async provides utilities for parallel task execution with
// all-or-nothing joins.
//
// [RunParallel] starts every task at once and waits for all of them. The first
// failure cancels the context shared by the remaining tasks, and the returned
// error aggregates every failure so the operator sees which hosts broke.
package async
