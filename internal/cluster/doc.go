// Package cluster resolves stack members by tag.
//
// A [Locator] turns a (stack, node type) pair into a [Resolution] that is
// explicitly NotFound, Unique or Ambiguous. Singleton roles go through
// [Locator.One], which converts anything but Unique into a *ResolutionError;
// workers go through [Locator.Workers], where an empty result is valid.
package cluster
