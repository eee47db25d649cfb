// Package dag builds and validates the dependency graph of setup steps
// for a job run. The graph is always rooted in environment preparation
// and terminates in a single program-invocation node.
package dag
