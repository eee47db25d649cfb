package dag

import (
	"sync/atomic"

	"github.com/vk/gridlaunch/internal/config"
)

// NodeState tracks a node through the executor's lifecycle.
type NodeState int32

// Node lifecycle states.
const (
	Pending NodeState = iota
	Running
	Done
	Failed
	Skipped
)

// String returns a human-readable state name for logs.
func (s NodeState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Graph is the dependency graph of setup steps for a single job run.
type Graph struct {
	Nodes map[string]*Node
	// ExecID is the node ID of the external program invocation, the
	// terminal node every other node feeds into.
	ExecID string
}

// Node represents a single setup step (or the final program invocation)
// in the graph.
type Node struct {
	ID         string
	Name       string
	Step       *config.Step
	Deps       map[string]*Node
	Dependents map[string]*Node

	// Output holds the handler's returned output struct once the node
	// has run. Err holds the failure if it has not.
	Output any
	Err    error

	state    atomic.Int32
	depCount atomic.Int32
}

// State returns the node's current lifecycle state.
func (n *Node) State() NodeState {
	return NodeState(n.state.Load())
}

// SetState moves the node to the given lifecycle state.
func (n *Node) SetState(s NodeState) {
	n.state.Store(int32(s))
}

// CompareAndSwapState atomically transitions between two states. It
// returns false if the node was no longer in the old state.
func (n *Node) CompareAndSwapState(old, new NodeState) bool {
	return n.state.CompareAndSwap(int32(old), int32(new))
}

// SetInitialCounters primes the pending-dependency counter. Must be
// called once after linking and before execution.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))
}

// DecrementDepCount records one completed dependency and returns the
// number still outstanding.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}
