package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/dag"
	"github.com/vk/gridlaunch/internal/launch"
	"github.com/vk/gridlaunch/internal/registry"
)

// Executor runs a job's setup graph with a pool of workers. The first
// failing node cancels the run and skips every transitive dependent, so
// the program-invocation node never fires after a failed setup step.
type Executor struct {
	graph     *dag.Graph
	workers   int
	registry  *registry.Registry
	converter config.Converter
	env       *launch.Environment
	wg        sync.WaitGroup
}

// New creates an Executor for a single job run.
func New(graph *dag.Graph, workers int, r *registry.Registry, converter config.Converter, env *launch.Environment) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		graph:     graph,
		workers:   workers,
		registry:  r,
		converter: converter,
		env:       env,
	}
}

// Run executes the graph to completion and returns the combined error of
// all failed nodes, or nil if every node finished.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readyChan := make(chan *dag.Node, len(e.graph.Nodes))
	e.wg.Add(len(e.graph.Nodes))

	for _, n := range e.graph.Roots() {
		readyChan <- n
	}

	for i := 0; i < e.workers; i++ {
		go e.worker(ctx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)
	logger.Debug("Executor drained all nodes.")

	var errs []error
	for _, n := range e.graph.Nodes {
		if n.State() == dag.Failed {
			errs = append(errs, fmt.Errorf("step %s: %w", n.ID, n.Err))
		}
	}
	return errors.Join(errs...)
}
