package executor

import (
	"context"

	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/dag"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *dag.Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", n.ID)

		if ctx.Err() != nil {
			if n.CompareAndSwapState(dag.Pending, dag.Skipped) {
				n.Err = ctx.Err()
				e.skipDependents(ctx, n)
				e.wg.Done()
			}
			continue
		}

		if !n.CompareAndSwapState(dag.Pending, dag.Running) {
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		if err := e.runStepNode(ctx, n); err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			n.Err = err
			n.SetState(dag.Failed)
			cancel()
			e.skipDependents(ctx, n)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		n.SetState(dag.Done)

		for _, dependent := range n.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// skipDependents marks every transitive dependent of a terminally failed
// or skipped node as skipped. Each node's state transition is guarded, so
// concurrent cascades never double-count the wait group.
func (e *Executor) skipDependents(ctx context.Context, n *dag.Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.Dependents {
		if dependent.CompareAndSwapState(dag.Pending, dag.Skipped) {
			logger.Warn("Skipping step, an upstream step did not complete.", "nodeID", dependent.ID, "upstream", n.ID)
			dependent.Err = ctx.Err()
			e.skipDependents(ctx, dependent)
			e.wg.Done()
		}
	}
}
