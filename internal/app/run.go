package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/dag"
	"github.com/vk/gridlaunch/internal/executor"
	"github.com/vk/gridlaunch/internal/launch"
	"github.com/vk/gridlaunch/internal/notify"
	"github.com/vk/gridlaunch/internal/runrecord"
	"github.com/vk/gridlaunch/internal/slurm"
	"github.com/vk/gridlaunch/steps/execprog"
)

// ProgramExitError reports that the external program itself exited
// non-zero. The launcher does not interpret the code, it only propagates
// it as its own exit status.
type ProgramExitError struct {
	Job  string
	Code int
}

// Error implements the error interface for ProgramExitError.
func (e *ProgramExitError) Error() string {
	return fmt.Sprintf("job %q: program exited with code %d", e.Job, e.Code)
}

// Run processes every loaded job in the configured mode. Jobs run
// sequentially; the first failure stops the run.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", appConfig.Mode)

	if appConfig.HealthcheckPort > 0 {
		go a.startHealthcheckServer(appConfig.HealthcheckPort)
	}
	defer a.notifier.Close()

	for _, job := range a.model.Jobs {
		var err error
		switch appConfig.Mode {
		case ModeRender:
			err = a.renderJob(job)
		case ModeSbatch:
			err = a.submitJob(ctx, job, appConfig)
		default:
			err = a.runJobLocally(ctx, job, appConfig)
		}
		if err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// renderJob writes the job's sbatch script to standard output. Rendering
// touches nothing on disk and is deterministic.
func (a *App) renderJob(job *config.Job) error {
	script, err := slurm.Render(job)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.outW, script)
	return err
}

// submitJob renders the job and hands it to sbatch. The scheduler owns
// the job afterwards, so the run record only notes the handoff.
func (a *App) submitJob(ctx context.Context, job *config.Job, appConfig *Config) error {
	rec := runrecord.NewRecord(job.Name, ModeSbatch)

	submitter := &slurm.Submitter{SbatchPath: appConfig.SbatchPath, ScriptDir: appConfig.ScriptDir}
	sub, err := submitter.Submit(ctx, job)
	if err != nil {
		rec.State = runrecord.StateFail
		rec.Error = err.Error()
		a.saveRecord(rec)
		return fmt.Errorf("submission of job %q failed: %w", job.Name, err)
	}

	rec.State = runrecord.StateSubmitted
	rec.SlurmJobID = sub.JobID
	a.saveRecord(rec)
	return nil
}

// runJobLocally executes the job's setup pipeline and program on this
// machine, then records and notifies the terminal state.
func (a *App) runJobLocally(ctx context.Context, job *config.Job, appConfig *Config) error {
	a.logger.Info("🚀 Launching job locally.", "job", job.Name)
	rec := runrecord.NewRecord(job.Name, ModeLocal)

	graph, err := dag.BuildJob(ctx, job, a.registry, dag.BuildOptions{ModulesRoot: appConfig.ModulesRoot})
	if err != nil {
		return fmt.Errorf("failed to build pipeline for job %q: %w", job.Name, err)
	}
	a.logger.Debug("Pipeline graph built.", "node_count", len(graph.Nodes))

	env := launch.NewEnvironment(os.Environ())
	exec := executor.New(graph, appConfig.WorkerCount, a.registry, a.converter, env)
	if err := exec.Run(ctx); err != nil {
		// Setup failed, so the program was never invoked.
		rec.State = runrecord.StateSetupFailed
		rec.Error = err.Error()
		rec.ExitCode = -1
		a.saveRecord(rec)
		a.dispatch(ctx, job, rec, config.TriggerFail)
		return fmt.Errorf("setup for job %q failed: %w", job.Name, err)
	}

	out := execOutput(graph)
	if out == nil {
		return fmt.Errorf("job %q finished without a program result", job.Name)
	}

	switch {
	case out.TimedOut:
		rec.State = runrecord.StateTimeout
		rec.ExitCode = out.ExitCode
		a.saveRecord(rec)
		a.dispatch(ctx, job, rec, config.TriggerTimeout)
		return &ProgramExitError{Job: job.Name, Code: 1}
	case out.ExitCode != 0:
		rec.State = runrecord.StateFail
		rec.ExitCode = out.ExitCode
		a.saveRecord(rec)
		a.dispatch(ctx, job, rec, config.TriggerFail)
		return &ProgramExitError{Job: job.Name, Code: out.ExitCode}
	default:
		rec.State = runrecord.StateEnd
		a.saveRecord(rec)
		a.dispatch(ctx, job, rec, config.TriggerEnd)
		a.logger.Info("🏁 Job finished.", "job", job.Name, "duration", out.Duration)
		return nil
	}
}

// execOutput finds the program invocation's result in the finished graph.
func execOutput(graph *dag.Graph) *execprog.Output {
	for _, node := range graph.Nodes {
		if node.Step.Type != config.StepExec {
			continue
		}
		if out, ok := node.Output.(*execprog.Output); ok {
			return out
		}
	}
	return nil
}

// saveRecord persists the run record. Record persistence is best-effort
// and never changes the run's outcome.
func (a *App) saveRecord(rec *runrecord.Record) {
	if path, err := a.records.Save(rec); err != nil {
		a.logger.Warn("Could not persist run record.", "error", err)
	} else {
		a.logger.Debug("Run record written.", "path", path)
	}
}

// dispatch fires notifications for a terminal state. Delivery failures
// are logged and swallowed for the same reason.
func (a *App) dispatch(ctx context.Context, job *config.Job, rec *runrecord.Record, trigger string) {
	event := &notify.Event{
		Job:        job.Name,
		Trigger:    trigger,
		ExitCode:   rec.ExitCode,
		Duration:   rec.FinishedAt.Sub(rec.StartedAt).String(),
		FinishedAt: rec.FinishedAt,
	}
	if err := a.notifier.Dispatch(ctx, job.Notify, event); err != nil {
		a.logger.Warn("Notification delivery failed.", "job", job.Name, "error", err)
	}
}
