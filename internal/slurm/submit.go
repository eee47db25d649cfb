package slurm

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
)

// submittedRe matches the confirmation line sbatch prints on success.
var submittedRe = regexp.MustCompile(`Submitted batch job (\d+)`)

// Submission records a successful handoff to the scheduler.
type Submission struct {
	JobID      string
	ScriptPath string
}

// Submitter renders jobs and hands them to sbatch.
type Submitter struct {
	// SbatchPath overrides the sbatch binary, for tests. Empty means
	// resolve "sbatch" from PATH.
	SbatchPath string
	// ScriptDir is where rendered scripts are written before submission.
	ScriptDir string
}

// Submit renders the job's script, writes it to the script directory and
// invokes sbatch on it. The scheduler owns the job from this point: the
// launcher does not wait for it, poll it, or clean the script up.
func (s *Submitter) Submit(ctx context.Context, job *config.Job) (*Submission, error) {
	logger := ctxlog.FromContext(ctx)

	script, err := Render(job)
	if err != nil {
		return nil, err
	}

	dir := s.ScriptDir
	if dir == "" {
		dir = os.TempDir()
	}
	scriptPath := filepath.Join(dir, fmt.Sprintf("%s-%s.sbatch", job.Name, uuid.New().String()))
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return nil, fmt.Errorf("failed to write submission script: %w", err)
	}

	sbatch := s.SbatchPath
	if sbatch == "" {
		sbatch = "sbatch"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, sbatch, scriptPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("sbatch failed for job %q: %w: %s", job.Name, err, strings.TrimSpace(stderr.String()))
	}

	m := submittedRe.FindStringSubmatch(stdout.String())
	if m == nil {
		return nil, fmt.Errorf("could not parse sbatch output for job %q: %q", job.Name, strings.TrimSpace(stdout.String()))
	}

	logger.Info("🚀 Job handed to scheduler.", "job", job.Name, "slurm_job_id", m[1], "script", scriptPath)
	return &Submission{JobID: m[1], ScriptPath: scriptPath}, nil
}
