package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJob = `
job "reptile_1shot" {
  workdir     = "/home/user/supervised-reptile"
  venv        = "/home/user/venvs/reptile"
  env_modules = ["tensorflow", "cuda"]

  env = {
    TF_CPP_MIN_LOG_LEVEL = "2"
  }

  resources {
    memory_mb = 16384
    cpus      = 4
    gpus      = 1
    walltime  = "48:00:00"
  }

  notify {
    email = "user@example.org"
    on    = ["end", "fail", "timeout"]
  }

  run {
    program = "python"
    args    = ["-u", "run_miniimagenet.py", "--shots", "1"]
  }

  step "env_export" "extra" {
    arguments {
      vars = {
        OMP_NUM_THREADS = "4"
      }
    }
  }
}
`

func writeJobFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "job.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadValidJob(t *testing.T) {
	path := writeJobFile(t, validJob)

	model, conv, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Len(t, model.Jobs, 1)

	job := model.Jobs[0]
	assert.Equal(t, "reptile_1shot", job.Name)
	assert.Equal(t, "/home/user/supervised-reptile", job.Workdir)
	assert.Equal(t, "/home/user/venvs/reptile", job.Venv)
	assert.Equal(t, []string{"tensorflow", "cuda"}, job.EnvModules)
	assert.Equal(t, "2", job.Env["TF_CPP_MIN_LOG_LEVEL"])

	require.NotNil(t, job.Resources)
	assert.Equal(t, 16384, job.Resources.MemoryMB)
	assert.Equal(t, 1, job.Resources.GPUs)
	assert.Equal(t, "48:00:00", job.Resources.Walltime)

	require.NotNil(t, job.Notify)
	assert.Equal(t, "user@example.org", job.Notify.Email)
	assert.Equal(t, []string{"end", "fail", "timeout"}, job.Notify.On)

	require.NotNil(t, job.Run)
	assert.Equal(t, "python", job.Run.Program)
	assert.Equal(t, []string{"-u", "run_miniimagenet.py", "--shots", "1"}, job.Run.Args)

	require.Len(t, job.Steps, 1)
	assert.Equal(t, "env_export", job.Steps[0].Type)
	assert.Contains(t, job.Steps[0].Args, "vars")
}

func TestLoadRejectsMissingRunBlock(t *testing.T) {
	path := writeJobFile(t, `
job "broken" {
  workdir = "/tmp"
}
`)
	_, _, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run block")
}

func TestLoadRejectsUnknownNotifyTrigger(t *testing.T) {
	path := writeJobFile(t, `
job "broken" {
  workdir = "/tmp"
  notify {
    email = "user@example.org"
    on    = ["sometimes"]
  }
  run {
    program = "true"
  }
}
`)
	_, _, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown notify trigger")
}

func TestLoadRejectsBadWalltime(t *testing.T) {
	path := writeJobFile(t, `
job "broken" {
  workdir = "/tmp"
  resources {
    walltime = "two days"
  }
  run {
    program = "true"
  }
}
`)
	_, _, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walltime")
}

func TestLoadRejectsInvalidHCL(t *testing.T) {
	path := writeJobFile(t, `job "broken" {`)
	_, _, err := NewLoader().Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoadRejectsDuplicateJobNames(t *testing.T) {
	dir := t.TempDir()
	content := `
job "same" {
  workdir = "/tmp"
  run {
    program = "true"
  }
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.hcl"), []byte(content), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.hcl"), []byte(content), 0644))

	_, _, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate job")
}

func TestLoadRejectsEmptyDirectory(t *testing.T) {
	_, _, err := NewLoader().Load(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no job blocks")
}
