package slurm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/gridlaunch/internal/config"
)

func fullJob() *config.Job {
	return &config.Job{
		Name:       "reptile_1shot",
		Workdir:    "/home/user/supervised-reptile",
		Venv:       "/home/user/venvs/reptile",
		EnvModules: []string{"cuda/10.0", "cudnn/7.4"},
		Env:        map[string]string{"OMP_NUM_THREADS": "8", "DATA_DIR": "/scratch/data"},
		Resources: &config.Resources{
			MemoryMB:  16384,
			CPUs:      4,
			GPUs:      1,
			Walltime:  "48:00:00",
			Partition: "gpu",
		},
		Notify: &config.Notify{
			Email: "user@example.org",
			On:    []string{config.TriggerEnd, config.TriggerFail, config.TriggerTimeout},
		},
		Run: &config.Run{
			Program: "python",
			Args:    []string{"run_miniimagenet.py", "--shots", "1", "--checkpoint", "ckpt_m153"},
		},
	}
}

func TestRenderFullJob(t *testing.T) {
	script, err := Render(fullJob())
	require.NoError(t, err)

	want := `#!/bin/bash
#SBATCH --job-name=reptile_1shot
#SBATCH --mem=16384M
#SBATCH --cpus-per-task=4
#SBATCH --gres=gpu:1
#SBATCH --time=48:00:00
#SBATCH --partition=gpu
#SBATCH --mail-user=user@example.org
#SBATCH --mail-type=END,FAIL,TIME_LIMIT

module load cuda/10.0
module load cudnn/7.4
export DATA_DIR=/scratch/data
export OMP_NUM_THREADS=8
cd /home/user/supervised-reptile
source /home/user/venvs/reptile/bin/activate

python run_miniimagenet.py --shots 1 --checkpoint ckpt_m153
`
	assert.Equal(t, want, script)
}

func TestRenderIsDeterministic(t *testing.T) {
	// Map iteration order must not leak into the script.
	first, err := Render(fullJob())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Render(fullJob())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRenderMinimalJob(t *testing.T) {
	job := &config.Job{
		Name:    "bare",
		Workdir: "/tmp",
		Run:     &config.Run{Program: "true"},
	}
	script, err := Render(job)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(script, "#!/bin/bash\n#SBATCH --job-name=bare\n"))
	assert.NotContains(t, script, "--mem")
	assert.NotContains(t, script, "--mail-user")
	assert.NotContains(t, script, "module load")
	assert.NotContains(t, script, "source")
	assert.Contains(t, script, "cd /tmp\n")
	assert.True(t, strings.HasSuffix(script, "\ntrue\n"))
}

func TestRenderQuotesUnsafeArguments(t *testing.T) {
	job := &config.Job{
		Name:    "quoting",
		Workdir: "/data/my runs",
		Run: &config.Run{
			Program: "python",
			Args:    []string{"train.py", "--note", "uses $HOME and 'quotes'"},
		},
	}
	script, err := Render(job)
	require.NoError(t, err)

	assert.Contains(t, script, "cd '/data/my runs'\n")
	assert.Contains(t, script, `python train.py --note 'uses $HOME and '\''quotes'\'''`)
}

func TestRenderRequiresProgram(t *testing.T) {
	_, err := Render(&config.Job{Name: "empty", Workdir: "/tmp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no program to run")
}

func TestRenderSkipsUnknownTriggers(t *testing.T) {
	job := fullJob()
	job.Notify.On = []string{"begin"}
	script, err := Render(job)
	require.NoError(t, err)
	assert.NotContains(t, script, "--mail-user")
	assert.NotContains(t, script, "--mail-type")
}
