package execprog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/gridlaunch/internal/launch"
)

// writeScript drops an executable shell script into a temp dir and
// returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func testEnv(dir string) *launch.Environment {
	env := launch.NewEnvironment([]string{"PATH=/usr/bin:/bin"})
	env.SetDir(dir)
	return env
}

func TestOnRunExecForwardsArgumentsVerbatim(t *testing.T) {
	dir := t.TempDir()
	argFile := filepath.Join(dir, "argv.txt")
	prog := writeScript(t, `for a in "$@"; do printf '%s\n' "$a"; done > `+argFile+"\n")

	args := []string{"--shots", "1", "--inner-batch", "10", "--checkpoint", "ckpt_m153"}
	out, err := OnRunExec(context.Background(), &Deps{Env: testEnv(dir)}, &Input{
		Program: prog,
		Args:    args,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, out.ExitCode)
	assert.False(t, out.TimedOut)

	got, err := os.ReadFile(argFile)
	require.NoError(t, err)
	want := ""
	for _, a := range args {
		want += a + "\n"
	}
	assert.Equal(t, want, string(got))
}

func TestOnRunExecRunsInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	prog := writeScript(t, "pwd > cwd.txt\n")

	_, err := OnRunExec(context.Background(), &Deps{Env: testEnv(dir)}, &Input{Program: prog})
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "cwd.txt"))
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved+"\n", string(got))
}

func TestOnRunExecReportsNonZeroExitWithoutFailing(t *testing.T) {
	prog := writeScript(t, "exit 3\n")

	out, err := OnRunExec(context.Background(), &Deps{Env: testEnv(t.TempDir())}, &Input{Program: prog})
	require.NoError(t, err)
	assert.Equal(t, 3, out.ExitCode)
	assert.False(t, out.TimedOut)
}

func TestOnRunExecFailsWhenProgramCannotStart(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-program")

	_, err := OnRunExec(context.Background(), &Deps{Env: testEnv(t.TempDir())}, &Input{Program: missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start program")
}

func TestOnRunExecKillsProgramOnWalltime(t *testing.T) {
	prog := writeScript(t, "sleep 30\n")

	out, err := OnRunExec(context.Background(), &Deps{Env: testEnv(t.TempDir())}, &Input{
		Program:     prog,
		WalltimeSec: 1,
	})
	require.NoError(t, err)
	assert.True(t, out.TimedOut)
	assert.Equal(t, -1, out.ExitCode)
}
