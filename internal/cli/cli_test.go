package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/gridlaunch/internal/app"
)

func TestParsePositionalJobPath(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	cfg, exit, err := Parse([]string{"jobs/reptile.hcl"}, out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "jobs/reptile.hcl", cfg.JobPath)
	assert.Equal(t, app.ModeLocal, cfg.Mode)
}

func TestParseJobFlagWinsOverPositional(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	cfg, _, err := Parse([]string{"--job", "a.hcl", "b.hcl"}, out)
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.JobPath)
}

func TestParseModeFlag(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	cfg, _, err := Parse([]string{"--mode", "render", "a.hcl"}, out)
	require.NoError(t, err)
	assert.Equal(t, app.ModeRender, cfg.Mode)
}

func TestParseRejectsUnknownMode(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	_, _, err := Parse([]string{"--mode", "teleport", "a.hcl"}, out)
	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "invalid mode")
}

func TestParseRejectsBadLogFormat(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	_, _, err := Parse([]string{"--log-format", "xml", "a.hcl"}, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log-format")
}

func TestParseNoPathPrintsUsage(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	cfg, exit, err := Parse([]string{}, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseHelpFlag(t *testing.T) {
	t.Parallel()
	out := &bytes.Buffer{}

	_, exit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Contains(t, out.String(), "Usage:")
}
