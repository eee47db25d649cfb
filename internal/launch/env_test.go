package launch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvironmentParsesPairs(t *testing.T) {
	env := NewEnvironment([]string{"PATH=/usr/bin", "HOME=/home/u", "MALFORMED"})

	v, ok := env.Lookup("PATH")
	require.True(t, ok)
	assert.Equal(t, "/usr/bin", v)

	_, ok = env.Lookup("MALFORMED")
	assert.False(t, ok)
}

func TestPrependBuildsPathStyleLists(t *testing.T) {
	env := NewEnvironment([]string{"PATH=/usr/bin"})
	env.Prepend("PATH", "/opt/venv/bin", ":")

	v, _ := env.Lookup("PATH")
	assert.Equal(t, "/opt/venv/bin:/usr/bin", v)
}

func TestPrependOnUnsetVariable(t *testing.T) {
	env := NewEnvironment(nil)
	env.Prepend("LD_LIBRARY_PATH", "/opt/cuda/lib", ":")

	v, _ := env.Lookup("LD_LIBRARY_PATH")
	assert.Equal(t, "/opt/cuda/lib", v)
}

func TestPrependIsIdempotent(t *testing.T) {
	env := NewEnvironment([]string{"PATH=/usr/bin"})
	env.Prepend("PATH", "/opt/venv/bin", ":")
	env.Prepend("PATH", "/opt/venv/bin", ":")

	v, _ := env.Lookup("PATH")
	assert.Equal(t, "/opt/venv/bin:/usr/bin", v)
}

func TestSnapshotIsSortedAndComplete(t *testing.T) {
	env := NewEnvironment([]string{"B=2"})
	env.Set("A", "1")
	env.Set("C", "3")
	env.Unset("B")

	assert.Equal(t, []string{"A=1", "C=3"}, env.Snapshot())
}

func TestDirRoundTrip(t *testing.T) {
	env := NewEnvironment(nil)
	assert.Empty(t, env.Dir())
	env.SetDir("/scratch/jobs")
	assert.Equal(t, "/scratch/jobs", env.Dir())
}
