package runrecord

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "results"))

	rec := NewRecord("reptile_1shot", "local")
	rec.State = StateEnd
	rec.ExitCode = 0

	path, err := store.Save(rec)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.False(t, rec.FinishedAt.IsZero())

	got, err := store.Load(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "reptile_1shot", got.Job)
	assert.Equal(t, StateEnd, got.State)
}

func TestNewStoreDoesNotTouchDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	NewStore(dir)
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestListOrdersByStartTime(t *testing.T) {
	store := NewStore(t.TempDir())

	older := NewRecord("a", "local")
	older.StartedAt = time.Now().UTC().Add(-time.Hour)
	older.State = StateFail
	newer := NewRecord("b", "local")
	newer.State = StateEnd

	_, err := store.Save(newer)
	require.NoError(t, err)
	_, err = store.Save(older)
	require.NoError(t, err)

	recs, err := store.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].Job)
	assert.Equal(t, "b", recs[1].Job)
}

func TestListEmptyStore(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing"))
	recs, err := store.List()
	require.NoError(t, err)
	assert.Nil(t, recs)
}

func TestLoadUnknownID(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Load("nope")
	require.Error(t, err)
}
