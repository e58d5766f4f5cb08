package matchstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vexrank/pkg/harvest"
	"vexrank/pkg/robotevents"
)

func sampleArchive() *Archive {
	at := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	archive := &Archive{}
	archive.Add(
		robotevents.Season{ID: 181, Name: "Spin Up", Start: at.AddDate(-1, 0, 0)},
		[]harvest.Match{
			{ID: 1, SeasonID: 181, Scheduled: at.AddDate(-1, 0, 0), Red: [2]string{"100A", "200B"}, Blue: [2]string{"300C", "400D"}, RedScore: 10, BlueScore: 5},
		},
	)
	archive.Add(
		robotevents.Season{ID: 190, Name: "Over Under", Start: at},
		[]harvest.Match{
			{ID: 2, SeasonID: 190, Scheduled: at, Red: [2]string{"100A", "300C"}, Blue: [2]string{"200B", "400D"}, RedScore: 7, BlueScore: 7},
			{ID: 3, SeasonID: 190, Scheduled: at.Add(time.Hour), Red: [2]string{"100A", "400D"}, Blue: [2]string{"200B", "300C"}, RedScore: 12, BlueScore: 4},
		},
	)
	return archive
}

func TestSaveLoadRoundTrip(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.False(t, manager.Exists())

	saved := sampleArchive()
	require.NoError(t, manager.Save(saved))
	require.True(t, manager.Exists())
	assert.False(t, saved.SavedAt.IsZero())
	assert.Equal(t, 1, saved.Version)

	loaded, err := manager.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	// Season order and per-season match order survive the round trip.
	require.Len(t, loaded.Seasons, 2)
	assert.Equal(t, "Spin Up", loaded.Seasons[0].SeasonName)
	assert.Equal(t, "Over Under", loaded.Seasons[1].SeasonName)
	assert.Equal(t, 3, loaded.TotalMatches())

	all := loaded.AllMatches()
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, [2]string{"100A", "200B"}, all[0].Red)
	assert.Equal(t, 7, all[1].BlueScore)
}

func TestLoadMissingArchive(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	archive, err := manager.Load()
	require.NoError(t, err)
	assert.Nil(t, archive)
}

func TestLoadCorruptArchive(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(manager.Path(), []byte("{not json"), 0644))

	_, err = manager.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	require.NoError(t, err)

	first := sampleArchive()
	require.NoError(t, manager.Save(first))

	second := &Archive{}
	second.Add(robotevents.Season{ID: 200, Name: "High Stakes"}, nil)
	require.NoError(t, manager.Save(second))

	loaded, err := manager.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Seasons, 1)
	assert.Equal(t, 200, loaded.Seasons[0].SeasonID)

	// No temp file left behind.
	_, err = os.Stat(manager.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(manager.Path()), entries[0].Name())
}

func TestDelete(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	// Deleting a missing archive is fine.
	require.NoError(t, manager.Delete())

	require.NoError(t, manager.Save(sampleArchive()))
	require.True(t, manager.Exists())

	require.NoError(t, manager.Delete())
	assert.False(t, manager.Exists())
}
