package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenList(t *testing.T) {
	dir := t.TempDir()

	older := Manifest{
		OperationID:  "11111111-aaaa-bbbb-cccc-000000000000",
		App:          "Old App",
		BundleID:     "com.example.Old",
		When:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Success:      true,
		Message:      "Removed Old App (3 items)",
		RemovedPaths: []string{"/tmp/a", "/tmp/b", "/Applications/Old App.app"},
	}
	newer := Manifest{
		OperationID: "22222222-aaaa-bbbb-cccc-000000000000",
		App:         "New App",
		BundleID:    "com.example.New",
		When:        time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		Success:     false,
		Message:     "Administrator privileges are required to remove this application",
	}

	olderPath, err := Write(dir, older)
	require.NoError(t, err)
	assert.FileExists(t, olderPath)
	assert.Contains(t, filepath.Base(olderPath), "removal-20260301T120000-11111111")

	_, err = Write(dir, newer)
	require.NoError(t, err)

	got, err := List(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// newest first
	assert.Equal(t, "New App", got[0].App)
	assert.Equal(t, "Old App", got[1].App)
	assert.Equal(t, older.RemovedPaths, got[1].RemovedPaths)
	assert.False(t, got[0].Success)
}

func TestListMissingFolder(t *testing.T) {
	got, err := List(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListSkipsJunk(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "removal-junk.json"), []byte("not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("hi"), 0644))

	_, err := Write(dir, Manifest{
		OperationID: "33333333-aaaa-bbbb-cccc-000000000000",
		App:         "App",
		When:        time.Now(),
	})
	require.NoError(t, err)

	got, err := List(dir)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "App", got[0].App)
}
