package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/srdiff/internal/ignore"
)

func TestWatcherScanAppliesWithSiblingOrig(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.orig"), []byte("line1\nline2\n"), 0644))
	diff := "------- SEARCH\nline2\n=======\nreplaced\n+++++++ REPLACE\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.diff"), []byte(diff), 0644))

	w := NewWatcher(dir, nil)
	w.Scan()

	got, err := os.ReadFile(filepath.Join(dir, "a.orig"))
	require.NoError(t, err)
	assert.Equal(t, "line1\nreplaced\n", string(got))
}

func TestWatcherScanUsesTargetComment(t *testing.T) {
	dir := t.TempDir()

	target := filepath.Join(dir, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello\n"), 0644))

	diff := "--- target: " + target + "\n" +
		"------- SEARCH\nhello\n=======\nworld\n+++++++ REPLACE\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.diff"), []byte(diff), 0644))

	w := NewWatcher(dir, nil)
	w.Scan()

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "world\n", string(got))
}

func TestWatcherScanSkipsUnmodifiedFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.orig"), []byte("line1\n"), 0644))
	diff := "------- SEARCH\nline1\n=======\nreplaced\n+++++++ REPLACE\n"
	diffPath := filepath.Join(dir, "a.diff")
	require.NoError(t, os.WriteFile(diffPath, []byte(diff), 0644))

	w := NewWatcher(dir, nil)
	w.Scan()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.orig"), []byte("manually edited\n"), 0644))
	w.Scan()

	got, err := os.ReadFile(filepath.Join(dir, "a.orig"))
	require.NoError(t, err)
	assert.Equal(t, "manually edited\n", string(got), "second scan should have skipped the already-seen diff file")
}

func TestWatcherScanReloadsIgnoreFileEachPass(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.orig"), []byte("line1\n"), 0644))
	diff := "------- SEARCH\nline1\n=======\nreplaced\n+++++++ REPLACE\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.diff"), []byte(diff), 0644))

	ignoreController, err := ignore.NewController(dir)
	require.NoError(t, err)

	w := NewWatcher(dir, ignoreController)
	w.Scan()

	got, err := os.ReadFile(filepath.Join(dir, "a.orig"))
	require.NoError(t, err)
	assert.Equal(t, "replaced\n", string(got), "a.diff should have applied before any ignore pattern existed")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ignore.IgnoreFileName), []byte("a.diff\n"), 0644))
	diff2 := "------- SEARCH\nreplaced\n=======\nshould not apply\n+++++++ REPLACE\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.diff"), []byte(diff2), 0644))

	w.Scan()

	got, err = os.ReadFile(filepath.Join(dir, "a.orig"))
	require.NoError(t, err)
	assert.Equal(t, "replaced\n", string(got), "a.diff should now be ignored, proving Scan reloaded .srdiffignore")
}
