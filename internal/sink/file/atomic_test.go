package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomic_Write(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "out.csv")

	require.NoError(t, NewAtomic(p, 0).Write([]byte("a,b\n")))
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(got))

	st, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, DefaultPerm, st.Mode().Perm())

	// Overwrite replaces the content.
	require.NoError(t, NewAtomic(p, 0).Write([]byte("c\n")))
	got, err = os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "c\n", string(got))

	assertNoTempFiles(t, dir)
}

func TestAtomic_MissingDirectory(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "no", "such", "dir", "out.csv")
	err := NewAtomic(p, 0).Write([]byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out.csv")
	_, statErr := os.Stat(p)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAtomic_DestinationIsDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "taken")
	require.NoError(t, os.Mkdir(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))

	err := NewAtomic(target, 0).Write([]byte("data"))
	require.Error(t, err)

	st, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
	assertNoTempFiles(t, dir)
}

func TestAtomic_TrailingSlash(t *testing.T) {
	t.Parallel()

	err := NewAtomic(t.TempDir()+string(os.PathSeparator), 0).Write([]byte("x"))
	assert.ErrorContains(t, err, "destination is a directory")
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
