package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureDataDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureDataDir(".gophtasks")
	require.NoError(t, err)

	want := filepath.Join(tmp, ".gophtasks")
	gotEval, _ := filepath.EvalSymlinks(got)
	wantEval, _ := filepath.EvalSymlinks(want)
	require.Equal(t, wantEval, gotEval)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir())
}

func TestEnsureDataDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	_, err := EnsureDataDir("data")
	require.NoError(t, err)
	_, err = EnsureDataDir("data")
	require.NoError(t, err)
}

func TestReadAttachment(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "my photo.png")
	require.NoError(t, os.WriteFile(p, []byte("png"), 0o600))

	name, data, err := ReadAttachment(p)
	require.NoError(t, err)
	require.Equal(t, "my photo.png", name)
	require.Equal(t, []byte("png"), data)

	_, _, err = ReadAttachment(dir)
	require.Error(t, err)

	_, _, err = ReadAttachment(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}
