package testsupp

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/otiai10/copy"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// WriteTree creates files under root, keys are slash separated paths relative to root.
func WriteTree(t *testing.T, fsys afero.Fs, root string, files map[string]string) {
	t.Helper()

	require.NoError(t, fsys.MkdirAll(root, os.ModePerm))
	for name, content := range files {
		fPath := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(fPath), os.ModePerm))
		require.NoError(t, afero.WriteFile(fsys, fPath, []byte(content), 0o644))
	}
}

// CopyFixture copies a directory from testdata into a fresh temporary directory and returns its path.
func CopyFixture(t *testing.T, src string) string {
	t.Helper()

	dst := filepath.Join(t.TempDir(), filepath.Base(src))
	require.NoError(t, copy.Copy(src, dst))
	return dst
}

// ReadZip returns the content of every entry of a zip archive keyed by entry name.
func ReadZip(t *testing.T, fsys afero.Fs, name string) map[string]string {
	t.Helper()

	data, err := afero.ReadFile(fsys, name)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := map[string]string{}
	for _, f := range zr.File {
		require.Equal(t, zip.Deflate, f.Method, "entry %s is not deflated", f.Name)

		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)

		entries[f.Name] = string(content)
	}
	return entries
}

// ReadTgz returns the content of every regular entry of a gzip compressed tarball keyed by entry name.
func ReadTgz(t *testing.T, fsys afero.Fs, name string) map[string]string {
	t.Helper()

	f, err := fsys.Open(name)
	require.NoError(t, err)
	defer f.Close()

	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gr.Close()

	entries := map[string]string{}
	tr := tar.NewReader(gr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return entries
		}
		require.NoError(t, err)
		if header.Typeflag != tar.TypeReg {
			continue
		}

		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		entries[header.Name] = string(content)
	}
}

// Chdir switches the working directory and restores it when the test ends.
func Chdir(t *testing.T, dir string) {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(wd))
	})
}
