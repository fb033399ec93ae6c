package filesys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-dirzip/pkg/archiver"
	"github.com/acronis/go-dirzip/pkg/testsupp"
)

func buildArchive(t *testing.T, format archiver.Format, archiveName string) (string, string) {
	t.Helper()

	root := filepath.Join(t.TempDir(), "proj")
	testsupp.WriteTree(t, afero.NewOsFs(), root, map[string]string{
		"a.txt":     "hello",
		".hidden":   "secret",
		"sub/b.txt": "world",
	})

	dst := filepath.Join(t.TempDir(), archiveName)
	_, err := archiver.Archive(root, dst, archiver.WithFormat(format))
	require.NoError(t, err)
	return root, dst
}

func TestListArchive(t *testing.T) {
	testsupp.InitLog(t)

	for _, tc := range []struct {
		format archiver.Format
		name   string
	}{
		{archiver.FormatZip, "out.zip"},
		{archiver.FormatTgz, "out.tar.gz"},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			_, dst := buildArchive(t, tc.format, tc.name)

			entries, err := ListArchive(dst)
			require.NoError(t, err)
			require.Equal(t, 2, entries.Len())

			a, ok := entries.Get("a.txt")
			require.True(t, ok)
			require.Equal(t, int64(5), a.Size)
			require.NotEmpty(t, a.Digest)

			b, ok := entries.Get("sub/b.txt")
			require.True(t, ok)
			require.Equal(t, int64(5), b.Size)
			require.NotEqual(t, a.Digest, b.Digest)

			_, ok = entries.Get(".hidden")
			require.False(t, ok)
		})
	}
}

func TestListArchive_SniffsUnknownExtension(t *testing.T) {
	_, dst := buildArchive(t, archiver.FormatZip, "out.bin")

	entries, err := ListArchive(dst)
	require.NoError(t, err)
	require.Equal(t, 2, entries.Len())
}

func TestListArchive_NotAnArchive(t *testing.T) {
	fName := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(fName, []byte("plain text"), 0o644))

	_, err := ListArchive(fName)
	require.Error(t, err)

	_, err = ListArchive(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)
}

func TestReadEntry(t *testing.T) {
	_, dst := buildArchive(t, archiver.FormatZip, "out.zip")

	content, err := ReadEntry(dst, "sub/b.txt")
	require.NoError(t, err)
	require.Equal(t, "world", string(content))

	_, err = ReadEntry(dst, ".hidden")
	require.ErrorContains(t, err, "failed to find")
}

func TestExtract(t *testing.T) {
	testsupp.InitLog(t)

	for _, tc := range []struct {
		format archiver.Format
		name   string
	}{
		{archiver.FormatZip, "out.zip"},
		{archiver.FormatTgz, "out.tgz"},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			_, dst := buildArchive(t, tc.format, tc.name)
			dest := filepath.Join(t.TempDir(), "restored")

			require.NoError(t, Extract(dst, dest, false))

			content, err := os.ReadFile(filepath.Join(dest, "sub", "b.txt"))
			require.NoError(t, err)
			require.Equal(t, "world", string(content))
			require.NoFileExists(t, filepath.Join(dest, ".hidden"))

			require.Error(t, Extract(dst, dest, false), "existing files must not be replaced")
			require.NoError(t, Extract(dst, dest, true))
		})
	}
}
