package tgzwriter

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-dirzip/pkg/testsupp"
)

func TestWriteFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testsupp.WriteTree(t, fsys, "/src", map[string]string{"b.txt": "world"})
	info, err := fsys.Stat("/src/b.txt")
	require.NoError(t, err)

	closer, err := New().Init(fsys, "/out.tgz")
	require.NoError(t, err)
	w := closer.(*tarWriter)

	require.NoError(t, w.WriteFile("sub/b.txt", info, strings.NewReader("world")))
	require.NoError(t, closer.Close())

	require.Equal(t, map[string]string{"sub/b.txt": "world"}, testsupp.ReadTgz(t, fsys, "/out.tgz"))
}

func TestWriteFile_SizeChanged(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testsupp.WriteTree(t, fsys, "/src", map[string]string{"b.txt": "world"})
	info, err := fsys.Stat("/src/b.txt")
	require.NoError(t, err)

	for name, content := range map[string]string{
		"grown":  "world and more",
		"shrunk": "wor",
	} {
		t.Run(name, func(t *testing.T) {
			closer, err := New().Init(fsys, "/"+name+".tgz")
			require.NoError(t, err)
			defer closer.Close()

			err = closer.(*tarWriter).WriteFile("b.txt", info, strings.NewReader(content))
			require.ErrorIs(t, err, ErrFileChanged)
		})
	}
}

func TestInit_CreateFails(t *testing.T) {
	_, err := New().Init(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/out.tgz")
	require.Error(t, err)
}
