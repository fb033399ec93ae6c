package zipcmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-dirzip/internal/app/command"
	"github.com/acronis/go-dirzip/pkg/archiver"
	"github.com/acronis/go-dirzip/pkg/testsupp"
)

func runZip(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "dirzip", SilenceUsage: true, SilenceErrors: true}
	command.AddConfigFlag(root)
	root.AddCommand(New(context.Background()))

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"zip"}, args...))

	err := root.Execute()
	return out.String(), err
}

func projectDir(t *testing.T) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "proj")
	testsupp.WriteTree(t, afero.NewOsFs(), root, map[string]string{
		"a.txt":          "hello",
		".hidden":        "secret",
		"sub/b.txt":      "world",
		"my_project.zip": "stale archive",
	})
	return root
}

func TestZip_Arguments(t *testing.T) {
	testsupp.InitLog(t)
	testsupp.Chdir(t, t.TempDir())
	root := projectDir(t)

	out, err := runZip(t, root, "out.zip")
	require.NoError(t, err)
	require.Equal(t, "✅ Zipped as: out.zip\n", out)

	require.Equal(t, map[string]string{
		"a.txt":          "hello",
		"sub/b.txt":      "world",
		"my_project.zip": "stale archive",
	}, testsupp.ReadZip(t, afero.NewOsFs(), "out.zip"))
}

func TestZip_Defaults(t *testing.T) {
	root := projectDir(t)
	testsupp.Chdir(t, root)

	out, err := runZip(t)
	require.NoError(t, err)
	require.Equal(t, "✅ Zipped as: my_project.zip\n", out)

	require.Equal(t, map[string]string{
		"a.txt":     "hello",
		"sub/b.txt": "world",
	}, testsupp.ReadZip(t, afero.NewOsFs(), archiver.DefaultArchiveName))
}

func TestZip_TgzDefaultName(t *testing.T) {
	root := projectDir(t)
	testsupp.Chdir(t, root)

	out, err := runZip(t, "--format", "tgz")
	require.NoError(t, err)
	require.Equal(t, "✅ Zipped as: my_project.tar.gz\n", out)

	require.Equal(t, map[string]string{
		"a.txt":          "hello",
		"sub/b.txt":      "world",
		"my_project.zip": "stale archive",
	}, testsupp.ReadTgz(t, afero.NewOsFs(), "my_project.tar.gz"))
}

func TestZip_ConfigFile(t *testing.T) {
	root := projectDir(t)
	testsupp.Chdir(t, root)
	require.NoError(t, os.WriteFile(".dirzip.yaml", []byte("archive_name: from-config.zip\n"), 0o644))

	out, err := runZip(t)
	require.NoError(t, err)
	require.Equal(t, "✅ Zipped as: from-config.zip\n", out)

	// the options file is a dot-file and stays out of the archive
	entries := testsupp.ReadZip(t, afero.NewOsFs(), "from-config.zip")
	require.NotContains(t, entries, ".dirzip.yaml")
	require.Contains(t, entries, "my_project.zip")

	// positional arguments win over the file
	out, err = runZip(t, ".", "from-args.zip")
	require.NoError(t, err)
	require.Equal(t, "✅ Zipped as: from-args.zip\n", out)
}

func TestZip_ExplicitConfigFlag(t *testing.T) {
	root := projectDir(t)
	testsupp.Chdir(t, t.TempDir())

	cfg := filepath.Join(t.TempDir(), "opts.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("root_path: "+root+"\nformat: tgz\narchive_name: out.tgz\n"), 0o644))

	out, err := runZip(t, "--config", cfg)
	require.NoError(t, err)
	require.Equal(t, "✅ Zipped as: out.tgz\n", out)
	// my_project.zip is a regular file when the run writes another archive
	require.Len(t, testsupp.ReadTgz(t, afero.NewOsFs(), "out.tgz"), 3)

	_, err = runZip(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	var cmdErr *command.Error
	require.ErrorAs(t, err, &cmdErr)
}

func TestZip_MissingRoot(t *testing.T) {
	testsupp.Chdir(t, t.TempDir())

	out, err := runZip(t, "does-not-exist")
	var cmdErr *command.Error
	require.ErrorAs(t, err, &cmdErr)
	require.Equal(t, "zip", cmdErr.Command)
	require.True(t, archiver.IsFault(err, archiver.AccessFault))
	require.Empty(t, out)
	require.NoFileExists(t, archiver.DefaultArchiveName)
}

func TestZip_UsageErrors(t *testing.T) {
	testsupp.Chdir(t, t.TempDir())

	_, err := runZip(t, "--format", "rar")
	require.Error(t, err)
	var cmdErr *command.Error
	require.False(t, errors.As(err, &cmdErr))

	_, err = runZip(t, "a", "b", "c")
	require.Error(t, err)
	require.False(t, errors.As(err, &cmdErr))
}
