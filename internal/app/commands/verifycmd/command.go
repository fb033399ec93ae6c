package verifycmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/acronis/go-stacktrace"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/acronis/go-dirzip/internal/app/command"
	"github.com/acronis/go-dirzip/pkg/archiver"
	"github.com/acronis/go-dirzip/pkg/config"
	"github.com/acronis/go-dirzip/pkg/filesys"
)

func New(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [folder_path] [zip_name]",
		Short: "check that an archive holds exactly the files zip would put into it",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := command.LoadOptions(cmd)
			if err != nil {
				return command.WrapError(cmd, err)
			}
			command.ApplyArgs(&opts, args)
			if err := command.FinalizeOptions(&opts, args); err != nil {
				return command.WrapError(cmd, err)
			}

			return command.WrapError(cmd, execute(ctx, afero.NewOsFs(), opts))
		},
	}
}

func execute(_ context.Context, fsys afero.Fs, opts config.Options) error {
	a, err := archiver.New(archiver.WithFs(fsys))
	if err != nil {
		return fmt.Errorf("new archiver: %w", err)
	}

	report, err := a.Plan(opts.RootPath, opts.ArchiveName)
	if err != nil {
		return fmt.Errorf("enumerate %s: %w", opts.RootPath, err)
	}

	files := orderedmap.New[string, string]()
	for pair := report.Entries.Oldest(); pair != nil; pair = pair.Next() {
		files.Set(pair.Key, pair.Value.Source)
	}

	treeSum, err := filesys.HashFiles(fsys, files)
	if err != nil {
		return fmt.Errorf("hash directory: %w", err)
	}
	archiveSum, err := filesys.HashArchive(opts.ArchiveName)
	if err != nil {
		return fmt.Errorf("hash archive: %w", err)
	}

	if treeSum != archiveSum {
		return stacktrace.New("archive is out of date",
			stacktrace.WithInfo("archive", opts.ArchiveName),
			stacktrace.WithInfo("directory_hash", treeSum),
			stacktrace.WithInfo("archive_hash", archiveSum),
			stacktrace.WithType("mismatch"))
	}

	slog.Info("Archive is up to date",
		slog.String("archive", opts.ArchiveName),
		slog.Int("files", files.Len()),
		slog.String("hash", archiveSum))
	return nil
}
