package zipcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acronis/go-dirzip/internal/app/command"
	"github.com/acronis/go-dirzip/pkg/archiver"
	"github.com/acronis/go-dirzip/pkg/config"
)

const (
	formatFlag    = "format"
	keepGoingFlag = "keep-going"
)

type ZipOptions struct {
	Format    archiveFormat
	KeepGoing bool
}

func New(ctx context.Context) *cobra.Command {
	zipOpts := ZipOptions{Format: archiveFormat(archiver.FormatZip)}
	cmd := &cobra.Command{
		Use:   "zip [folder_path] [zip_name]",
		Short: "archive a directory tree, leaving out dot-files and the archive itself",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd, args, zipOpts)
			if err != nil {
				return command.WrapError(cmd, err)
			}

			return command.WrapError(cmd, execute(ctx, cmd.OutOrStdout(), opts))
		},
	}

	cmd.Flags().Var(&zipOpts.Format, formatFlag, "archive format, one of "+strings.Join(archiver.ListFormats, ", "))
	cmd.Flags().BoolVarP(&zipOpts.KeepGoing, keepGoingFlag, "k", false, "skip unreadable files instead of failing")
	return cmd
}

// resolveOptions layers defaults, the options file, positional arguments and changed flags, in that order.
func resolveOptions(cmd *cobra.Command, args []string, zipOpts ZipOptions) (config.Options, error) {
	opts, err := command.LoadOptions(cmd)
	if err != nil {
		return opts, err
	}

	command.ApplyArgs(&opts, args)
	if cmd.Flags().Changed(formatFlag) {
		opts.Format = zipOpts.Format.String()
	}
	if cmd.Flags().Changed(keepGoingFlag) {
		opts.KeepGoing = zipOpts.KeepGoing
	}

	return opts, command.FinalizeOptions(&opts, args)
}

func execute(_ context.Context, out io.Writer, opts config.Options) error {
	slog.Debug("Archiving directory",
		slog.String("root", opts.RootPath),
		slog.String("archive", opts.ArchiveName),
		slog.String("format", opts.Format))

	report, err := archiver.Archive(opts.RootPath, opts.ArchiveName, opts.ArchiverOptions()...)
	if report == nil {
		return fmt.Errorf("archive %s: %w", opts.RootPath, err)
	}

	fmt.Fprintf(out, "✅ Zipped as: %s\n", report.Archive)

	if err != nil {
		return fmt.Errorf("archive completed with skipped paths: %w", err)
	}
	return nil
}
