package extractcmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/acronis/go-dirzip/internal/app/command"
	"github.com/acronis/go-dirzip/pkg/filesys"
)

func New(ctx context.Context) *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "extract <archive> <dest>",
		Short: "unpack an archive into a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.WrapError(cmd, execute(ctx, args[0], args[1], overwrite))
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace files that already exist in the destination")
	return cmd
}

func execute(_ context.Context, fName string, dest string, overwrite bool) error {
	slog.Info("Extracting archive", slog.String("archive", fName), slog.String("dest", dest))

	if err := filesys.Extract(fName, dest, overwrite); err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}

	slog.Info("Extraction has been completed", slog.String("dest", dest))
	return nil
}
