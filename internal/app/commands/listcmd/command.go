package listcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/acronis/go-dirzip/internal/app/command"
	"github.com/acronis/go-dirzip/pkg/filesys"
)

type ListOptions struct {
	JSON bool
}

func New(ctx context.Context) *cobra.Command {
	listOpts := ListOptions{}
	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "list the files stored in an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.WrapError(cmd, execute(ctx, cmd.OutOrStdout(), args[0], listOpts))
		},
	}

	cmd.Flags().BoolVar(&listOpts.JSON, "json", false, "print entries as a JSON object keyed by entry name")
	return cmd
}

func execute(_ context.Context, out io.Writer, fName string, opts ListOptions) error {
	entries, err := filesys.ListArchive(fName)
	if err != nil {
		return fmt.Errorf("list archive: %w", err)
	}

	if opts.JSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(entries); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		return nil
	}

	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(out, "%10d  %s  %s\n", pair.Value.Size, pair.Value.Modified.Format(time.DateTime), pair.Key)
	}
	return nil
}
