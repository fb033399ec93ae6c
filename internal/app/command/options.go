package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/acronis/go-dirzip/pkg/config"
)

const (
	configFlag = "config"
)

func AddConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(configFlag, "c", "",
		fmt.Sprintf("options file, %s in the working directory is used when present", config.DefaultConfigName))
}

// LoadOptions returns the default options overlaid with the options file, if there is one.
func LoadOptions(cmd *cobra.Command) (config.Options, error) {
	opts := config.Default()

	fName, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return opts, fmt.Errorf("get config flag: %w", err)
	}
	if fName == "" {
		if _, err := os.Stat(config.DefaultConfigName); err != nil {
			return opts, nil
		}
		fName = config.DefaultConfigName
	}

	slog.Debug("Loading options", slog.String("path", fName))
	if err := config.Load(fName, &opts); err != nil {
		return opts, fmt.Errorf("load options: %w", err)
	}
	return opts, nil
}

// ApplyArgs overrides the root path and the archive name with the [folder_path] [zip_name] arguments.
func ApplyArgs(opts *config.Options, args []string) {
	if len(args) > 0 {
		opts.RootPath = args[0]
	}
	if len(args) > 1 {
		opts.ArchiveName = args[1]
	}
}

// FinalizeOptions applies the format dependent defaults and validates the result.
// args are the [folder_path] [zip_name] arguments already applied with ApplyArgs.
func FinalizeOptions(opts *config.Options, args []string) error {
	opts.ApplyFormatDefaults(len(args) > 1)
	return opts.Validate()
}
