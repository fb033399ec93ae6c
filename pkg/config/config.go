package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"

	"github.com/acronis/go-dirzip/pkg/archiver"
)

const (
	// DefaultConfigName starts with a dot so the file never ends up in the archive it configures.
	DefaultConfigName = ".dirzip.yaml"
	// DefaultTgzArchiveName replaces the default archive name when the tgz format is selected.
	DefaultTgzArchiveName = "my_project.tar.gz"
)

// Options are the two named options of an archive run plus the behavior switches.
type Options struct {
	// RootPath is the directory to archive.
	RootPath string `json:"root_path" validate:"required"`
	// ArchiveName is the output file, relative or absolute. It is overwritten when it exists.
	ArchiveName string `json:"archive_name" validate:"required"`
	Format      string `json:"format" validate:"oneof=zip tgz"`
	KeepGoing   bool   `json:"keep_going"`
}

func Default() Options {
	return Options{
		RootPath:    archiver.DefaultRootPath,
		ArchiveName: archiver.DefaultArchiveName,
		Format:      string(archiver.FormatZip),
	}
}

// Load reads a YAML file over the values already present in opts and validates the result.
func Load(fName string, opts *Options) error {
	if _, err := os.Stat(fName); os.IsNotExist(err) {
		return fmt.Errorf("config file %s does not exist", fName)
	}

	data, err := os.ReadFile(fName)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, opts); err != nil {
		return fmt.Errorf("decode config file %s: %w", fName, err)
	}

	return opts.Validate()
}

func (o *Options) Validate() error {
	if err := validator.New().Struct(o); err != nil {
		return fmt.Errorf("validate options: %w", err)
	}
	return nil
}

// ApplyFormatDefaults swaps the default zip archive name for DefaultTgzArchiveName when the tgz format is selected.
// A name given explicitly is kept as is.
func (o *Options) ApplyFormatDefaults(explicitName bool) {
	if explicitName || o.Format != string(archiver.FormatTgz) || o.ArchiveName != archiver.DefaultArchiveName {
		return
	}
	o.ArchiveName = DefaultTgzArchiveName
}

// ArchiverOptions translates the behavior switches into archiver options.
func (o *Options) ArchiverOptions() []archiver.Option {
	opts := []archiver.Option{archiver.WithFormat(archiver.Format(o.Format))}
	if o.KeepGoing {
		opts = append(opts, archiver.WithKeepGoing())
	}
	return opts
}
