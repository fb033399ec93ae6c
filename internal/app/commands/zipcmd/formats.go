package zipcmd

import (
	"errors"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/acronis/go-dirzip/pkg/archiver"
)

type archiveFormat archiver.Format

var _ pflag.Value = (*archiveFormat)(nil)

func (f *archiveFormat) String() string {
	return string(*f)
}

func (f *archiveFormat) Set(v string) error {
	if !slices.Contains(archiver.ListFormats, v) {
		return errors.New(`must be one of ` + strings.Join(archiver.ListFormats, ","))
	}
	*f = archiveFormat(v)
	return nil
}

func (f *archiveFormat) Type() string {
	return "format"
}
