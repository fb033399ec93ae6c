package archiver

import (
	"fmt"

	"github.com/acronis/go-dirzip/pkg/archiver/tgzwriter"
	"github.com/acronis/go-dirzip/pkg/archiver/zipwriter"
)

type Format string

const (
	FormatZip Format = "zip"
	FormatTgz Format = "tgz"
)

var ListFormats = []string{string(FormatZip), string(FormatTgz)}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatZip, "":
		return zipwriter.New(), nil
	case FormatTgz:
		return tgzwriter.New(), nil
	default:
		return nil, fmt.Errorf("unsupported archive format %q", format)
	}
}
