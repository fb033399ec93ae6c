package tgzwriter

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// ErrFileChanged reports a file whose size no longer matches the size recorded in its header.
var ErrFileChanged = errors.New("file changed while being archived")

type tarWriter struct {
	archive afero.File
	gw      *gzip.Writer
	tw      *tar.Writer
}

func New() *tarWriter {
	return &tarWriter{}
}

func (wr *tarWriter) Close() error {
	if err := wr.tw.Close(); err != nil {
		_ = wr.archive.Close()
		return err
	}
	if err := wr.gw.Close(); err != nil {
		_ = wr.archive.Close()
		return err
	}
	return wr.archive.Close()
}

func (wr *tarWriter) Init(fsys afero.Fs, destination string) (io.Closer, error) {
	archive, err := fsys.Create(destination)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	wr.archive = archive
	wr.gw = gzip.NewWriter(wr.archive)
	wr.tw = tar.NewWriter(wr.gw)

	return wr, nil
}

func (wr *tarWriter) WriteFile(name string, info fs.FileInfo, r io.Reader) error {
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("create file info header: %w", err)
	}

	// FileInfoHeader only takes the basename, the entry needs the relative path
	header.Name = name

	if err := wr.tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write file header: %w", err)
	}

	n, err := io.CopyN(wr.tw, r, header.Size)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s shrank to %d of %d bytes", ErrFileChanged, name, n, header.Size)
	}
	if err != nil {
		return fmt.Errorf("write file content %s: %w", name, err)
	}

	// the header is already written, content past its size cannot be stored
	var rest [1]byte
	if m, _ := r.Read(rest[:]); m > 0 {
		return fmt.Errorf("%w: %s grew past %d bytes", ErrFileChanged, name, header.Size)
	}
	return nil
}
