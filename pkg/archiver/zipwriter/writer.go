package zipwriter

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

type zipWriter struct {
	*zip.Writer
	archive afero.File
}

func New() *zipWriter {
	return &zipWriter{}
}

func (zw *zipWriter) Close() error {
	err := zw.Writer.Close()
	if cerr := zw.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

func (zw *zipWriter) Init(fsys afero.Fs, destination string) (io.Closer, error) {
	archive, err := fsys.Create(destination)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	zw.archive = archive
	zw.Writer = zip.NewWriter(archive)

	return zw, nil
}

// WriteFile stores the content of r as a deflated entry.
func (zw *zipWriter) WriteFile(name string, info fs.FileInfo, r io.Reader) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("create file %s in archive: %w", name, err)
	}
	if _, err = io.Copy(w, r); err != nil {
		return fmt.Errorf("copy file %s into archive: %w", name, err)
	}
	return nil
}
