package filesys

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/mholt/archiver/v3"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/zeebo/xxh3"
)

// EntryInfo describes a regular file stored in an archive.
type EntryInfo struct {
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Digest   string    `json:"digest"`
}

type archiveFormat interface {
	archiver.Walker
	archiver.Unarchiver
}

// openFormat picks the archive codec by file extension and falls back to sniffing the header.
func openFormat(fName string) (archiveFormat, error) {
	format, err := archiver.ByExtension(fName)
	if err != nil {
		f, openErr := os.Open(fName)
		if openErr != nil {
			return nil, fmt.Errorf("open archive: %w", openErr)
		}
		defer f.Close()

		u, headerErr := archiver.ByHeader(f)
		if headerErr != nil {
			return nil, fmt.Errorf("detect format of %s: %w", fName, headerErr)
		}
		format = u
	}

	af, ok := format.(archiveFormat)
	if !ok {
		return nil, fmt.Errorf("%s is not a multi-file archive", fName)
	}
	return af, nil
}

// ListArchive returns the regular files of an archive keyed by entry name, in archive order.
// Each file is read once to compute its xxh3 digest.
func ListArchive(fName string) (*orderedmap.OrderedMap[string, EntryInfo], error) {
	format, err := openFormat(fName)
	if err != nil {
		return nil, err
	}

	entries := orderedmap.New[string, EntryInfo]()
	err = format.Walk(fName, func(f archiver.File) error {
		if !f.Mode().IsRegular() {
			return nil
		}

		hf := xxh3.New()
		n, err := io.Copy(hf, f)
		if err != nil {
			return fmt.Errorf("read entry: %w", err)
		}

		entries.Set(entryName(f), EntryInfo{
			Size:     n,
			Modified: f.ModTime(),
			Digest:   fmt.Sprintf("%x", hf.Sum(nil)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk archive %s: %w", fName, err)
	}
	return entries, nil
}

// ReadEntry returns the content of a single regular file stored in an archive.
func ReadEntry(fName string, name string) ([]byte, error) {
	format, err := openFormat(fName)
	if err != nil {
		return nil, err
	}

	var content []byte
	found := false
	err = format.Walk(fName, func(f archiver.File) error {
		if entryName(f) != name {
			return nil
		}
		if !f.Mode().IsRegular() {
			return fmt.Errorf("entry %s is not a regular file", name)
		}
		data, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("read entry: %w", err)
		}
		content, found = data, true
		return archiver.ErrStopWalk
	})
	if err != nil {
		return nil, fmt.Errorf("walk archive %s: %w", fName, err)
	}
	if !found {
		return nil, fmt.Errorf("failed to find %s in archive", name)
	}
	return content, nil
}

// Extract unpacks an archive into dest, creating dest when missing.
// Existing files are only replaced when overwrite is set.
func Extract(fName string, dest string, overwrite bool) error {
	format, err := openFormat(fName)
	if err != nil {
		return err
	}

	switch u := format.(type) {
	case *archiver.Zip:
		u.OverwriteExisting = overwrite
	case *archiver.TarGz:
		u.OverwriteExisting = overwrite
	case *archiver.Tar:
		u.OverwriteExisting = overwrite
	}

	if err := format.Unarchive(fName, dest); err != nil {
		return fmt.Errorf("extract %s: %w", fName, err)
	}
	return nil
}

// entryName returns the full slash-separated name, FileInfo.Name only carries the base name.
func entryName(f archiver.File) string {
	switch h := f.Header.(type) {
	case zip.FileHeader:
		return h.Name
	case *tar.Header:
		return h.Name
	default:
		return f.Name()
	}
}
