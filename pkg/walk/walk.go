package walk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/spf13/afero"
)

// Dir is a single directory visited by the Walker.
type Dir struct {
	// Path of the directory, joined onto the walk root.
	Path string
	// Subdirs holds names of the immediate subdirectories that will be descended.
	Subdirs []string
	// Files holds names of the immediate regular files (and symlinks that do not resolve to a directory).
	Files []string
}

// Walker traverses a directory tree pre-order, top-down.
// Each directory is read lazily on Next, so a walker that is never advanced never touches the filesystem.
// Symlinks to directories are not descended.
type Walker struct {
	fs    afero.Fs
	root  string
	stack []string
}

func New(fsys afero.Fs, root string) *Walker {
	w := &Walker{fs: fsys, root: root}
	w.Reset()
	return w
}

func (w *Walker) Root() string {
	return w.root
}

// Reset restarts the traversal from the root.
func (w *Walker) Reset() {
	w.stack = append(w.stack[:0], w.root)
}

// Next returns the next directory or io.EOF when the tree is exhausted.
// A directory that cannot be read is returned with an error and is not descended,
// the walker stays usable and continues with the remaining directories.
func (w *Walker) Next() (Dir, error) {
	if len(w.stack) == 0 {
		return Dir{}, io.EOF
	}

	dirPath := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	d, err := w.readDir(dirPath)
	if err != nil {
		return Dir{Path: dirPath}, err
	}

	// push in reverse so the first subdirectory is visited next
	for i := len(d.Subdirs) - 1; i >= 0; i-- {
		w.stack = append(w.stack, filepath.Join(dirPath, d.Subdirs[i]))
	}
	return d, nil
}

// All restarts the walker and yields every directory in traversal order.
// Read failures are yielded alongside the directory path, the consumer decides whether to stop.
func (w *Walker) All() iter.Seq2[Dir, error] {
	return func(yield func(Dir, error) bool) {
		w.Reset()
		for {
			d, err := w.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(d, err) {
				return
			}
		}
	}
}

func (w *Walker) readDir(dirPath string) (Dir, error) {
	infos, err := afero.ReadDir(w.fs, dirPath)
	if err != nil {
		return Dir{}, fmt.Errorf("read directory %s: %w", dirPath, err)
	}

	d := Dir{Path: dirPath}
	for _, info := range infos {
		mode := info.Mode()
		switch {
		case mode.IsDir():
			d.Subdirs = append(d.Subdirs, info.Name())
		case mode&fs.ModeSymlink != 0:
			// a broken link stays a file so reading it surfaces the failure
			if target, err := w.fs.Stat(filepath.Join(dirPath, info.Name())); err == nil && target.IsDir() {
				continue
			}
			d.Files = append(d.Files, info.Name())
		case mode.IsRegular():
			d.Files = append(d.Files, info.Name())
		}
	}
	return d, nil
}
