package archiver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/acronis/go-stacktrace"
	"github.com/spf13/afero"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/acronis/go-dirzip/pkg/archiver/tgzwriter"
	"github.com/acronis/go-dirzip/pkg/archiver/zipwriter"
	"github.com/acronis/go-dirzip/pkg/walk"
)

const (
	DefaultRootPath    = "."
	DefaultArchiveName = "my_project.zip"

	maxEntryNameLen = 1<<16 - 1
)

// Writer is the codec an Archiver writes entries into.
// Closing the value returned by Init finalizes the archive.
type Writer interface {
	Init(fsys afero.Fs, dst string) (io.Closer, error)
	WriteFile(name string, info fs.FileInfo, r io.Reader) error
}

type Entry struct {
	Source string
	Name   string
	Size   int64
}

// Report lists what a run put into the archive and what it left out, both in traversal order.
type Report struct {
	Archive string
	Entries *orderedmap.OrderedMap[string, Entry]
	Skipped *orderedmap.OrderedMap[string, SkipReason]
}

func (r *Report) Names() []string {
	names := make([]string, 0, r.Entries.Len())
	for pair := r.Entries.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

type Archiver struct {
	fs        afero.Fs
	writer    Writer
	keepGoing bool
}

type Option func(*Archiver) error

func WithFs(fsys afero.Fs) Option {
	return func(a *Archiver) error {
		if fsys == nil {
			return fmt.Errorf("filesystem is not set")
		}
		a.fs = fsys
		return nil
	}
}

func WithWriter(w Writer) Option {
	return func(a *Archiver) error {
		if w == nil {
			return fmt.Errorf("writer is not set")
		}
		a.writer = w
		return nil
	}
}

func WithFormat(format Format) Option {
	return func(a *Archiver) error {
		w, err := NewWriter(format)
		if err != nil {
			return err
		}
		a.writer = w
		return nil
	}
}

// WithKeepGoing makes unreadable files and directories non-fatal.
// They are left out of the archive, the archive is finalized, and the collected faults are returned together.
func WithKeepGoing() Option {
	return func(a *Archiver) error {
		a.keepGoing = true
		return nil
	}
}

func New(opts ...Option) (*Archiver, error) {
	a := &Archiver{}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if a.fs == nil {
		a.fs = afero.NewOsFs()
	}
	if a.writer == nil {
		a.writer = zipwriter.New()
	}

	return a, nil
}

// Archive is a shorthand for New followed by Archiver.Archive.
func Archive(rootPath, archiveName string, opts ...Option) (*Report, error) {
	a, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return a.Archive(rootPath, archiveName)
}

// Archive writes every file under rootPath into archiveName, named by its path relative to rootPath.
// The archive itself and dot-files are skipped. Empty values fall back to DefaultRootPath and DefaultArchiveName.
//
// On failure the partially written archive is removed. A missing root fails before the archive is created.
func (a *Archiver) Archive(rootPath, archiveName string) (*Report, error) {
	rootPath, archiveName, err := a.prepare(rootPath, archiveName)
	if err != nil {
		return nil, err
	}

	closer, err := a.writer.Init(a.fs, archiveName)
	if err != nil {
		return nil, &Fault{Kind: WriteFault, Path: archiveName, Err: err}
	}

	finalized := false
	defer func() {
		if finalized {
			return
		}
		_ = closer.Close()
		if err := a.fs.Remove(archiveName); err != nil {
			slog.Warn("Failed to remove incomplete archive", slog.String("path", archiveName), slog.String("error", err.Error()))
		}
	}()

	report := newReport(archiveName)
	faults := stacktrace.StackTrace{}

	if err := a.archiveTree(rootPath, archiveName, report, &faults, a.writeFile); err != nil {
		return nil, err
	}

	finalized = true
	if err := closer.Close(); err != nil {
		_ = a.fs.Remove(archiveName)
		return nil, &Fault{Kind: WriteFault, Path: archiveName, Err: fmt.Errorf("finalize archive: %w", err)}
	}

	slog.Debug("Archive finalized",
		slog.String("archive", archiveName),
		slog.Int("entries", report.Entries.Len()),
		slog.Int("skipped", report.Skipped.Len()))

	if len(faults.List) > 0 {
		return report, &faults
	}
	return report, nil
}

// Plan walks rootPath with the same rules as Archive and reports what would be archived.
// Nothing is written, file contents are not read.
func (a *Archiver) Plan(rootPath, archiveName string) (*Report, error) {
	rootPath, archiveName, err := a.prepare(rootPath, archiveName)
	if err != nil {
		return nil, err
	}

	report := newReport(archiveName)
	faults := stacktrace.StackTrace{}

	if err := a.archiveTree(rootPath, archiveName, report, &faults, a.statFile); err != nil {
		return nil, err
	}
	if len(faults.List) > 0 {
		return report, &faults
	}
	return report, nil
}

func (a *Archiver) prepare(rootPath, archiveName string) (string, string, error) {
	if rootPath == "" {
		rootPath = DefaultRootPath
	}
	if archiveName == "" {
		archiveName = DefaultArchiveName
	}

	if _, err := a.fs.Stat(rootPath); err != nil {
		return "", "", &Fault{Kind: AccessFault, Path: rootPath, Err: fmt.Errorf("stat root: %w", err)}
	}
	return rootPath, archiveName, nil
}

func newReport(archiveName string) *Report {
	return &Report{
		Archive: archiveName,
		Entries: orderedmap.New[string, Entry](),
		Skipped: orderedmap.New[string, SkipReason](),
	}
}

func (a *Archiver) archiveTree(rootPath, archiveName string, report *Report, faults *stacktrace.StackTrace,
	add func(fsPath, name string) (Entry, error)) error {
	excludes := defaultExcludes(archiveName)

	for dir, err := range walk.New(a.fs, rootPath).All() {
		if err != nil {
			if ferr := a.collect(faults, &Fault{Kind: AccessFault, Path: dir.Path, Err: err}); ferr != nil {
				return ferr
			}
			continue
		}

	files:
		for _, fName := range dir.Files {
			fsPath := filepath.Join(dir.Path, fName)
			for _, exclude := range excludes {
				if reason, skip := exclude(fsPath, fName); skip {
					slog.Debug("Skipping file", slog.String("path", fsPath), slog.String("reason", string(reason)))
					report.Skipped.Set(fsPath, reason)
					continue files
				}
			}

			name, err := entryName(rootPath, fsPath)
			if err != nil {
				return &Fault{Kind: EncodingFault, Path: fsPath, Err: err}
			}

			entry, err := add(fsPath, name)
			if err != nil {
				if ferr := a.collect(faults, err); ferr != nil {
					return ferr
				}
				continue
			}
			report.Entries.Set(name, entry)
		}
	}
	return nil
}

// collect records a fault when running with keep-going and returns nil,
// otherwise it hands the fault back so the run aborts.
// Only access faults raised before an entry is started can be skipped safely.
func (a *Archiver) collect(faults *stacktrace.StackTrace, err error) error {
	var f *Fault
	if !a.keepGoing || !errors.As(err, &f) || f.Kind != AccessFault || f.partial {
		return err
	}

	slog.Warn("Skipping unreadable path", slog.String("error", err.Error()))
	_ = faults.Append(stacktrace.NewWrapped("path skipped", err, stacktrace.WithType("access")))
	return nil
}

func (a *Archiver) writeFile(fsPath string, name string) (Entry, error) {
	f, err := a.fs.Open(fsPath)
	if err != nil {
		return Entry{}, &Fault{Kind: AccessFault, Path: fsPath, Err: fmt.Errorf("open file: %w", err)}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Entry{}, &Fault{Kind: AccessFault, Path: fsPath, Err: fmt.Errorf("stat file: %w", err)}
	}

	slog.Debug("Adding file", slog.String("path", fsPath), slog.String("name", name))

	src := &readTracker{r: f}
	if err := a.writer.WriteFile(name, info, src); err != nil {
		if src.err != nil {
			return Entry{}, &Fault{Kind: AccessFault, Path: fsPath, Err: fmt.Errorf("read file: %w", src.err), partial: true}
		}
		if errors.Is(err, tgzwriter.ErrFileChanged) {
			return Entry{}, &Fault{Kind: AccessFault, Path: fsPath, Err: err, partial: true}
		}
		return Entry{}, &Fault{Kind: WriteFault, Path: fsPath, Err: err}
	}

	return Entry{Source: fsPath, Name: name, Size: src.n}, nil
}

func (a *Archiver) statFile(fsPath string, name string) (Entry, error) {
	info, err := a.fs.Stat(fsPath)
	if err != nil {
		return Entry{}, &Fault{Kind: AccessFault, Path: fsPath, Err: fmt.Errorf("stat file: %w", err)}
	}
	return Entry{Source: fsPath, Name: name, Size: info.Size()}, nil
}

func entryName(rootPath, fsPath string) (string, error) {
	rel, err := filepath.Rel(rootPath, fsPath)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}

	name := filepath.ToSlash(rel)
	switch {
	case name == "." || name == ".." || strings.HasPrefix(name, "../"):
		return "", fmt.Errorf("path %s is outside of %s", fsPath, rootPath)
	case strings.ContainsRune(name, 0):
		return "", fmt.Errorf("entry name %q contains NUL", name)
	case len(name) > maxEntryNameLen:
		return "", fmt.Errorf("entry name is too long: %d bytes", len(name))
	}
	return name, nil
}

type readTracker struct {
	r   io.Reader
	n   int64
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.n += int64(n)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
