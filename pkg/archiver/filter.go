package archiver

import (
	"path/filepath"
	"strings"
)

type SkipReason string

const (
	SkipArchive SkipReason = "output archive"
	SkipHidden  SkipReason = "dot-file"
)

// excludeFn decides whether the file at fsPath with leaf name fName stays out of the archive.
type excludeFn func(fsPath string, fName string) (SkipReason, bool)

// defaultExcludes holds the only two rules the archiver applies.
// Directory names are never checked: files under a dot-directory are archived.
func defaultExcludes(archiveName string) []excludeFn {
	destination := absPath(archiveName)

	return []excludeFn{
		func(fsPath string, fName string) (SkipReason, bool) {
			if fName == archiveName || absPath(fsPath) == destination {
				return SkipArchive, true
			}
			return "", false
		},
		func(_ string, fName string) (SkipReason, bool) {
			if strings.HasPrefix(fName, ".") {
				return SkipHidden, true
			}
			return "", false
		},
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
