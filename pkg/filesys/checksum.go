package filesys

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mholt/archiver/v3"
	"github.com/rogpeppe/go-internal/dirhash"
	"github.com/spf13/afero"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/zeebo/xxh3"
)

const hashPrefix = "xxh3:"

var _ dirhash.Hash = hashXXH3

// hashXXH3 digests every file and combines the digests the way dirhash.Hash1 does, with xxh3 in place of sha256.
func hashXXH3(files []string, open func(string) (io.ReadCloser, error)) (string, error) {
	digests := make(map[string]string, len(files))
	for _, file := range files {
		r, err := open(file)
		if err != nil {
			return "", err
		}
		hf := xxh3.New()
		_, err = io.Copy(hf, r)
		r.Close()
		if err != nil {
			return "", err
		}
		digests[file] = fmt.Sprintf("%x", hf.Sum(nil))
	}
	return combineDigests(digests)
}

func combineDigests(digests map[string]string) (string, error) {
	files := make([]string, 0, len(digests))
	for file := range digests {
		files = append(files, file)
	}
	sort.Strings(files)

	h := xxh3.New()
	for _, file := range files {
		if strings.Contains(file, "\n") {
			return "", errors.New("dirhash: filenames with newlines are not supported")
		}
		fmt.Fprintf(h, "%s  %s\n", digests[file], file)
	}
	return hashPrefix + base64.StdEncoding.EncodeToString(h.Sum(nil)), nil
}

// HashFiles hashes the given files of fsys, keyed by the name they would have in an archive.
func HashFiles(fsys afero.Fs, files *orderedmap.OrderedMap[string, string]) (string, error) {
	names := make([]string, 0, files.Len())
	for pair := files.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}

	return hashXXH3(names, func(name string) (io.ReadCloser, error) {
		source, _ := files.Get(name)
		f, err := fsys.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	})
}

// HashArchive hashes the regular files stored in an archive.
// The result matches HashFiles over the tree the archive was built from.
func HashArchive(fName string) (string, error) {
	format, err := openFormat(fName)
	if err != nil {
		return "", err
	}

	if _, ok := format.(*archiver.Zip); ok {
		sum, err := dirhash.HashZip(fName, hashXXH3)
		if err != nil {
			return "", fmt.Errorf("hash archive %s: %w", fName, err)
		}
		return sum, nil
	}

	entries, err := ListArchive(fName)
	if err != nil {
		return "", err
	}
	digests := make(map[string]string, entries.Len())
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		digests[pair.Key] = pair.Value.Digest
	}
	return combineDigests(digests)
}
