package archiver

import (
	"errors"
	"fmt"
)

type FaultKind string

const (
	// AccessFault: the root or a file is missing or unreadable.
	AccessFault FaultKind = "access"
	// WriteFault: the destination cannot be created, written or finalized.
	WriteFault FaultKind = "write"
	// EncodingFault: a path cannot be represented as an archive entry name.
	EncodingFault FaultKind = "encoding"
)

// Fault classifies every failure returned by the Archiver.
type Fault struct {
	Kind FaultKind
	Path string
	Err  error

	// partial is set when the entry was already started in the archive
	partial bool
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault: %v", f.Kind, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// IsFault reports whether err carries a Fault of the given kind.
func IsFault(err error, kind FaultKind) bool {
	var f *Fault
	return errors.As(err, &f) && f.Kind == kind
}
