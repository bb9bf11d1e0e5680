package extraction

import (
	"errors"
	"fmt"
)

// ErrEmptySelection is returned when an extract request names no files.
// It is a user-level condition, not a system fault.
var ErrEmptySelection = errors.New("no files selected")

// ArchiveReadError reports a failure to open or list an archive
type ArchiveReadError struct {
	Path string
	Err  error
}

func (e *ArchiveReadError) Error() string {
	return fmt.Sprintf("failed to read archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveReadError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a failed extraction; files written before the failure are kept
type ExtractionError struct {
	Path string
	Dest string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s to %s: %v", e.Path, e.Dest, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ErrorKind names the category of a reported failure
type ErrorKind string

const (
	KindNone           ErrorKind = ""
	KindArchiveRead    ErrorKind = "ArchiveReadError"
	KindExtraction     ErrorKind = "ExtractionError"
	KindEmptySelection ErrorKind = "EmptySelectionError"
	KindOther          ErrorKind = "Error"
)

// KindOf classifies err for presentation
func KindOf(err error) ErrorKind {
	var readErr *ArchiveReadError
	var extractErr *ExtractionError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrEmptySelection):
		return KindEmptySelection
	case errors.As(err, &readErr):
		return KindArchiveRead
	case errors.As(err, &extractErr):
		return KindExtraction
	default:
		return KindOther
	}
}
