// Package reader opens archive files and walks or extracts their entries.
package reader

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"strings"

	"github.com/rejaad/rearchive/pkg/models"
)

// Sentinel errors surfaced by Open, Entries and the extract operations.
var (
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrCorruptArchive    = errors.New("corrupt archive")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrExtraction        = errors.New("extraction failed")
)

// Format is the container format tag derived from an archive's file name
type Format string

const (
	Format7z    Format = "7z"
	FormatZip   Format = "zip"
	FormatRar   Format = "rar"
	FormatTar   Format = "tar"
	FormatTarGz Format = "tar.gz"
)

// suffixes is checked in order so ".tar.gz" is seen before ".gz"-like tails
var suffixes = []struct {
	suffix string
	format Format
}{
	{".tar.gz", FormatTarGz},
	{".tgz", FormatTarGz},
	{".7z", Format7z},
	{".zip", FormatZip},
	{".rar", FormatRar},
	{".tar", FormatTar},
}

// SupportedExtensions lists the file name suffixes DetectFormat accepts
func SupportedExtensions() []string {
	exts := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		exts = append(exts, s.suffix)
	}
	return exts
}

// DetectFormat determines the format tag from the file extension
func DetectFormat(path string) (Format, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, s := range suffixes {
		if strings.HasSuffix(name, s.suffix) {
			return s.format, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// Opener opens archives for reading
type Opener interface {
	Open(ctx context.Context, path string) (Archive, error)
}

// Archive is an open archive handle. Close must be called on every path.
type Archive interface {
	Format() Format
	// Entries lazily walks the archive. A failure is yielded once as the last element.
	Entries(ctx context.Context) iter.Seq2[models.Entry, error]
	ExtractAll(ctx context.Context, destDir string) error
	ExtractSubset(ctx context.Context, destDir string, paths []string) error
	Close() error
}
