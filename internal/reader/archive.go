package reader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
	"github.com/rejaad/rearchive/pkg/models"
)

// FileOpener opens archives from the local filesystem
type FileOpener struct{}

// New creates a new file opener
func New() *FileOpener {
	return &FileOpener{}
}

// Open validates the extension, opens the file and identifies its container format
func (o *FileOpener) Open(ctx context.Context, path string) (Archive, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	identified, _, err := archives.Identify(ctx, filepath.Base(path), file)
	if err != nil {
		file.Close()
		if errors.Is(err, archives.NoMatch) {
			return nil, fmt.Errorf("%w: %s is not a valid %s archive", ErrCorruptArchive, filepath.Base(path), format)
		}
		return nil, fmt.Errorf("%w: failed to identify archive: %w", ErrCorruptArchive, err)
	}

	extractor, ok := identified.(archives.Extractor)
	if !ok {
		file.Close()
		return nil, fmt.Errorf("%w: %T does not support extraction", ErrUnsupportedFormat, identified)
	}

	return &fileArchive{
		path:      path,
		format:    format,
		file:      file,
		extractor: extractor,
	}, nil
}

// fileArchive walks an archive through mholt/archives. Every walk rewinds the file
// so the handle can be listed and extracted in sequence.
type fileArchive struct {
	path      string
	format    Format
	file      *os.File
	extractor archives.Extractor
}

func (a *fileArchive) Format() Format {
	return a.format
}

func (a *fileArchive) Close() error {
	return a.file.Close()
}

// walk rewinds the archive and calls handle for each stored file.
// Returning fs.SkipAll from handle ends the walk without error.
func (a *fileArchive) walk(ctx context.Context, handle archives.FileHandler) error {
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind archive: %w", err)
	}
	err := a.extractor.Extract(ctx, a.file, handle)
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func (a *fileArchive) Entries(ctx context.Context) iter.Seq2[models.Entry, error] {
	return func(yield func(models.Entry, error) bool) {
		err := a.walk(ctx, func(ctx context.Context, f archives.FileInfo) error {
			if !yield(entryFromFileInfo(f), nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(models.Entry{}, classifyReadError(err))
		}
	}
}

func (a *fileArchive) ExtractAll(ctx context.Context, destDir string) error {
	err := a.walk(ctx, func(ctx context.Context, f archives.FileInfo) error {
		return writeEntry(ctx, destDir, f)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return nil
}

// ExtractSubset writes every stored occurrence of each wanted path, so a path
// stored twice ends with the later content on disk, matching ExtractAll.
func (a *fileArchive) ExtractSubset(ctx context.Context, destDir string, paths []string) error {
	found := make(map[string]bool, len(paths))
	for _, p := range paths {
		found[p] = false
	}

	err := a.walk(ctx, func(ctx context.Context, f archives.FileInfo) error {
		if _, ok := found[f.NameInArchive]; !ok {
			return nil
		}
		if err := writeEntry(ctx, destDir, f); err != nil {
			return err
		}
		found[f.NameInArchive] = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	var missing []string
	for _, p := range paths {
		if !found[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %d path(s) not found in archive, first: %s", ErrExtraction, len(missing), missing[0])
	}
	return nil
}

func entryFromFileInfo(f archives.FileInfo) models.Entry {
	entry := models.Entry{
		Path:     f.NameInArchive,
		Modified: f.ModTime(),
		IsDir:    f.IsDir(),
	}
	if !entry.IsDir && f.Size() > 0 {
		entry.Size = uint64(f.Size())
	}
	return entry
}

func classifyReadError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
}
