package reader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mholt/archives"
	"go.uber.org/zap"

	"github.com/rejaad/rearchive/internal/logging"
)

const bufferSize = 64 * 1024

var chtimes = os.Chtimes

// writeEntry materializes one archive entry below destDir, overwriting existing files.
// A modification time that cannot be applied is logged and does not fail the entry.
func writeEntry(ctx context.Context, destDir string, f archives.FileInfo) error {
	targetPath := filepath.Clean(filepath.Join(destDir, filepath.FromSlash(f.NameInArchive)))

	root := filepath.Clean(destDir) + string(os.PathSeparator)
	if !strings.HasPrefix(targetPath+string(os.PathSeparator), root) {
		return fmt.Errorf("path traversal detected: %s", f.NameInArchive)
	}

	if f.IsDir() {
		if err := os.MkdirAll(targetPath, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		return nil
	}

	// Symlinks are not materialized
	if f.Mode()&os.ModeSymlink != 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directories: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s in archive: %w", f.NameInArchive, err)
	}
	defer src.Close()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	dst, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create target file: %w", err)
	}

	if _, err := io.CopyBuffer(dst, src, make([]byte, bufferSize)); err != nil {
		dst.Close()
		return fmt.Errorf("failed to copy %s: %w", f.NameInArchive, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", targetPath, err)
	}

	if mod := f.ModTime(); !mod.IsZero() {
		if err := chtimes(targetPath, time.Now(), mod); err != nil {
			logging.WithContext(ctx).Debug("failed to set modification time",
				zap.String("path", targetPath),
				zap.Error(err),
			)
		}
	}
	return nil
}
