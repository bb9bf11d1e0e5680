package models

import (
	"fmt"
	"time"
)

// Entry represents one record listed by an archive reader
type Entry struct {
	Path     string    // Slash-separated path relative to the archive root
	Size     uint64    // Uncompressed size in bytes, zero for directories
	Modified time.Time // Zero when the format does not record it
	IsDir    bool      // Directory record (zip and tar store these explicitly)
}

// ArchiveSummary holds aggregated statistics for an archive's entries
type ArchiveSummary struct {
	ArchivePath string
	FileCount   int64
	DirCount    int64
	TotalBytes  int64
	Newest      time.Time
	TopLevel    []FolderUsage // Sorted by bytes, largest first
}

// FolderUsage is the space used under one top-level folder
type FolderUsage struct {
	Name      string // "" for files stored at the archive root
	FileCount int64
	Bytes     int64
}

// FormatBytes renders n using binary units, e.g. "1.5 KiB". Negative counts render as "0 B".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return FormatSize(uint64(n))
}

// FormatSize renders an entry size using binary units
func FormatSize(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for q := n / unit; q >= unit; q /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
