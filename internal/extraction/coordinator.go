package extraction

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/rejaad/rearchive/internal/logging"
	"github.com/rejaad/rearchive/internal/metrics"
	"github.com/rejaad/rearchive/internal/reader"
	"github.com/rejaad/rearchive/pkg/models"
)

// MaxConcurrentOperations bounds archive reader operations across the process
const MaxConcurrentOperations = 2

const (
	opList    = "list"
	opExtract = "extract"
)

// Coordinator runs archive reader operations behind an admission gate and
// converts reader failures into ArchiveReadError or ExtractionError.
type Coordinator struct {
	opener   reader.Opener
	gate     *semaphore.Weighted
	inFlight atomic.Int64
	peak     atomic.Int64
	logger   *zap.Logger
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger used for operation outcomes
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a coordinator reading archives through opener
func NewCoordinator(opener reader.Opener, opts ...Option) *Coordinator {
	c := &Coordinator{
		opener: opener,
		gate:   semaphore.NewWeighted(MaxConcurrentOperations),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.L()
	}
	return c
}

// InFlight returns the number of operations currently inside the reader
func (c *Coordinator) InFlight() int64 {
	return c.inFlight.Load()
}

// PeakInFlight returns the highest concurrent operation count observed
func (c *Coordinator) PeakInFlight() int64 {
	return c.peak.Load()
}

func (c *Coordinator) loggerFor(ctx context.Context) *zap.Logger {
	if logger, ok := logging.FromContext(ctx); ok {
		return logger
	}
	return c.logger
}

// admit blocks until a slot is free. The returned release must be called exactly once.
func (c *Coordinator) admit(ctx context.Context, op string) (func(error), error) {
	start := time.Now()
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	metrics.OperationAdmitted(op, time.Since(start))

	n := c.inFlight.Add(1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	admitted := time.Now()
	return func(err error) {
		c.inFlight.Add(-1)
		metrics.OperationFinished(op, time.Since(admitted), err)
		c.gate.Release(1)
	}, nil
}

// ListContents enumerates the archive's entries. On failure it returns a nil
// slice and an *ArchiveReadError; partial listings are never returned.
func (c *Coordinator) ListContents(ctx context.Context, archivePath string) ([]models.Entry, error) {
	logger := c.loggerFor(ctx).With(zap.String("archive", archivePath))

	release, err := c.admit(ctx, opList)
	if err != nil {
		return nil, &ArchiveReadError{Path: archivePath, Err: err}
	}

	entries, err := c.list(ctx, archivePath)
	release(err)
	if err != nil {
		logger.Error("listing archive failed", zap.Error(err))
		return nil, &ArchiveReadError{Path: archivePath, Err: err}
	}

	metrics.EntriesListed(len(entries))
	logger.Debug("listed archive", zap.Int("entries", len(entries)))
	return entries, nil
}

func (c *Coordinator) list(ctx context.Context, archivePath string) (entries []models.Entry, err error) {
	defer recoverInto(&err)

	archive, err := c.opener.Open(ctx, archivePath)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	for entry, walkErr := range archive.Entries(ctx) {
		if walkErr != nil {
			return nil, walkErr
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Extract writes the archive's entries into destDir. A nil targets slice extracts
// everything; otherwise only the named entries are written. A non-nil empty slice
// is rejected with ErrEmptySelection.
func (c *Coordinator) Extract(ctx context.Context, archivePath, destDir string, targets []string) error {
	if targets != nil && len(targets) == 0 {
		return ErrEmptySelection
	}

	logger := c.loggerFor(ctx).With(
		zap.String("archive", archivePath),
		zap.String("dest", destDir),
	)

	release, err := c.admit(ctx, opExtract)
	if err != nil {
		return &ExtractionError{Path: archivePath, Dest: destDir, Err: err}
	}

	err = c.extract(logging.NewContext(ctx, logger), archivePath, destDir, targets)
	release(err)
	if err != nil {
		logger.Error("extraction failed", zap.Error(err))
		return &ExtractionError{Path: archivePath, Dest: destDir, Err: err}
	}

	logger.Info("extraction completed", zap.Int("targets", len(targets)))
	return nil
}

func (c *Coordinator) extract(ctx context.Context, archivePath, destDir string, targets []string) (err error) {
	defer recoverInto(&err)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	archive, err := c.opener.Open(ctx, archivePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	if targets == nil {
		return archive.ExtractAll(ctx, destDir)
	}
	return archive.ExtractSubset(ctx, destDir, targets)
}

// recoverInto turns a panic inside a format decoder into an error
func recoverInto(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("archive reader panicked: %v", r)
	}
}
