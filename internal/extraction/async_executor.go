package extraction

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rejaad/rearchive/internal/logging"
	"github.com/rejaad/rearchive/pkg/models"
)

// Operation identifies the kind of background task
type Operation int

const (
	OpList Operation = iota
	OpExtract
)

func (o Operation) String() string {
	if o == OpExtract {
		return opExtract
	}
	return opList
}

// Event is a progress or completion report from a background task.
// Events are immutable once sent.
type Event struct {
	RequestID   string
	Op          Operation
	ArchivePath string
	DestDir     string
	Targets     []string       // nil when extracting everything
	Progress    float64        // 0 at start, 100 at completion
	Done        bool           // completion event
	Entries     []models.Entry // list results
	Err         error
}

// Executor runs coordinator operations on short-lived goroutines and hands the
// results back over a single events channel
type Executor struct {
	coord     *Coordinator
	ctx       context.Context
	cancel    context.CancelFunc
	events    chan Event
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewExecutor creates a new executor
func NewExecutor(coord *Coordinator) *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Executor{
		coord:  coord,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 16),
	}
}

// Events returns the channel all task events are delivered on
func (e *Executor) Events() <-chan Event {
	return e.events
}

// Close stops accepting work and cancels tasks still waiting or running
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		e.cancel()
	})
}

// Wait blocks until every submitted task has finished
func (e *Executor) Wait() {
	e.wg.Wait()
}

// SubmitList starts listing an archive and returns the request ID,
// or "" once the executor is closed
func (e *Executor) SubmitList(archivePath string) string {
	return e.submit(Event{Op: OpList, ArchivePath: archivePath})
}

// SubmitExtract starts an extraction and returns the request ID.
// A nil targets slice extracts every entry.
func (e *Executor) SubmitExtract(archivePath, destDir string, targets []string) string {
	return e.submit(Event{Op: OpExtract, ArchivePath: archivePath, DestDir: destDir, Targets: targets})
}

func (e *Executor) submit(req Event) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return ""
	}

	req.RequestID = uuid.New().String()
	e.wg.Add(1)
	go e.run(req)
	return req.RequestID
}

// run executes one task, reporting 0% before touching the coordinator and 100% after
func (e *Executor) run(req Event) {
	defer e.wg.Done()

	ctx := logging.WithRequestID(logging.NewContext(e.ctx, e.coord.logger), req.RequestID)
	logging.WithContext(ctx).Debug("task started",
		zap.String("op", req.Op.String()),
		zap.String("archive", req.ArchivePath),
	)

	started := req
	started.Progress = 0
	if !e.send(started) {
		return
	}

	done := req
	done.Done = true
	done.Progress = 100
	switch req.Op {
	case OpList:
		done.Entries, done.Err = e.coord.ListContents(ctx, req.ArchivePath)
	case OpExtract:
		done.Err = e.coord.Extract(ctx, req.ArchivePath, req.DestDir, req.Targets)
	}
	e.send(done)
}

func (e *Executor) send(ev Event) bool {
	select {
	case e.events <- ev:
		return true
	case <-e.ctx.Done():
		return false
	}
}

// ListContentsAsync lists an archive on its own goroutine. The channel receives
// exactly one result unless ctx is cancelled first.
func (c *Coordinator) ListContentsAsync(ctx context.Context, archivePath string) <-chan Event {
	resultChan := make(chan Event, 1)

	go func() {
		defer close(resultChan)

		entries, err := c.ListContents(ctx, archivePath)
		select {
		case resultChan <- Event{Op: OpList, ArchivePath: archivePath, Done: true, Progress: 100, Entries: entries, Err: err}:
		case <-ctx.Done():
		}
	}()

	return resultChan
}
