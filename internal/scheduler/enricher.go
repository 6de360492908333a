package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/logger"
	"github.com/MrSnakeDoc/doodl/internal/metadata"
)

// EnrichJob asks for the metadata of one freshly created bookmark.
type EnrichJob struct {
	Scope      domain.Scope
	BookmarkID string
	URL        string
	// Rev is the metadata revision the bookmark had when the job was scheduled.
	Rev int64
}

// MetadataWriter applies an extraction result to a stored bookmark.
type MetadataWriter interface {
	ApplyMetadata(ctx context.Context, scope domain.Scope, id string, rev int64, md domain.Metadata) (bool, error)
}

// Enricher runs metadata extraction for new bookmarks on a fixed pool of workers
type Enricher struct {
	source  metadata.Source
	store   MetadataWriter
	logger  logger.Logger
	workers int
	queue   chan EnrichJob
	stopCh  chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup

	// drainCtx bounds the jobs still queued at Stop. Written before stopCh closes.
	drainCtx context.Context
}

// NewEnricher creates an enricher with a bounded queue
func NewEnricher(
	source metadata.Source,
	store MetadataWriter,
	log logger.Logger,
	workers int,
	queueSize int,
) *Enricher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Enricher{
		source:  source,
		store:   store,
		logger:  log,
		workers: workers,
		queue:   make(chan EnrichJob, queueSize),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the workers. Jobs run detached from ctx cancellation so a
// shutdown signal does not abort them; Stop decides how long they may take.
func (e *Enricher) Start(ctx context.Context) error {
	base := context.WithoutCancel(ctx)
	for range e.workers {
		e.wg.Add(1)
		go e.work(base)
	}

	e.logger.Info("metadata enricher started",
		logger.Int("workers", e.workers),
		logger.Int("queue_size", cap(e.queue)))
	return nil
}

func (e *Enricher) work(ctx context.Context) {
	defer e.wg.Done()
	for {
		select {
		case job := <-e.queue:
			e.run(ctx, job)
		case <-e.stopCh:
			e.drain()
			return
		}
	}
}

func (e *Enricher) drain() {
	for {
		select {
		case job := <-e.queue:
			e.run(e.drainCtx, job)
		default:
			return
		}
	}
}

// Stop refuses new jobs, runs the ones already queued and waits for the
// workers. Once ctx is done, remaining jobs fail fast and Stop returns.
func (e *Enricher) Stop(ctx context.Context) {
	e.stopped.Do(func() {
		e.drainCtx = ctx
		close(e.stopCh)
	})

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		e.logger.Warn("enricher stop deadline reached",
			logger.Int("pending", len(e.queue)))
	}
}

// Schedule queues a job without blocking. A full queue drops the job and the
// bookmark keeps its stub metadata.
func (e *Enricher) Schedule(job EnrichJob) bool {
	select {
	case <-e.stopCh:
		return false
	default:
	}

	select {
	case e.queue <- job:
		return true
	default:
		e.logger.Warn("enrichment queue full, dropping job",
			logger.String("bookmark_id", job.BookmarkID))
		return false
	}
}

// Pending returns the number of queued jobs.
func (e *Enricher) Pending() int {
	return len(e.queue)
}

func (e *Enricher) run(ctx context.Context, job EnrichJob) {
	start := time.Now()
	md := e.source.Extract(ctx, job.URL)

	applied, err := e.store.ApplyMetadata(ctx, job.Scope, job.BookmarkID, job.Rev, md)
	if err != nil {
		e.logger.Warn("failed to apply metadata",
			logger.String("bookmark_id", job.BookmarkID),
			logger.Error(err))
		return
	}
	if !applied {
		e.logger.Debug("metadata discarded, bookmark changed meanwhile",
			logger.String("bookmark_id", job.BookmarkID))
		return
	}

	e.logger.Debug("bookmark enriched",
		logger.String("bookmark_id", job.BookmarkID),
		logger.Bool("fetched", md.Fetched),
		logger.Duration("took", time.Since(start)))
}
