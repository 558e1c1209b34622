package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/software-catalog/internal/pkg/distlock"
	"github.com/ignite/software-catalog/internal/pkg/logger"
	"github.com/ignite/software-catalog/internal/service/catalogimport"
)

const (
	importLockTTL      = 5 * time.Minute
	importPollTimeout  = 5 * time.Second
	importErrorBackoff = 2 * time.Second
	progressSaveEvery  = 50
)

// Importer runs one batch through the import pipeline.
type Importer interface {
	Import(ctx context.Context, b catalogimport.Batch) (*catalogimport.Summary, error)
}

// ImportWorker drains the import queue. Several workers may run against the
// same Redis; a per-job lock makes sure each job runs once.
type ImportWorker struct {
	queue       *ImportQueue
	rdb         redis.Cmdable
	importer    Importer
	lockTTL     time.Duration
	pollTimeout time.Duration
}

// NewImportWorker creates a worker for queue.
func NewImportWorker(queue *ImportQueue, importer Importer) *ImportWorker {
	return &ImportWorker{
		queue:       queue,
		rdb:         queue.rdb,
		importer:    importer,
		lockTTL:     importLockTTL,
		pollTimeout: importPollTimeout,
	}
}

// Run processes jobs until ctx is cancelled.
func (w *ImportWorker) Run(ctx context.Context) error {
	logger.Info("import worker: started", "queue", ImportQueueKey)
	for {
		if ctx.Err() != nil {
			logger.Info("import worker: stopped")
			return nil
		}
		if _, err := w.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.Error("import worker: dequeue failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(importErrorBackoff):
			}
		}
	}
}

// runOnce waits for one job ID and processes it. It reports whether a job
// ID was taken from the queue.
func (w *ImportWorker) runOnce(ctx context.Context) (bool, error) {
	id, err := w.queue.next(ctx, w.pollTimeout)
	if err != nil || id == "" {
		return false, err
	}
	w.process(ctx, id)
	return true, nil
}

func (w *ImportWorker) process(ctx context.Context, id string) {
	lock := distlock.NewRedisLock(w.rdb, jobKey(id), w.lockTTL)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		logger.Error("import worker: lock failed", "job_id", id, "error", err)
		return
	}
	if !ok {
		logger.Info("import worker: job already being processed", "job_id", id)
		return
	}
	stop := lock.KeepAlive(ctx)
	defer func() {
		stop()
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("import worker: release failed", "job_id", id, "error", err)
		}
	}()

	job, err := w.queue.GetJob(ctx, id)
	if errors.Is(err, ErrJobNotFound) {
		logger.Warn("import worker: job expired before processing", "job_id", id)
		return
	}
	if err != nil {
		logger.Error("import worker: load job failed", "job_id", id, "error", err)
		return
	}
	if job.Status.Finished() || job.Status == JobRunning {
		logger.Info("import worker: skipping job", "job_id", id, "status", string(job.Status))
		return
	}

	// Progress writes must outlive a shutdown signal so the stored status
	// matches what the pipeline actually did.
	saveCtx := context.WithoutCancel(ctx)

	job.Status = JobRunning
	if err := w.queue.save(saveCtx, job); err != nil {
		logger.Error("import worker: save failed", "job_id", id, "error", err)
		return
	}

	batch := catalogimport.Batch{
		Rows:       job.Rows,
		ActorID:    job.ActorID,
		Source:     catalogimport.SourceAsync,
		HeaderRows: job.HeaderRows,
		Lines:      job.Lines,
		OnProgress: w.progressSaver(saveCtx, job),
	}
	started := time.Now()
	sum, err := w.importer.Import(ctx, batch)

	job.Rows = nil
	job.Lines = nil
	if err != nil {
		job.Status = JobFailed
		job.State = catalogimport.StateFailed.String()
		job.Error = err.Error()
		logger.Warn("import worker: job failed", "job_id", id, "error", err)
	} else {
		resp := sum.Response()
		job.Status = JobDone
		job.State = catalogimport.StateDone.String()
		job.Processed = sum.Total
		job.Result = &resp
		logger.Info("import worker: job done", "job_id", id,
			"imported", sum.Imported, "total", sum.Total, "duration", time.Since(started))
	}
	if err := w.queue.save(saveCtx, job); err != nil {
		logger.Error("import worker: save result failed", "job_id", id, "error", err)
	}
}

// progressSaver persists progress on every state change and every
// progressSaveEvery rows.
func (w *ImportWorker) progressSaver(ctx context.Context, job *ImportJob) func(catalogimport.Progress) {
	lastState := ""
	return func(p catalogimport.Progress) {
		state := p.State.String()
		job.State = state
		job.Processed = p.Processed
		job.Total = p.Total
		if state == lastState && p.Processed%progressSaveEvery != 0 {
			return
		}
		lastState = state
		if err := w.queue.save(ctx, job); err != nil {
			logger.Warn("import worker: progress save failed", "job_id", job.ID, "error", err)
		}
	}
}
