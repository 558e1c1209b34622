package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/software-catalog/internal/pkg/distlock"
	"github.com/ignite/software-catalog/internal/pkg/logger"
	"github.com/ignite/software-catalog/internal/service/catalogimport"
)

// If a worker dies mid-job, the job document stays "running" until its TTL
// runs out, and a job whose ID was popped but never started stays "pending"
// without being on the queue. The recovery worker finds both:
//
//   - stale running jobs are failed. Rows before the crash may already be
//     written, so the batch is never run a second time.
//   - stale pending jobs missing from the queue are pushed back, at most
//     MaxRequeues times, then failed.
const (
	DefaultRecoveryInterval = 2 * time.Minute
	DefaultStaleAge         = 10 * time.Minute
	MaxRequeues             = 3
)

// RecoveryStats counts what one sweep changed.
type RecoveryStats struct {
	Scanned  int
	Requeued int
	Failed   int
}

// JobRecoveryWorker periodically sweeps job documents for abandoned jobs.
type JobRecoveryWorker struct {
	queue    *ImportQueue
	rdb      redis.Cmdable
	interval time.Duration
	staleAge time.Duration
	now      func() time.Time
}

// NewJobRecoveryWorker creates a recovery worker. Zero durations use the
// defaults.
func NewJobRecoveryWorker(queue *ImportQueue, interval, staleAge time.Duration) *JobRecoveryWorker {
	if interval <= 0 {
		interval = DefaultRecoveryInterval
	}
	if staleAge <= 0 {
		staleAge = DefaultStaleAge
	}
	return &JobRecoveryWorker{
		queue:    queue,
		rdb:      queue.rdb,
		interval: interval,
		staleAge: staleAge,
		now:      time.Now,
	}
}

// Start sweeps every interval until ctx is cancelled.
func (jr *JobRecoveryWorker) Start(ctx context.Context) {
	logger.Info("job recovery: started", "interval", jr.interval.String(), "stale_age", jr.staleAge.String())
	ticker := time.NewTicker(jr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("job recovery: stopped")
			return
		case <-ticker.C:
			stats, err := jr.Sweep(ctx)
			if err != nil {
				logger.Error("job recovery: sweep failed", "error", err)
				continue
			}
			if stats.Requeued > 0 || stats.Failed > 0 {
				logger.Info("job recovery: sweep done",
					"scanned", stats.Scanned, "requeued", stats.Requeued, "failed", stats.Failed)
			}
		}
	}
}

// Sweep runs one recovery pass.
func (jr *JobRecoveryWorker) Sweep(ctx context.Context) (RecoveryStats, error) {
	var stats RecoveryStats

	queued, err := jr.queuedIDs(ctx)
	if err != nil {
		return stats, err
	}

	iter := jr.rdb.Scan(ctx, 0, importJobKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(importJobKeyPrefix):]
		stats.Scanned++
		if queued[id] {
			continue
		}
		switch jr.recover(ctx, id) {
		case JobPending:
			stats.Requeued++
		case JobFailed:
			stats.Failed++
		}
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("scan import jobs: %w", err)
	}
	return stats, nil
}

func (jr *JobRecoveryWorker) queuedIDs(ctx context.Context) (map[string]bool, error) {
	ids, err := jr.rdb.LRange(ctx, ImportQueueKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read import queue: %w", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// recover handles one job under its lock and returns the status it set,
// or "" when the job was left alone.
func (jr *JobRecoveryWorker) recover(ctx context.Context, id string) JobStatus {
	// A held lock means a live worker owns the job.
	lock := distlock.NewRedisLock(jr.rdb, jobKey(id), time.Minute)
	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		return ""
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("job recovery: release failed", "job_id", id, "error", err)
		}
	}()

	job, err := jr.queue.GetJob(ctx, id)
	if err != nil {
		return ""
	}
	if job.Status.Finished() || jr.now().Sub(job.UpdatedAt) < jr.staleAge {
		return ""
	}

	switch {
	case job.Status == JobRunning:
		jr.fail(ctx, job, fmt.Sprintf("import interrupted after %d of %d rows; check the catalog before importing again", job.Processed, job.Total))
		return JobFailed
	case job.Requeued >= MaxRequeues:
		jr.fail(ctx, job, fmt.Sprintf("job could not be started after %d attempts", job.Requeued+1))
		return JobFailed
	}

	job.Requeued++
	if err := jr.queue.save(ctx, job); err != nil {
		logger.Error("job recovery: save failed", "job_id", id, "error", err)
		return ""
	}
	if err := jr.rdb.RPush(ctx, ImportQueueKey, id).Err(); err != nil {
		logger.Error("job recovery: requeue failed", "job_id", id, "error", err)
		return ""
	}
	logger.Warn("job recovery: requeued pending job", "job_id", id, "attempt", job.Requeued)
	return JobPending
}

func (jr *JobRecoveryWorker) fail(ctx context.Context, job *ImportJob, msg string) {
	job.Status = JobFailed
	job.State = catalogimport.StateFailed.String()
	job.Error = msg
	job.Rows = nil
	if err := jr.queue.save(ctx, job); err != nil {
		logger.Error("job recovery: save failed", "job_id", job.ID, "error", err)
		return
	}
	logger.Warn("job recovery: job failed", "job_id", job.ID, "reason", msg)
}
