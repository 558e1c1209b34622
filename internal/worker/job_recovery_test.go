package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/software-catalog/internal/datanorm"
	"github.com/ignite/software-catalog/internal/pkg/distlock"
)

func setupRecovery(t *testing.T) (*ImportQueue, *JobRecoveryWorker) {
	t.Helper()
	q, _, _, _ := setupWorker(t, &fakeImporter{})
	jr := NewJobRecoveryWorker(q, time.Minute, 10*time.Minute)
	jr.now = func() time.Time { return time.Now().Add(time.Hour) }
	return q, jr
}

// popped simulates a worker that took the ID off the queue and died.
func popped(t *testing.T, q *ImportQueue, status JobStatus) *ImportJob {
	t.Helper()
	ctx := context.Background()
	job, err := q.Enqueue(ctx, []datanorm.Row{{"name": "Moodle"}, {"name": "Nextcloud"}}, "admin@example.org", 0, nil)
	require.NoError(t, err)
	_, err = q.rdb.LRem(ctx, ImportQueueKey, 0, job.ID).Result()
	require.NoError(t, err)
	if status != JobPending {
		job.Status = status
		job.Processed = 1
		require.NoError(t, q.save(ctx, job))
	}
	return job
}

func TestSweep_FailsInterruptedRunningJob(t *testing.T) {
	q, jr := setupRecovery(t)
	job := popped(t, q, JobRunning)

	stats, err := jr.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecoveryStats{Scanned: 1, Failed: 1}, stats)

	got, err := q.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, got.Status)
	assert.Equal(t, "failed", got.State)
	assert.Contains(t, got.Error, "after 1 of 2 rows")
	assert.Empty(t, got.Rows)

	n, err := q.rdb.LLen(context.Background(), ImportQueueKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n, "interrupted jobs are never re-run")
}

func TestSweep_RequeuesLostPendingJob(t *testing.T) {
	q, jr := setupRecovery(t)
	job := popped(t, q, JobPending)

	stats, err := jr.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Requeued)

	ids, err := q.rdb.LRange(context.Background(), ImportQueueKey, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{job.ID}, ids)

	got, err := q.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobPending, got.Status)
	assert.Equal(t, 1, got.Requeued)
	assert.Len(t, got.Rows, 2)

	// Already queued now, so a second sweep leaves it alone.
	stats, err = jr.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Requeued)
}

func TestSweep_GivesUpAfterMaxRequeues(t *testing.T) {
	q, jr := setupRecovery(t)
	job := popped(t, q, JobPending)
	job.Requeued = MaxRequeues
	require.NoError(t, q.save(context.Background(), job))

	stats, err := jr.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)

	got, err := q.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, got.Status)
	assert.Contains(t, got.Error, "could not be started")
}

func TestSweep_LeavesHealthyJobsAlone(t *testing.T) {
	q, jr := setupRecovery(t)
	ctx := context.Background()

	queued, err := q.Enqueue(ctx, []datanorm.Row{{"name": "a"}}, "a", 0, nil)
	require.NoError(t, err)

	locked := popped(t, q, JobRunning)
	lock := distlock.NewRedisLock(q.rdb, jobKey(locked.ID), time.Minute)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	done := popped(t, q, JobDone)

	stats, err := jr.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, RecoveryStats{Scanned: 3}, stats)

	for id, want := range map[string]JobStatus{queued.ID: JobPending, locked.ID: JobRunning, done.ID: JobDone} {
		got, err := q.GetJob(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}
}

func TestSweep_RecentJobsAreNotStale(t *testing.T) {
	q, jr := setupRecovery(t)
	jr.now = time.Now
	popped(t, q, JobRunning)

	stats, err := jr.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecoveryStats{Scanned: 1}, stats)
}
