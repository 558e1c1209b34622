package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/software-catalog/internal/datanorm"
	"github.com/ignite/software-catalog/internal/service/catalogimport"
)

// Redis keys for asynchronous catalog imports.
const (
	ImportQueueKey     = "catalog_import:queue"
	importJobKeyPrefix = "catalog_import:job:"
	DefaultJobTTL      = 24 * time.Hour
)

// ErrJobNotFound is returned for unknown or expired job IDs.
var ErrJobNotFound = errors.New("import job not found")

// JobStatus is the lifecycle of an async import job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Finished reports whether the job reached a terminal status.
func (s JobStatus) Finished() bool { return s == JobDone || s == JobFailed }

// ImportJob is the document stored under catalog_import:job:<id>. Rows are
// dropped once the job finishes.
type ImportJob struct {
	ID         string                  `json:"jobId"`
	Status     JobStatus               `json:"status"`
	ActorID    string                  `json:"actorId"`
	HeaderRows int                     `json:"headerRows,omitempty"`
	Rows       []datanorm.Row          `json:"rows,omitempty"`
	Lines      []int                   `json:"lines,omitempty"`
	State      string                  `json:"state,omitempty"`
	Processed  int                     `json:"processed"`
	Total      int                     `json:"total"`
	Result     *catalogimport.Response `json:"result,omitempty"`
	Error      string                  `json:"error,omitempty"`
	Requeued   int                     `json:"requeued,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
	UpdatedAt  time.Time               `json:"updatedAt"`
}

// View is the job without its row payload, for status responses.
func (j *ImportJob) View() ImportJob {
	v := *j
	v.Rows = nil
	v.Lines = nil
	return v
}

// ImportQueue stores jobs in Redis and hands their IDs to workers through a
// list.
type ImportQueue struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewImportQueue creates a queue whose job documents expire after ttl.
func NewImportQueue(rdb redis.Cmdable, ttl time.Duration) *ImportQueue {
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	return &ImportQueue{rdb: rdb, ttl: ttl}
}

func jobKey(id string) string { return importJobKeyPrefix + id }

// Enqueue stores a pending job and pushes its ID onto the queue. lines is
// optional; see catalogimport.Batch.Lines.
func (q *ImportQueue) Enqueue(ctx context.Context, rows []datanorm.Row, actorID string, headerRows int, lines []int) (*ImportJob, error) {
	now := time.Now().UTC()
	job := &ImportJob{
		ID:         uuid.New().String(),
		Status:     JobPending,
		ActorID:    actorID,
		HeaderRows: headerRows,
		Rows:       rows,
		Lines:      lines,
		Total:      len(rows),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := q.save(ctx, job); err != nil {
		return nil, err
	}
	if err := q.rdb.RPush(ctx, ImportQueueKey, job.ID).Err(); err != nil {
		return nil, fmt.Errorf("enqueue import job: %w", err)
	}
	return job, nil
}

// GetJob loads a job document.
func (q *ImportQueue) GetJob(ctx context.Context, id string) (*ImportJob, error) {
	data, err := q.rdb.Get(ctx, jobKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import job: %w", err)
	}
	var job ImportJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode import job %s: %w", id, err)
	}
	return &job, nil
}

func (q *ImportQueue) save(ctx context.Context, job *ImportJob) error {
	job.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode import job: %w", err)
	}
	if err := q.rdb.Set(ctx, jobKey(job.ID), data, q.ttl).Err(); err != nil {
		return fmt.Errorf("save import job: %w", err)
	}
	return nil
}

// next blocks up to timeout for a job ID. It returns "" when none arrived.
func (q *ImportQueue) next(ctx context.Context, timeout time.Duration) (string, error) {
	res, err := q.rdb.BLPop(ctx, timeout, ImportQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	// BLPOP replies with [key, value].
	if len(res) != 2 {
		return "", fmt.Errorf("unexpected BLPOP reply %v", res)
	}
	return res[1], nil
}
