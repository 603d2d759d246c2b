package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Queue manages job persistence and dispatching. A single worker
// drains the queue, so audits run strictly one at a time.
type Queue struct {
	db       *sql.DB
	mu       sync.RWMutex
	pending  chan string // job IDs to process
	cancels  map[string]context.CancelFunc
	handlers map[JobType]JobHandler
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewQueue creates and starts a new job queue
func NewQueue(db *sql.DB) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		db:       db,
		pending:  make(chan string, 100),
		cancels:  make(map[string]context.CancelFunc),
		handlers: make(map[JobType]JobHandler),
		ctx:      ctx,
		cancel:   cancel,
	}

	// Resume any pending/running jobs from DB on startup
	go q.resumeJobs()

	// Single worker: one audit at a time
	go q.worker()

	return q
}

// RegisterHandler registers a handler for a job type
func (q *Queue) RegisterHandler(jobType JobType, handler JobHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = handler
}

// Enqueue creates a new job and adds it to the queue
func (q *Queue) Enqueue(jobType JobType, videoURL string, params interface{}) (*Job, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	j := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    StatusPending,
		VideoURL:  videoURL,
		Params:    paramsJSON,
		CreatedAt: time.Now(),
	}

	_, err = q.db.Exec(`
		INSERT INTO jobs (id, type, status, video_url, params, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		j.ID, j.Type, j.Status, j.VideoURL, string(j.Params), j.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	select {
	case q.pending <- j.ID:
	default:
		log.Printf("[job] queue full, job %s will be picked up on next restart", j.ID)
	}

	return j, nil
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(id string) (*Job, error) {
	j := &Job{}
	var params, result, errMsg sql.NullString
	var startedAt, completedAt sql.NullTime

	err := q.db.QueryRow(`
		SELECT id, type, status, video_url, params, result, error, created_at, started_at, completed_at
		FROM jobs WHERE id = ?`, id,
	).Scan(&j.ID, &j.Type, &j.Status, &j.VideoURL, &params,
		&result, &errMsg, &j.CreatedAt, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if params.Valid {
		j.Params = json.RawMessage(params.String)
	}
	if result.Valid {
		j.Result = json.RawMessage(result.String)
	}
	if errMsg.Valid {
		j.Error = errMsg.String
	}
	if startedAt.Valid {
		j.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		j.CompletedAt = &completedAt.Time
	}

	return j, nil
}

// ListJobs returns all jobs ordered by creation time (newest first)
func (q *Queue) ListJobs() ([]*Job, error) {
	rows, err := q.db.Query(`
		SELECT id, type, status, video_url, params, result, error, created_at, started_at, completed_at
		FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j := &Job{}
		var params, result, errMsg sql.NullString
		var startedAt, completedAt sql.NullTime

		if err := rows.Scan(&j.ID, &j.Type, &j.Status, &j.VideoURL, &params,
			&result, &errMsg, &j.CreatedAt, &startedAt, &completedAt); err != nil {
			return nil, err
		}

		if params.Valid {
			j.Params = json.RawMessage(params.String)
		}
		if result.Valid {
			j.Result = json.RawMessage(result.String)
		}
		if errMsg.Valid {
			j.Error = errMsg.String
		}
		if startedAt.Valid {
			j.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			j.CompletedAt = &completedAt.Time
		}

		jobs = append(jobs, j)
	}

	return jobs, nil
}

// CancelJob cancels a pending or running job
func (q *Queue) CancelJob(id string) error {
	q.mu.Lock()
	if cancelFn, ok := q.cancels[id]; ok {
		cancelFn()
		delete(q.cancels, id)
	}
	q.mu.Unlock()

	_, err := q.db.Exec(`
		UPDATE jobs SET status = ?, completed_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		StatusCancelled, time.Now(), id, StatusPending, StatusRunning,
	)
	return err
}

// Stop shuts down the queue
func (q *Queue) Stop() {
	q.cancel()
}

// worker processes jobs from the pending channel one at a time
func (q *Queue) worker() {
	for {
		select {
		case <-q.ctx.Done():
			return
		case jobID := <-q.pending:
			q.processJob(jobID)
		}
	}
}

// processJob runs a single job
func (q *Queue) processJob(jobID string) {
	j, err := q.GetJob(jobID)
	if err != nil {
		log.Printf("[job] failed to load job %s: %v", jobID, err)
		return
	}

	// Skip if not pending (e.g. cancelled while queued)
	if j.Status != StatusPending {
		return
	}

	q.mu.RLock()
	handler, ok := q.handlers[j.Type]
	q.mu.RUnlock()

	if !ok {
		log.Printf("[job] no handler for job type %s", j.Type)
		q.failJob(j, fmt.Sprintf("no handler for job type: %s", j.Type))
		return
	}

	// Mark as running
	now := time.Now()
	j.StartedAt = &now
	j.Status = StatusRunning
	q.db.Exec("UPDATE jobs SET status = ?, started_at = ? WHERE id = ?",
		StatusRunning, now, j.ID)

	// Cancellable context so a long-running external call can be
	// aborted from the API
	ctx, cancelFn := context.WithCancel(q.ctx)
	q.mu.Lock()
	q.cancels[j.ID] = cancelFn
	q.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- handler(ctx, j)
	}()

	select {
	case <-ctx.Done():
		log.Printf("[job] job %s cancelled", j.ID)
	case err := <-done:
		if err != nil {
			q.failJob(j, err.Error())
		} else {
			q.completeJob(j)
		}
	}

	q.mu.Lock()
	delete(q.cancels, j.ID)
	q.mu.Unlock()
	cancelFn()
}

func (q *Queue) completeJob(j *Job) {
	now := time.Now()
	var result any
	if j.Result != nil {
		result = string(j.Result)
	}
	q.db.Exec("UPDATE jobs SET status = ?, result = ?, completed_at = ? WHERE id = ?",
		StatusCompleted, result, now, j.ID)
	log.Printf("[job] job %s completed", j.ID)
}

func (q *Queue) failJob(j *Job, errMsg string) {
	now := time.Now()
	q.db.Exec("UPDATE jobs SET status = ?, error = ?, completed_at = ? WHERE id = ?",
		StatusFailed, errMsg, now, j.ID)
	log.Printf("[job] job %s failed: %s", j.ID, errMsg)
}

// resumeJobs re-queues any pending jobs found in DB on startup
func (q *Queue) resumeJobs() {
	// Mark any previously "running" jobs as pending (server restarted)
	q.db.Exec("UPDATE jobs SET status = ? WHERE status = ?", StatusPending, StatusRunning)

	rows, err := q.db.Query("SELECT id FROM jobs WHERE status = ? ORDER BY created_at ASC", StatusPending)
	if err != nil {
		log.Printf("[job] failed to resume jobs: %v", err)
		return
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		select {
		case q.pending <- id:
			count++
		default:
		}
	}

	if count > 0 {
		log.Printf("[job] resumed %d pending jobs", count)
	}
}
