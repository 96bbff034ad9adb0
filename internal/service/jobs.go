package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
)

// DefaultJobRetention is how long a finished job stays queryable when no
// retention is configured.
const DefaultJobRetention = time.Hour

// JobTracker keeps bulk update jobs in memory and fans their progress out
// to subscribers. Subscribers only ever see copies. Finished jobs are
// dropped once they are older than the retention.
type JobTracker struct {
	mu        sync.RWMutex
	jobs      map[string]*domain.BulkJob
	subs      map[string][]chan domain.BulkJob
	retention time.Duration
	now       func() time.Time
}

// NewJobTracker creates a new job tracker. A non-positive retention falls
// back to DefaultJobRetention.
func NewJobTracker(retention time.Duration) *JobTracker {
	if retention <= 0 {
		retention = DefaultJobRetention
	}
	return &JobTracker{
		jobs:      make(map[string]*domain.BulkJob),
		subs:      make(map[string][]chan domain.BulkJob),
		retention: retention,
		now:       time.Now,
	}
}

// Create registers a running job.
func (t *JobTracker) Create(id, userID string, total int) domain.BulkJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	job := &domain.BulkJob{
		ID:        id,
		UserID:    userID,
		Status:    domain.JobStatusRunning,
		Total:     total,
		Results:   []domain.BulkItemResult{},
		StartedAt: t.now(),
	}
	t.jobs[id] = job
	return snapshot(job)
}

// Record appends the outcome of one item and notifies subscribers.
func (t *JobTracker) Record(id string, result domain.BulkItemResult) {
	t.update(id, func(job *domain.BulkJob) {
		job.Results = append(job.Results, result)
		job.Progress++
		if result.Status == domain.ItemStatusSuccess {
			job.Succeeded++
		} else {
			job.Failed++
		}
	})
}

// Finish moves the job to its terminal status: error when every item
// failed, complete otherwise.
func (t *JobTracker) Finish(id string) {
	t.update(id, func(job *domain.BulkJob) {
		job.Status = domain.JobStatusComplete
		if job.Total > 0 && job.Failed == job.Total {
			job.Status = domain.JobStatusError
		}
		job.CompletedAt = t.now()
	})
}

// update applies fn and notifies subscribers while still holding the lock,
// so Unsubscribe cannot close a channel mid-send. Sends never block.
func (t *JobTracker) update(id string, fn func(job *domain.BulkJob)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok {
		return
	}
	fn(job)
	snap := snapshot(job)

	for _, ch := range t.subs[id] {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Sweep drops finished jobs whose completion is older than the retention
// and returns how many were removed. Running jobs are never dropped.
func (t *JobTracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	cutoff := t.now().Add(-t.retention)
	removed := 0
	for id, job := range t.jobs {
		if job.Done() && job.CompletedAt.Before(cutoff) {
			delete(t.jobs, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (t *JobTracker) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Sweep(); n > 0 {
				slog.Debug("swept finished bulk jobs", "count", n)
			}
		}
	}
}

// Get returns a copy of the job.
func (t *JobTracker) Get(id string) (domain.BulkJob, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	job, ok := t.jobs[id]
	if !ok {
		return domain.BulkJob{}, port.ErrJobNotFound
	}
	return snapshot(job), nil
}

// Subscribe returns a channel that receives job updates.
func (t *JobTracker) Subscribe(id string) chan domain.BulkJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan domain.BulkJob, 32)
	t.subs[id] = append(t.subs[id], ch)
	return ch
}

// Unsubscribe removes a channel from subscribers and closes it.
func (t *JobTracker) Unsubscribe(id string, ch chan domain.BulkJob) {
	t.mu.Lock()
	defer t.mu.Unlock()
	subs := t.subs[id]
	for i, s := range subs {
		if s == ch {
			t.subs[id] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(t.subs[id]) == 0 {
		delete(t.subs, id)
	}
}

func snapshot(job *domain.BulkJob) domain.BulkJob {
	snap := *job
	snap.Results = append([]domain.BulkItemResult{}, job.Results...)
	return snap
}
