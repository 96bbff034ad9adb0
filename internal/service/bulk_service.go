package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BulkUpdateService applies one PATCH to many incarnations in a background
// job.
type BulkUpdateService struct {
	tracker     *JobTracker
	events      *EventBus
	concurrency int
	itemTimeout time.Duration
}

// NewBulkUpdateService creates the service. concurrency bounds the PATCH
// requests in flight per job.
func NewBulkUpdateService(tracker *JobTracker, events *EventBus, concurrency int) *BulkUpdateService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BulkUpdateService{
		tracker:     tracker,
		events:      events,
		concurrency: concurrency,
		itemTimeout: 2 * time.Minute,
	}
}

// Start validates req, registers the job and returns its id. The PATCHes
// run after Start returns, detached from the caller's request.
func (s *BulkUpdateService) Start(api port.IncarnationAPI, userID string, req domain.BulkUpdateRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	ids := req.UniqueIDs()
	jobID := uuid.NewString()
	s.tracker.Create(jobID, userID, len(ids))

	slog.Info("bulk update started", "job_id", jobID, "user_id", userID, "count", len(ids))
	go s.run(jobID, api, userID, ids, req.Patch())

	return jobID, nil
}

// Wait blocks until the job is finished or ctx is done.
func (s *BulkUpdateService) Wait(ctx context.Context, jobID string) (domain.BulkJob, error) {
	ch := s.tracker.Subscribe(jobID)
	defer s.tracker.Unsubscribe(jobID, ch)

	for {
		job, err := s.tracker.Get(jobID)
		if err != nil {
			return domain.BulkJob{}, err
		}
		if job.Done() {
			return job, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return job, ctx.Err()
		}
	}
}

func (s *BulkUpdateService) run(jobID string, api port.IncarnationAPI, userID string, ids []int, patch domain.PatchIncarnationRequest) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			s.tracker.Record(jobID, s.apply(api, userID, id, patch))
			return nil
		})
	}
	_ = g.Wait()

	s.tracker.Finish(jobID)
	job, _ := s.tracker.Get(jobID)
	slog.Info("bulk update finished", "job_id", jobID, "status", job.Status,
		"succeeded", job.Succeeded, "failed", job.Failed)
}

// apply patches one incarnation. A failure is recorded, never returned.
func (s *BulkUpdateService) apply(api port.IncarnationAPI, userID string, id int, patch domain.PatchIncarnationRequest) domain.BulkItemResult {
	ctx, cancel := context.WithTimeout(context.Background(), s.itemTimeout)
	defer cancel()

	inc, err := api.PatchIncarnation(ctx, id, patch)
	if err != nil {
		slog.Warn("bulk update item failed", "incarnation_id", id, "error", err)
		return domain.BulkItemResult{IncarnationID: id, Status: domain.ItemStatusFailed, Error: err.Error()}
	}

	if s.events != nil {
		s.events.Publish(domain.IncarnationEvent{IncarnationID: id, Action: domain.IncarnationActionUpdated, UserID: userID})
	}

	result := domain.BulkItemResult{IncarnationID: id, Status: domain.ItemStatusSuccess}
	if inc != nil {
		result.CommitSha = inc.CommitSha
		result.MergeRequestURL = domain.StringValue(inc.MergeRequestURL)
	}
	return result
}
