package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"github.com/arturoeanton/foxops-dashboard/internal/port/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func waitJob(t *testing.T, svc *BulkUpdateService, id string) domain.BulkJob {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	job, err := svc.Wait(ctx, id)
	require.NoError(t, err)
	return job
}

func TestBulkUpdateService_PartialFailure(t *testing.T) {
	api := new(mocks.IncarnationAPI)
	req := domain.BulkUpdateRequest{IncarnationIDs: []int{1, 2, 3, 2}, RequestedVersion: strPtr("v2.0.0")}
	patch := req.Patch()

	api.On("PatchIncarnation", mock.Anything, 1, patch).Return(&domain.Incarnation{ID: 1, CommitSha: "abc"}, nil)
	api.On("PatchIncarnation", mock.Anything, 2, patch).Return(nil, errors.New("conflict"))
	api.On("PatchIncarnation", mock.Anything, 3, patch).Return(&domain.Incarnation{ID: 3, MergeRequestURL: strPtr("https://mr/3")}, nil)

	svc := NewBulkUpdateService(NewJobTracker(time.Hour), NewEventBus(), 2)
	jobID, err := svc.Start(api, "u-1", req)
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	job := waitJob(t, svc, jobID)
	assert.Equal(t, domain.JobStatusComplete, job.Status)
	assert.Equal(t, 3, job.Total)
	assert.Equal(t, 3, job.Progress)
	assert.Equal(t, 2, job.Succeeded)
	assert.Equal(t, 1, job.Failed)
	api.AssertNumberOfCalls(t, "PatchIncarnation", 3)

	byID := map[int]domain.BulkItemResult{}
	for _, r := range job.Results {
		byID[r.IncarnationID] = r
	}
	assert.Equal(t, "abc", byID[1].CommitSha)
	assert.Equal(t, "conflict", byID[2].Error)
	assert.Equal(t, "https://mr/3", byID[3].MergeRequestURL)
}

func TestBulkUpdateService_AllFailed(t *testing.T) {
	api := new(mocks.IncarnationAPI)
	api.On("PatchIncarnation", mock.Anything, mock.Anything, mock.Anything).Return(nil, port.ErrIncarnationNotFound)

	svc := NewBulkUpdateService(NewJobTracker(time.Hour), nil, 4)
	jobID, err := svc.Start(api, "u-1", domain.BulkUpdateRequest{
		IncarnationIDs: []int{7, 8},
		RequestedData:  map[string]any{"replicas": 2},
	})
	require.NoError(t, err)

	job := waitJob(t, svc, jobID)
	assert.Equal(t, domain.JobStatusError, job.Status)
	assert.Equal(t, 2, job.Failed)
}

func TestBulkUpdateService_Validation(t *testing.T) {
	svc := NewBulkUpdateService(NewJobTracker(time.Hour), nil, 1)

	_, err := svc.Start(new(mocks.IncarnationAPI), "u-1", domain.BulkUpdateRequest{RequestedVersion: strPtr("v1")})
	assert.ErrorIs(t, err, port.ErrInvalidInput)

	_, err = svc.Start(new(mocks.IncarnationAPI), "u-1", domain.BulkUpdateRequest{IncarnationIDs: []int{1}})
	assert.ErrorIs(t, err, port.ErrInvalidInput)
}

func TestBulkUpdateService_WaitUnknownJob(t *testing.T) {
	svc := NewBulkUpdateService(NewJobTracker(time.Hour), nil, 1)
	_, err := svc.Wait(context.Background(), "missing")
	assert.ErrorIs(t, err, port.ErrJobNotFound)
}
