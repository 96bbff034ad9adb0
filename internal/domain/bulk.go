package domain

import (
	"fmt"
	"time"
)

// BulkUpdateRequest asks for the same PATCH to be applied to many incarnations.
type BulkUpdateRequest struct {
	IncarnationIDs   []int          `json:"incarnation_ids"`
	RequestedVersion *string        `json:"requested_version,omitempty"`
	RequestedData    map[string]any `json:"requested_data,omitempty"`
	Automerge        bool           `json:"automerge"`
}

// Patch returns the per-incarnation request.
func (r BulkUpdateRequest) Patch() PatchIncarnationRequest {
	return PatchIncarnationRequest{
		RequestedVersion: r.RequestedVersion,
		RequestedData:    r.RequestedData,
		Automerge:        r.Automerge,
	}
}

// Validate checks the id list and the patch itself.
func (r BulkUpdateRequest) Validate() error {
	if len(r.IncarnationIDs) == 0 {
		return fmt.Errorf("%w: incarnation_ids must not be empty", ErrInvalidInput)
	}
	for _, id := range r.IncarnationIDs {
		if id < 1 {
			return fmt.Errorf("%w: invalid incarnation id %d", ErrInvalidInput, id)
		}
	}
	return r.Patch().Validate()
}

// UniqueIDs returns the ids in first-seen order without duplicates.
func (r BulkUpdateRequest) UniqueIDs() []int {
	seen := make(map[int]struct{}, len(r.IncarnationIDs))
	ids := make([]int, 0, len(r.IncarnationIDs))
	for _, id := range r.IncarnationIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// BulkJob tracks the progress of a bulk update.
type BulkJob struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Status      string           `json:"status"` // running, complete, error
	Total       int              `json:"total"`
	Progress    int              `json:"progress"`
	Succeeded   int              `json:"succeeded"`
	Failed      int              `json:"failed"`
	Results     []BulkItemResult `json:"results"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at,omitempty"`
}

// Done reports whether the job reached a terminal status.
func (j BulkJob) Done() bool {
	return j.Status == JobStatusComplete || j.Status == JobStatusError
}

// BulkItemResult is the outcome for one incarnation.
type BulkItemResult struct {
	IncarnationID   int    `json:"incarnation_id"`
	Status          string `json:"status"` // success, failed
	Error           string `json:"error,omitempty"`
	CommitSha       string `json:"commit_sha,omitempty"`
	MergeRequestURL string `json:"merge_request_url,omitempty"`
}

// Job and item status constants.
const (
	JobStatusRunning  = "running"
	JobStatusComplete = "complete"
	JobStatusError    = "error"

	ItemStatusSuccess = "success"
	ItemStatusFailed  = "failed"
)
