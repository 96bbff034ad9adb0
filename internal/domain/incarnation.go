package domain

import "strconv"

// IncarnationSummary is the list projection of an incarnation as returned by
// GET /api/incarnations, plus the UI-derived template version.
type IncarnationSummary struct {
	ID                    int     `json:"id"`
	IncarnationRepository string  `json:"incarnation_repository"`
	TargetDirectory       string  `json:"target_directory"`
	TemplateRepository    *string `json:"template_repository"` // nil when the status fetch failed
	CreatedAt             string  `json:"created_at"`
	CommitSha             string  `json:"commit_sha"`
	CommitURL             string  `json:"commit_url"`
	MergeRequestID        *string `json:"merge_request_id"`
	MergeRequestURL       *string `json:"merge_request_url"`
	Revision              int     `json:"revision"`
	Type                  string  `json:"type"`
	RequestedVersion      string  `json:"requested_version"`
	TemplateVersion       string  `json:"template_version"` // empty until enriched
}

// Incarnation type tags.
const (
	IncarnationTypeDirect       = "direct"
	IncarnationTypeMergeRequest = "merge_request"
)

// IDText returns the id rendered as decimal text, the form searched and matched.
func (s IncarnationSummary) IDText() string {
	return strconv.Itoa(s.ID)
}

// Incarnation is the detailed record returned by GET /api/incarnations/{id}.
type Incarnation struct {
	ID                            int            `json:"id"`
	IncarnationRepository         string         `json:"incarnation_repository"`
	TargetDirectory               string         `json:"target_directory"`
	TemplateRepository            *string        `json:"template_repository"`
	TemplateRepositoryVersion     string         `json:"template_repository_version"`
	TemplateRepositoryVersionHash string         `json:"template_repository_version_hash"`
	TemplateData                  map[string]any `json:"template_data,omitempty"`
	TemplateDataFull              map[string]any `json:"template_data_full,omitempty"`
	RequestedVersion              string         `json:"requested_version"`
	RequestedData                 map[string]any `json:"requested_data,omitempty"`
	Status                        string         `json:"status"`
	CreatedAt                     string         `json:"created_at"`
	CommitSha                     string         `json:"commit_sha"`
	CommitURL                     string         `json:"commit_url"`
	MergeRequestID                *string        `json:"merge_request_id"`
	MergeRequestURL               *string        `json:"merge_request_url"`
	MergeRequestStatus            *string        `json:"merge_request_status"`
	Revision                      int            `json:"revision"`
	Type                          string         `json:"type"`
}

// Summary projects the detailed record onto the list shape.
func (i *Incarnation) Summary() IncarnationSummary {
	return IncarnationSummary{
		ID:                    i.ID,
		IncarnationRepository: i.IncarnationRepository,
		TargetDirectory:       i.TargetDirectory,
		TemplateRepository:    i.TemplateRepository,
		CreatedAt:             i.CreatedAt,
		CommitSha:             i.CommitSha,
		CommitURL:             i.CommitURL,
		MergeRequestID:        i.MergeRequestID,
		MergeRequestURL:       i.MergeRequestURL,
		Revision:              i.Revision,
		Type:                  i.Type,
		RequestedVersion:      i.RequestedVersion,
		TemplateVersion:       i.TemplateRepositoryVersion,
	}
}

// MergeInto enriches a list record with what only the detailed record knows.
// Fields the summary already carries are left alone.
func (i *Incarnation) MergeInto(s *IncarnationSummary) {
	if i.ID != s.ID {
		return
	}
	s.TemplateVersion = i.TemplateRepositoryVersion
	if s.TemplateRepository == nil {
		s.TemplateRepository = i.TemplateRepository
	}
	if s.RequestedVersion == "" {
		s.RequestedVersion = i.RequestedVersion
	}
	if s.CommitSha == "" {
		s.CommitSha = i.CommitSha
	}
	if s.CommitURL == "" {
		s.CommitURL = i.CommitURL
	}
	if s.MergeRequestID == nil {
		s.MergeRequestID = i.MergeRequestID
	}
	if s.MergeRequestURL == nil {
		s.MergeRequestURL = i.MergeRequestURL
	}
}

// IncarnationEvent is broadcast to SSE subscribers after a successful mutation.
// UserID stays server-side; every subscriber sees every change.
type IncarnationEvent struct {
	IncarnationID int    `json:"incarnation_id"`
	Action        string `json:"action"`
	UserID        string `json:"-"`
}

// Incarnation event actions.
const (
	IncarnationActionCreated = "created"
	IncarnationActionUpdated = "updated"
	IncarnationActionReset   = "reset"
	IncarnationActionDeleted = "deleted"
)

// StringValue dereferences an optional string, treating nil as empty.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
