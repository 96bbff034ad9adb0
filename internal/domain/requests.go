package domain

import (
	"fmt"
	"strings"
)

// CreateIncarnationRequest is the body of POST /api/incarnations.
type CreateIncarnationRequest struct {
	IncarnationRepository     string         `json:"incarnation_repository"`
	TargetDirectory           string         `json:"target_directory"`
	TemplateRepository        string         `json:"template_repository"`
	TemplateRepositoryVersion string         `json:"template_repository_version"`
	TemplateData              map[string]any `json:"template_data"`
}

// Validate checks the required fields.
func (r CreateIncarnationRequest) Validate() error {
	if strings.TrimSpace(r.IncarnationRepository) == "" {
		return fmt.Errorf("%w: incarnation_repository is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.TemplateRepository) == "" {
		return fmt.Errorf("%w: template_repository is required", ErrInvalidInput)
	}
	if strings.TrimSpace(r.TemplateRepositoryVersion) == "" {
		return fmt.Errorf("%w: template_repository_version is required", ErrInvalidInput)
	}
	return nil
}

// UpdateIncarnationRequest is the body of PUT /api/incarnations/{id}. It
// replaces the template data wholesale.
type UpdateIncarnationRequest struct {
	TemplateRepositoryVersion string         `json:"template_repository_version"`
	TemplateData              map[string]any `json:"template_data"`
	Automerge                 bool           `json:"automerge"`
}

// Validate checks the required fields.
func (r UpdateIncarnationRequest) Validate() error {
	if strings.TrimSpace(r.TemplateRepositoryVersion) == "" {
		return fmt.Errorf("%w: template_repository_version is required", ErrInvalidInput)
	}
	if r.TemplateData == nil {
		return fmt.Errorf("%w: template_data is required", ErrInvalidInput)
	}
	return nil
}

// PatchIncarnationRequest is the body of PATCH /api/incarnations/{id}. Only
// the supplied keys of RequestedData are changed.
type PatchIncarnationRequest struct {
	RequestedVersion *string        `json:"requested_version,omitempty"`
	RequestedData    map[string]any `json:"requested_data,omitempty"`
	Automerge        bool           `json:"automerge"`
}

// Validate requires that the patch changes something.
func (r PatchIncarnationRequest) Validate() error {
	if r.RequestedVersion != nil && strings.TrimSpace(*r.RequestedVersion) == "" {
		return fmt.Errorf("%w: requested_version must not be blank", ErrInvalidInput)
	}
	if r.RequestedVersion == nil && len(r.RequestedData) == 0 {
		return fmt.Errorf("%w: requested_version or requested_data is required", ErrInvalidInput)
	}
	return nil
}
