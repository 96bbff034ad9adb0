package port

import (
	"context"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
)

// IncarnationAPI abstracts the foxops REST API for one credential.
// Implementations are explicit client objects; there is no shared default.
type IncarnationAPI interface {
	// TestAuth verifies that the configured token is accepted.
	TestAuth(ctx context.Context) error

	// ListIncarnations returns the full incarnation snapshot.
	ListIncarnations(ctx context.Context) ([]domain.IncarnationSummary, error)

	// GetIncarnation returns the detailed record for one incarnation.
	GetIncarnation(ctx context.Context, id int) (*domain.Incarnation, error)

	// CreateIncarnation creates (or, with allowImport, imports) an incarnation.
	CreateIncarnation(ctx context.Context, req domain.CreateIncarnationRequest, allowImport bool) (*domain.Incarnation, error)

	// UpdateIncarnation replaces version and template data (PUT).
	UpdateIncarnation(ctx context.Context, id int, req domain.UpdateIncarnationRequest) (*domain.Incarnation, error)

	// PatchIncarnation changes the requested version and/or data keys (PATCH).
	PatchIncarnation(ctx context.Context, id int, req domain.PatchIncarnationRequest) (*domain.Incarnation, error)

	// ResetIncarnation discards manual changes and re-renders the template.
	ResetIncarnation(ctx context.Context, id int) error

	// DeleteIncarnation removes the incarnation from foxops (not the repository).
	DeleteIncarnation(ctx context.Context, id int) error

	// GetIncarnationDiff returns the unified diff between the incarnation and its template.
	GetIncarnationDiff(ctx context.Context, id int) (string, error)
}

// ClientFactory builds the IncarnationAPI for a given foxops token.
type ClientFactory interface {
	ClientFor(token string) IncarnationAPI
	// Evict drops the cached client of token.
	Evict(token string)
}
