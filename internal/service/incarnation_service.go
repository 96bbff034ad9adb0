package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/arturoeanton/foxops-dashboard/internal/finder"
	"github.com/arturoeanton/foxops-dashboard/internal/port"
	"golang.org/x/sync/errgroup"
)

// ListQuery selects one page of the incarnation list.
type ListQuery struct {
	Search  string
	Sort    string
	Asc     bool
	Page    int
	PerPage int
	Broad   bool // search the full field list instead of the table columns
	Enrich  bool // fill template_version from the detailed records
}

// ListResult is one page of the incarnation list.
type ListResult struct {
	Items   []domain.IncarnationSummary `json:"items"`
	Total   int                         `json:"total"`
	Page    int                         `json:"page"`
	PerPage int                         `json:"per_page"`
	Pages   int                         `json:"pages"`
}

// IncarnationService runs the list pipeline and proxies incarnation
// operations to foxops, publishing an event after every mutation.
type IncarnationService struct {
	events            *EventBus
	enrichConcurrency int
}

// NewIncarnationService creates the service. enrichConcurrency bounds the
// detail requests issued while enriching a list.
func NewIncarnationService(events *EventBus, enrichConcurrency int) *IncarnationService {
	if enrichConcurrency < 1 {
		enrichConcurrency = 1
	}
	return &IncarnationService{events: events, enrichConcurrency: enrichConcurrency}
}

// List fetches the snapshot, optionally enriches it, searches, sorts and
// paginates.
func (s *IncarnationService) List(ctx context.Context, api port.IncarnationAPI, q ListQuery) (*ListResult, error) {
	records, err := api.ListIncarnations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incarnations: %w", err)
	}

	if q.Enrich {
		if err := s.enrich(ctx, api, records); err != nil {
			return nil, err
		}
	}

	var found []domain.IncarnationSummary
	if q.Broad {
		found = finder.SearchIncarnations(records, q.Search)
		if q.Sort != "" {
			field, ok := finder.ParseSortField(q.Sort)
			if !ok {
				field = finder.SortID
			}
			finder.Sort(found, field, q.Asc)
		}
	} else {
		found = finder.SearchSortIncarnations(records, q.Search, q.Sort, q.Asc)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	items, total, pages := finder.Paginate(found, page, q.PerPage)

	return &ListResult{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: q.PerPage,
		Pages:   pages,
	}, nil
}

// enrich fills the template version of each record from its detailed
// record. A failed lookup leaves that record's version empty; only a
// cancelled context fails the whole list.
func (s *IncarnationService) enrich(ctx context.Context, api port.IncarnationAPI, records []domain.IncarnationSummary) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.enrichConcurrency)

	for i := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detail, err := api.GetIncarnation(gctx, records[i].ID)
			if err != nil {
				slog.Warn("enrich incarnation", "incarnation_id", records[i].ID, "error", err)
				return nil
			}
			detail.MergeInto(&records[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("enrich incarnations: %w", err)
	}
	return nil
}

// Get returns the detailed record.
func (s *IncarnationService) Get(ctx context.Context, api port.IncarnationAPI, id int) (*domain.Incarnation, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	inc, err := api.GetIncarnation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get incarnation: %w", err)
	}
	return inc, nil
}

// Create creates or imports an incarnation.
func (s *IncarnationService) Create(ctx context.Context, api port.IncarnationAPI, userID string, req domain.CreateIncarnationRequest, allowImport bool) (*domain.Incarnation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	inc, err := api.CreateIncarnation(ctx, req, allowImport)
	if err != nil {
		return nil, fmt.Errorf("create incarnation: %w", err)
	}
	s.publish(inc.ID, domain.IncarnationActionCreated, userID)
	return inc, nil
}

// Update replaces version and template data.
func (s *IncarnationService) Update(ctx context.Context, api port.IncarnationAPI, userID string, id int, req domain.UpdateIncarnationRequest) (*domain.Incarnation, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	inc, err := api.UpdateIncarnation(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update incarnation: %w", err)
	}
	s.publish(id, domain.IncarnationActionUpdated, userID)
	return inc, nil
}

// Patch changes the requested version and/or some data keys.
func (s *IncarnationService) Patch(ctx context.Context, api port.IncarnationAPI, userID string, id int, req domain.PatchIncarnationRequest) (*domain.Incarnation, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	inc, err := api.PatchIncarnation(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("patch incarnation: %w", err)
	}
	s.publish(id, domain.IncarnationActionUpdated, userID)
	return inc, nil
}

// Reset discards manual changes in the incarnation repository.
func (s *IncarnationService) Reset(ctx context.Context, api port.IncarnationAPI, userID string, id int) error {
	if err := validID(id); err != nil {
		return err
	}
	if err := api.ResetIncarnation(ctx, id); err != nil {
		return fmt.Errorf("reset incarnation: %w", err)
	}
	s.publish(id, domain.IncarnationActionReset, userID)
	return nil
}

// Delete removes the incarnation from foxops.
func (s *IncarnationService) Delete(ctx context.Context, api port.IncarnationAPI, userID string, id int) error {
	if err := validID(id); err != nil {
		return err
	}
	if err := api.DeleteIncarnation(ctx, id); err != nil {
		return fmt.Errorf("delete incarnation: %w", err)
	}
	s.publish(id, domain.IncarnationActionDeleted, userID)
	return nil
}

// Diff returns the template diff with per-file counts.
func (s *IncarnationService) Diff(ctx context.Context, api port.IncarnationAPI, id int) (domain.DiffSummary, error) {
	if err := validID(id); err != nil {
		return domain.DiffSummary{}, err
	}
	raw, err := api.GetIncarnationDiff(ctx, id)
	if err != nil {
		return domain.DiffSummary{}, fmt.Errorf("get incarnation diff: %w", err)
	}
	return ParseDiff(raw), nil
}

func (s *IncarnationService) publish(id int, action, userID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(domain.IncarnationEvent{IncarnationID: id, Action: action, UserID: userID})
}

func validID(id int) error {
	if id < 1 {
		return fmt.Errorf("%w: invalid incarnation id %d", port.ErrInvalidInput, id)
	}
	return nil
}
