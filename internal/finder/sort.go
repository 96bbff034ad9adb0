package finder

import (
	"cmp"
	"slices"
	"strings"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
)

// SortField names a sortable column of the incarnation table.
type SortField string

// Sortable columns, named after the JSON keys of domain.IncarnationSummary.
const (
	SortID                    SortField = "id"
	SortIncarnationRepository SortField = "incarnation_repository"
	SortTargetDirectory       SortField = "target_directory"
	SortTemplateRepository    SortField = "template_repository"
	SortRevision              SortField = "revision"
	SortType                  SortField = "type"
	SortRequestedVersion      SortField = "requested_version"
	SortCreatedAt             SortField = "created_at"
	SortCommitSha             SortField = "commit_sha"
	SortCommitURL             SortField = "commit_url"
	SortMergeRequestID        SortField = "merge_request_id"
	SortMergeRequestURL       SortField = "merge_request_url"
	SortTemplateVersion       SortField = "template_version"
)

var textColumns = map[SortField]func(r *domain.IncarnationSummary) string{
	SortIncarnationRepository: func(r *domain.IncarnationSummary) string { return r.IncarnationRepository },
	SortTargetDirectory:       func(r *domain.IncarnationSummary) string { return r.TargetDirectory },
	SortTemplateRepository:    func(r *domain.IncarnationSummary) string { return domain.StringValue(r.TemplateRepository) },
	SortType:                  func(r *domain.IncarnationSummary) string { return r.Type },
	SortRequestedVersion:      func(r *domain.IncarnationSummary) string { return r.RequestedVersion },
	SortCreatedAt:             func(r *domain.IncarnationSummary) string { return r.CreatedAt },
	SortCommitSha:             func(r *domain.IncarnationSummary) string { return r.CommitSha },
	SortCommitURL:             func(r *domain.IncarnationSummary) string { return r.CommitURL },
	SortMergeRequestID:        func(r *domain.IncarnationSummary) string { return domain.StringValue(r.MergeRequestID) },
	SortMergeRequestURL:       func(r *domain.IncarnationSummary) string { return domain.StringValue(r.MergeRequestURL) },
}

// ParseSortField maps a column name to its SortField.
func ParseSortField(name string) (SortField, bool) {
	f := SortField(strings.TrimSpace(name))
	switch f {
	case SortID, SortRevision, SortTemplateVersion:
		return f, true
	}
	_, ok := textColumns[f]
	return f, ok
}

// IsSortField reports whether name is a sortable column.
func IsSortField(name string) bool {
	_, ok := ParseSortField(name)
	return ok
}

// Sort orders records in place by field. Equal keys keep their relative order.
func Sort(records []domain.IncarnationSummary, field SortField, asc bool) {
	slices.SortStableFunc(records, comparator(field, asc))
}

func comparator(field SortField, asc bool) func(a, b domain.IncarnationSummary) int {
	direction := func(c int) int {
		if asc {
			return c
		}
		return -c
	}

	switch field {
	case SortID:
		return func(a, b domain.IncarnationSummary) int { return direction(cmp.Compare(a.ID, b.ID)) }
	case SortRevision:
		return func(a, b domain.IncarnationSummary) int { return direction(cmp.Compare(a.Revision, b.Revision)) }
	case SortTemplateVersion:
		return func(a, b domain.IncarnationSummary) int {
			// Unknown versions stay at the bottom in both directions.
			switch {
			case a.TemplateVersion == "" && b.TemplateVersion == "":
				return 0
			case a.TemplateVersion == "":
				return 1
			case b.TemplateVersion == "":
				return -1
			}
			return direction(CompareVersions(a.TemplateVersion, b.TemplateVersion))
		}
	}

	value, ok := textColumns[field]
	if !ok {
		value = textColumns[SortIncarnationRepository]
	}
	return func(a, b domain.IncarnationSummary) int {
		return direction(strings.Compare(value(&a), value(&b)))
	}
}
