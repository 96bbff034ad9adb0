package domain

import "time"

// TableSettings is the persisted state of one list view for one user.
type TableSettings struct {
	UserID        string    `json:"user_id"`
	Table         string    `json:"table"`
	Search        string    `json:"search"`
	Sort          string    `json:"sort"`
	Asc           bool      `json:"asc"`
	PageSize      int       `json:"page_size"`
	HiddenColumns []string  `json:"hidden_columns"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Table settings limits and defaults.
const (
	TableIncarnations = "incarnations"

	DefaultPageSize = 25
	MaxPageSize     = 500
	DefaultSort     = "id"
)

// DefaultTableSettings returns the settings used before a user saved any.
func DefaultTableSettings(userID, table string) *TableSettings {
	return &TableSettings{
		UserID:        userID,
		Table:         table,
		Sort:          DefaultSort,
		Asc:           true,
		PageSize:      DefaultPageSize,
		HiddenColumns: []string{},
	}
}

// Normalize clamps the page size, replaces an unknown sort column with the
// default and removes duplicate or blank hidden columns. validSort reports
// whether a column name is sortable.
func (s *TableSettings) Normalize(validSort func(string) bool) {
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	if s.PageSize > MaxPageSize {
		s.PageSize = MaxPageSize
	}
	if s.Sort == "" || (validSort != nil && !validSort(s.Sort)) {
		s.Sort = DefaultSort
	}

	seen := make(map[string]struct{}, len(s.HiddenColumns))
	cols := make([]string, 0, len(s.HiddenColumns))
	for _, c := range s.HiddenColumns {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}
	s.HiddenColumns = cols
}
