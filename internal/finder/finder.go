// Package finder filters and orders incarnation summaries for the list views.
//
// Every function here is pure: inputs are never mutated, results are fresh
// slices, and malformed search patterns never produce an error. That makes the
// functions safe to run on every keystroke and from concurrent requests.
package finder

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
)

// fieldSet extracts the text a record is searched by.
type fieldSet func(r *domain.IncarnationSummary) []string

// broadFields is the field list of the full list view.
func broadFields(r *domain.IncarnationSummary) []string {
	fields := []string{
		r.IDText(),
		r.IncarnationRepository,
		r.TargetDirectory,
	}
	if r.TemplateRepository != nil {
		fields = append(fields, *r.TemplateRepository)
	}
	fields = append(fields,
		strconv.Itoa(r.Revision),
		r.Type,
		r.RequestedVersion,
		r.CreatedAt,
		r.CommitSha,
		r.CommitURL,
	)
	if r.MergeRequestID != nil {
		fields = append(fields, *r.MergeRequestID)
	}
	if r.MergeRequestURL != nil {
		fields = append(fields, *r.MergeRequestURL)
	}
	return append(fields, r.TemplateVersion)
}

// narrowFields is the field list of the sortable table view.
func narrowFields(r *domain.IncarnationSummary) []string {
	return []string{r.IDText(), r.IncarnationRepository, r.TargetDirectory}
}

// SearchIncarnations returns the records matching search over the broad
// field list, merged with the records whose id, repository or target
// directory match search as a case-insensitive regular expression.
// An empty search returns a copy of records.
func SearchIncarnations(records []domain.IncarnationSummary, search string) []domain.IncarnationSummary {
	return find(records, search, broadFields)
}

// SearchSortIncarnations is SearchIncarnations restricted to id, repository
// and target directory for the substring pass, followed by a stable sort on
// the given column. An empty sort leaves the merge order untouched.
func SearchSortIncarnations(records []domain.IncarnationSummary, search, sort string, asc bool) []domain.IncarnationSummary {
	found := find(records, search, narrowFields)
	if sort == "" {
		return found
	}
	field, ok := ParseSortField(sort)
	if !ok {
		field = SortID
	}
	Sort(found, field, asc)
	return found
}

func find(records []domain.IncarnationSummary, search string, fields fieldSet) []domain.IncarnationSummary {
	if search == "" {
		out := make([]domain.IncarnationSummary, len(records))
		copy(out, records)
		return out
	}

	bySubstring := containing(records, search, fields)

	re, err := regexp.Compile("(?i)" + search)
	if err != nil {
		return bySubstring
	}
	return merge(bySubstring, matching(records, re))
}

func containing(records []domain.IncarnationSummary, search string, fields fieldSet) []domain.IncarnationSummary {
	needle := strings.ToLower(search)
	var out []domain.IncarnationSummary
	for i := range records {
		haystack := strings.ToLower(strings.Join(fields(&records[i]), " "))
		if strings.Contains(haystack, needle) {
			out = append(out, records[i])
		}
	}
	return out
}

func matching(records []domain.IncarnationSummary, re *regexp.Regexp) []domain.IncarnationSummary {
	var out []domain.IncarnationSummary
	for i := range records {
		r := &records[i]
		if re.MatchString(r.IDText()) || re.MatchString(r.IncarnationRepository) || re.MatchString(r.TargetDirectory) {
			out = append(out, *r)
		}
	}
	return out
}

// merge appends the members of extra whose id is not already in base.
func merge(base, extra []domain.IncarnationSummary) []domain.IncarnationSummary {
	out := make([]domain.IncarnationSummary, 0, len(base)+len(extra))
	seen := make(map[int]struct{}, len(base)+len(extra))
	for _, list := range [][]domain.IncarnationSummary{base, extra} {
		for _, r := range list {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
