package finder

import (
	"fmt"
	"testing"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func incarnation(id int, repo, dir string) domain.IncarnationSummary {
	return domain.IncarnationSummary{
		ID:                    id,
		IncarnationRepository: repo,
		TargetDirectory:       dir,
		TemplateRepository:    strPtr("https://git.example.com/templates/python"),
		CreatedAt:             "2024-03-01T10:00:00Z",
		CommitSha:             "abcdef",
		CommitURL:             "https://git.example.com/commit/abcdef",
		Revision:              1,
		Type:                  domain.IncarnationTypeDirect,
		RequestedVersion:      "v1.0.0",
	}
}

func ids(records []domain.IncarnationSummary) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func repos(records []domain.IncarnationSummary) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.IncarnationRepository
	}
	return out
}

func fixture() []domain.IncarnationSummary {
	withMR := incarnation(1636, "platform/billing", "services/api")
	withMR.Type = domain.IncarnationTypeMergeRequest
	withMR.MergeRequestID = strPtr("88")
	withMR.MergeRequestURL = strPtr("https://git.example.com/platform/billing/-/merge_requests/2373")

	noTemplate := incarnation(659, "platform/search", ".")
	noTemplate.TemplateRepository = nil

	return []domain.IncarnationSummary{
		incarnation(910, "platform/auth", "."),
		incarnation(1632, "platform/gateway", "deploy"),
		noTemplate,
		withMR,
		incarnation(1337, "tools/linter", "config"),
	}
}

func TestSearchIncarnations_EmptySearchIsIdentity(t *testing.T) {
	records := fixture()
	got := SearchIncarnations(records, "")
	require.Equal(t, records, got)

	got[0].IncarnationRepository = "changed"
	assert.Equal(t, "platform/auth", records[0].IncarnationRepository, "result must be a copy")
}

func TestSearchIncarnations_EmptyRecords(t *testing.T) {
	assert.Empty(t, SearchIncarnations(nil, "anything"))
	assert.Empty(t, SearchIncarnations([]domain.IncarnationSummary{}, ""))
	assert.Empty(t, SearchSortIncarnations(nil, "[", "id", true))
}

func TestSearchIncarnations_MatchesEverySearchableField(t *testing.T) {
	records := fixture()
	for i := range records {
		r := records[i]
		values := []string{
			r.IDText(),
			r.IncarnationRepository,
			r.TargetDirectory,
			domain.StringValue(r.TemplateRepository),
			fmt.Sprint(r.Revision),
			r.Type,
			r.RequestedVersion,
			r.CreatedAt,
			r.CommitSha,
			r.CommitURL,
			domain.StringValue(r.MergeRequestID),
			domain.StringValue(r.MergeRequestURL),
			r.TemplateVersion,
		}
		for _, v := range values {
			if v == "" {
				continue
			}
			got := SearchIncarnations(records, v)
			assert.Contains(t, ids(got), r.ID, "searching %q should find %d", v, r.ID)
		}
	}
}

func TestSearchIncarnations_CaseInsensitive(t *testing.T) {
	got := SearchIncarnations(fixture(), "PLATFORM/GATEWAY")
	assert.Equal(t, []int{1632}, ids(got))
}

func TestSearchIncarnations_NilTemplateRepositoryContributesNothing(t *testing.T) {
	records := []domain.IncarnationSummary{incarnation(1, "a", "b")}
	records[0].TemplateRepository = nil
	assert.Empty(t, SearchIncarnations(records, "null"))
	assert.Empty(t, SearchIncarnations(records, "<nil>"))
}

func TestSearchIncarnations_InvalidRegexDoesNotPanic(t *testing.T) {
	records := fixture()
	records[0].IncarnationRepository = "platform/[auth"

	var got []domain.IncarnationSummary
	require.NotPanics(t, func() { got = SearchIncarnations(records, "[") })
	assert.Equal(t, []int{910}, ids(got), "falls back to substring matches")

	require.NotPanics(t, func() { got = SearchSortIncarnations(records, "[", "id", true) })
	assert.Equal(t, []int{910}, ids(got))
}

func TestSearchIncarnations_MergeRequestFieldsOnlyInBroadSearch(t *testing.T) {
	records := fixture()

	broad := SearchIncarnations(records, "2373")
	assert.Equal(t, []int{1636}, ids(broad))

	narrow := SearchSortIncarnations(records, "2373", "", true)
	assert.Empty(t, narrow, "merge request fields are not part of the narrow field set")

	byID := SearchSortIncarnations(records, "163", "", true)
	assert.Equal(t, []int{1632, 1636}, ids(byID))
}

func TestSearchIncarnations_RegexOverRepository(t *testing.T) {
	records := []domain.IncarnationSummary{
		incarnation(3, "repo3", "."),
		incarnation(1, "repo1", "."),
		incarnation(5, "repo5", "."),
		incarnation(2, "repo2", "."),
		incarnation(4, "repo4", "."),
	}

	got := SearchIncarnations(records, "^r.*o[1-2]$")
	assert.Equal(t, []string{"repo1", "repo2"}, repos(got))

	got = SearchSortIncarnations(records, "^r.*o[1-2]$", "", true)
	assert.Equal(t, []string{"repo1", "repo2"}, repos(got))
}

func TestSearchIncarnations_SubstringResultsFirstThenRegexOnly(t *testing.T) {
	records := []domain.IncarnationSummary{
		incarnation(1, "alpha", "x"),
		incarnation(2, "a.c", "x"),
		incarnation(3, "abc", "x"),
	}
	// "a.c" is a literal substring of record 2 and a pattern matching record 3.
	got := SearchIncarnations(records, "a.c")
	assert.Equal(t, []int{2, 3}, ids(got))
}

func TestSearchIncarnations_NoDuplicates(t *testing.T) {
	records := fixture()
	for _, q := range []string{"platform", "1", ".", "p", "^1", "(a|b)"} {
		for _, got := range [][]domain.IncarnationSummary{
			SearchIncarnations(records, q),
			SearchSortIncarnations(records, q, "incarnation_repository", false),
		} {
			seen := map[int]bool{}
			for _, r := range got {
				require.False(t, seen[r.ID], "duplicate id %d for %q", r.ID, q)
				seen[r.ID] = true
			}
		}
	}
}

func TestSearchIncarnations_DoesNotMutateInput(t *testing.T) {
	records := fixture()
	before := make([]domain.IncarnationSummary, len(records))
	copy(before, records)

	SearchSortIncarnations(records, "", "incarnation_repository", false)
	SearchIncarnations(records, "platform")

	assert.Equal(t, before, records)
}

func TestSearchSortIncarnations_DirectionSymmetry(t *testing.T) {
	records := fixture()
	for _, field := range []string{"id", "incarnation_repository", "commit_url"} {
		asc := SearchSortIncarnations(records, "", field, true)
		desc := SearchSortIncarnations(records, "", field, false)
		if field == "commit_url" {
			// every fixture shares the same commit url, so order is the input order
			assert.Equal(t, ids(records), ids(asc))
			assert.Equal(t, ids(records), ids(desc))
			continue
		}
		reversed := ids(asc)
		for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
			reversed[i], reversed[j] = reversed[j], reversed[i]
		}
		assert.Equal(t, reversed, ids(desc), "field %s", field)
	}
}

func TestSearchSortIncarnations_NumericColumns(t *testing.T) {
	got := SearchSortIncarnations(fixture(), "", "id", true)
	assert.Equal(t, []int{659, 910, 1337, 1632, 1636}, ids(got))
}

func TestSearchSortIncarnations_UnknownSortFallsBackToID(t *testing.T) {
	got := SearchSortIncarnations(fixture(), "", "no_such_column", false)
	assert.Equal(t, []int{1636, 1632, 1337, 910, 659}, ids(got))
}

func TestSearchSortIncarnations_TemplateVersion(t *testing.T) {
	versions := []string{"non-semantic-version-4", "", "2.0.0", "non-semantic-version-3", "1.0.0"}
	records := make([]domain.IncarnationSummary, len(versions))
	for i, v := range versions {
		records[i] = incarnation(i+1, fmt.Sprintf("repo%d", i+1), ".")
		records[i].TemplateVersion = v
	}

	templateVersions := func(rs []domain.IncarnationSummary) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.TemplateVersion
		}
		return out
	}

	asc := SearchSortIncarnations(records, "", "template_version", true)
	assert.Equal(t, []string{"1.0.0", "2.0.0", "non-semantic-version-3", "non-semantic-version-4", ""}, templateVersions(asc))

	desc := SearchSortIncarnations(records, "", "template_version", false)
	assert.Equal(t, []string{"non-semantic-version-4", "non-semantic-version-3", "2.0.0", "1.0.0", ""}, templateVersions(desc))
}

func TestSearchSortIncarnations_NilTextSortsAsEmpty(t *testing.T) {
	records := fixture()
	got := SearchSortIncarnations(records, "", "merge_request_id", true)
	assert.Equal(t, 1636, got[len(got)-1].ID)
	got = SearchSortIncarnations(records, "", "merge_request_id", false)
	assert.Equal(t, 1636, got[0].ID)
}

func TestParseSortField(t *testing.T) {
	for _, name := range []string{"id", "revision", "template_version", "incarnation_repository", "merge_request_url"} {
		f, ok := ParseSortField(name)
		assert.True(t, ok, name)
		assert.Equal(t, SortField(name), f)
	}
	_, ok := ParseSortField("password")
	assert.False(t, ok)
	assert.True(t, IsSortField(" type "))
}

func TestPaginate(t *testing.T) {
	records := fixture()

	items, total, pages := Paginate(records, 1, 2)
	assert.Equal(t, []int{910, 1632}, ids(items))
	assert.Equal(t, 5, total)
	assert.Equal(t, 3, pages)

	items, _, _ = Paginate(records, 3, 2)
	assert.Equal(t, []int{1337}, ids(items))

	items, _, _ = Paginate(records, 4, 2)
	assert.Empty(t, items)

	items, total, pages = Paginate(records, 1, 0)
	assert.Len(t, items, 5)
	assert.Equal(t, 5, total)
	assert.Equal(t, 1, pages)

	items, total, pages = Paginate(nil, 1, 10)
	assert.Empty(t, items)
	assert.Zero(t, total)
	assert.Zero(t, pages)
}
