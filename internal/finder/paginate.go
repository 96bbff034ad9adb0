package finder

import "github.com/arturoeanton/foxops-dashboard/internal/domain"

// Paginate returns the 1-based page of records together with the total
// record count and the number of pages. perPage < 1 returns everything as a
// single page; a page past the end is empty.
func Paginate(records []domain.IncarnationSummary, page, perPage int) (items []domain.IncarnationSummary, total, pages int) {
	total = len(records)
	if perPage < 1 {
		if total == 0 {
			return []domain.IncarnationSummary{}, 0, 0
		}
		return records, total, 1
	}

	pages = (total + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= total {
		return []domain.IncarnationSummary{}, total, pages
	}
	end := min(start+perPage, total)
	return records[start:end], total, pages
}
