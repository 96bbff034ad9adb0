package domain

// DiffSummary is a unified diff between an incarnation and a fresh rendering
// of its template, with per-file line counts.
type DiffSummary struct {
	Files     []DiffFile `json:"files"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Raw       string     `json:"raw"`
}

// DiffFile holds the counts for one changed path.
type DiffFile struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}
