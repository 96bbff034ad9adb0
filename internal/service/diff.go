package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
)

// hunkHeader matches "@@ -l[,s] +l[,s] @@".
var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,(\d+))? \+\d+(?:,(\d+))? @@`)

// ParseDiff counts added and removed lines per file of a unified diff.
// Files are reported in the order they appear.
func ParseDiff(raw string) domain.DiffSummary {
	summary := domain.DiffSummary{Files: []domain.DiffFile{}, Raw: raw}

	var current *domain.DiffFile
	oldLeft, newLeft := 0, 0
	flush := func() {
		if current != nil {
			summary.Files = append(summary.Files, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if oldLeft > 0 || newLeft > 0 {
			switch {
			case strings.HasPrefix(line, "+"):
				current.Additions++
				summary.Additions++
				newLeft--
			case strings.HasPrefix(line, "-"):
				current.Deletions++
				summary.Deletions++
				oldLeft--
			case strings.HasPrefix(line, "\\"):
			default:
				oldLeft--
				newLeft--
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "diff --git "):
			flush()
			current = &domain.DiffFile{Path: gitDiffPath(line)}
		case strings.HasPrefix(line, "--- "):
			if current == nil || current.Additions+current.Deletions > 0 {
				flush()
				current = &domain.DiffFile{}
			}
			if current.Path == "" {
				current.Path = headerPath(line)
			}
		case strings.HasPrefix(line, "+++ "):
			if current == nil {
				current = &domain.DiffFile{}
			}
			if p := headerPath(line); p != "" {
				current.Path = p
			}
		default:
			m := hunkHeader.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if current == nil {
				current = &domain.DiffFile{}
			}
			oldLeft, newLeft = hunkLen(m[1]), hunkLen(m[2])
		}
	}
	flush()

	return summary
}

// hunkLen reads an optional hunk length, which defaults to one.
func hunkLen(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// gitDiffPath takes the b/ side of "diff --git a/x b/x".
func gitDiffPath(line string) string {
	rest := strings.TrimPrefix(line, "diff --git ")
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return rest[i+3:]
	}
	return rest
}

func headerPath(line string) string {
	p := strings.TrimSpace(line[4:])
	if i := strings.IndexByte(p, '\t'); i >= 0 {
		p = p[:i]
	}
	if p == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		p = p[2:]
	}
	return p
}
