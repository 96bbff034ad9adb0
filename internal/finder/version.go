package finder

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// versionPattern is the semver.org reference pattern without anchors, so it
// finds the first semantic version embedded anywhere in a string.
var versionPattern = regexp.MustCompile(
	`(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
		`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?`)

// ExtractVersion returns the first semantic-version-looking substring of s,
// or "" when there is none.
func ExtractVersion(s string) string {
	return versionPattern.FindString(s)
}

func parseVersion(s string) *semver.Version {
	raw := ExtractVersion(s)
	if raw == "" {
		return nil
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		// digits beyond uint64
		return nil
	}
	return v
}

// CompareVersions orders two template version strings. When both carry a
// semantic version they compare by semver precedence; a string without one
// sorts after a string with one; two strings without one compare as text.
func CompareVersions(a, b string) int {
	va, vb := parseVersion(a), parseVersion(b)
	switch {
	case va != nil && vb != nil:
		return va.Compare(vb)
	case va != nil:
		return -1
	case vb != nil:
		return 1
	}
	return strings.Compare(a, b)
}
