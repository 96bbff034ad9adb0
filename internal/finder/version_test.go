package finder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVersion(t *testing.T) {
	cases := map[string]string{
		"1.2.3":                    "1.2.3",
		"v1.2.3":                   "1.2.3",
		"release-10.0.1-rc.1+b.7":  "10.0.1-rc.1+b.7",
		"1.2":                      "",
		"":                         "",
		"non-semantic-version-3":   "",
		"01.2.3":                   "1.2.3",
		"template@2.0.0 and 3.0.0": "2.0.0",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractVersion(in), in)
	}
}

func TestCompareVersions(t *testing.T) {
	assert.Negative(t, CompareVersions("1.0.0", "2.0.0"))
	assert.Negative(t, CompareVersions("1.9.0", "1.10.0"), "numeric, not lexicographic")
	assert.Negative(t, CompareVersions("1.0.0-alpha", "1.0.0"), "prerelease precedes release")
	assert.Negative(t, CompareVersions("1.0.0-alpha", "1.0.0-beta"))
	assert.Zero(t, CompareVersions("v1.0.0", "1.0.0+build.5"))
	assert.Positive(t, CompareVersions("main", "1.0.0"), "no version sorts after a version")
	assert.Negative(t, CompareVersions("1.0.0", "main"))
	assert.Negative(t, CompareVersions("develop", "main"))
}
