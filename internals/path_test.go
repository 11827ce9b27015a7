package internals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePathConvertsBackslashes(t *testing.T) {
	assert.Equal(t, "sub/a.txt", NormalizePath(`sub\a.txt`))
}

func TestNormalizePathStripsLeadingSlash(t *testing.T) {
	assert.Equal(t, "a.txt", NormalizePath("/a.txt"))
}

func TestNormalizePathCollapsesDotSegments(t *testing.T) {
	assert.Equal(t, "sub/a.txt", NormalizePath("sub/./a.txt"))
}

func TestNormalizePathRootIsEmptyString(t *testing.T) {
	assert.Equal(t, "", NormalizePath("."))
	assert.Equal(t, "", NormalizePath(""))
}

func TestCompareNamesIsByteWiseNotLocale(t *testing.T) {
	// byte-wise ordering puts uppercase before lowercase, unlike most
	// locale collations
	assert.True(t, CompareNames("B", "a") < 0)
}
