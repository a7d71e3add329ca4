package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		id       string
		expected Kind
	}{
		{"//a:a", KindExplicit},
		{"//a/b:x", KindExplicit},
		{"//a/b:", KindPackage},
		{"//a/...", KindRecursive},
		{"//...", KindRecursive},
		{"a", KindExplicit},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.id))
		})
	}
}

func TestIsWildcard(t *testing.T) {
	assert.True(t, IsWildcard("//a/..."))
	assert.True(t, IsWildcard("//a/b:"))
	assert.False(t, IsWildcard("//a/b:x"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "explicit", KindExplicit.String())
	assert.Equal(t, "package", KindPackage.String())
	assert.Equal(t, "recursive", KindRecursive.String())
}

func TestRecursive(t *testing.T) {
	assert.Equal(t, "//subdirectory/...", Recursive("subdirectory"))
	assert.Equal(t, "//a/b/...", Recursive("a/b/"))
	assert.Equal(t, "//...", Recursive("."))
	assert.Equal(t, "//...", Recursive(""))
}

func TestExplicitTarget(t *testing.T) {
	assert.Equal(t, "//subdirectory/a:target_one", ExplicitTarget("subdirectory/a", "target_one"))
	assert.Equal(t, "//a:x", ExplicitTarget("./a/", "x"))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		id   string
		pkg  string
		name string
		ok   bool
	}{
		{"//a/b:x", "a/b", "x", true},
		{"//a/b:", "a/b", "", true},
		{"//a/...", "", "", false},
		{"a:x", "", "", false},
		{"//a/b", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			pkg, name, ok := Split(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.pkg, pkg)
			assert.Equal(t, tt.name, name)
		})
	}
}
