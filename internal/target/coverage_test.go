package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCoverage(t *testing.T) {
	t.Run("single line", func(t *testing.T) {
		c := ParseCoverage([]byte("a"))
		assert.Equal(t, 1, c.Len())
		assert.True(t, c.Contains("a"))
	})

	t.Run("trailing newline discarded", func(t *testing.T) {
		c := ParseCoverage([]byte("//a/b:x\n//a/b:y\n"))
		assert.Equal(t, NewCoverage("//a/b:x", "//a/b:y"), c)
	})

	t.Run("carriage returns and blank lines", func(t *testing.T) {
		c := ParseCoverage([]byte("a\r\n\r\n\nb\r\n"))
		assert.Equal(t, NewCoverage("a", "b"), c)
	})

	t.Run("empty output", func(t *testing.T) {
		assert.Equal(t, 0, ParseCoverage(nil).Len())
		assert.Equal(t, 0, ParseCoverage([]byte("\n")).Len())
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		assert.Equal(t, 1, ParseCoverage([]byte("a\na")).Len())
	})
}

func TestCoverageSubsetOf(t *testing.T) {
	a := NewCoverage("a")
	ab := NewCoverage("a", "b")
	c := NewCoverage("c")
	empty := NewCoverage()

	assert.True(t, a.SubsetOf(ab))
	assert.True(t, a.SubsetOf(a))
	assert.False(t, ab.SubsetOf(a))
	assert.False(t, c.SubsetOf(ab))
	assert.True(t, empty.SubsetOf(a))
	assert.True(t, empty.SubsetOf(empty))
}

func TestCoverageIsLiteral(t *testing.T) {
	assert.True(t, NewCoverage("//c:c").IsLiteral("//c:c"))
	assert.False(t, NewCoverage("//c:c", "//c:d").IsLiteral("//c:c"))
	assert.False(t, NewCoverage().IsLiteral("//c:c"))
}
