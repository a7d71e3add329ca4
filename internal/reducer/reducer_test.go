package reducer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/targets2config/internal/buck"
	"github.com/dbsmedya/targets2config/internal/logger"
)

// scriptedQuerier returns its outputs in order and fails once they run out.
type scriptedQuerier struct {
	outputs []result
	calls   []string
}

type result struct {
	out string
	err error
}

func outputs(outs ...string) *scriptedQuerier {
	q := &scriptedQuerier{}
	for _, o := range outs {
		q.outputs = append(q.outputs, result{out: o})
	}
	return q
}

func (q *scriptedQuerier) Query(_ context.Context, expression string) ([]byte, error) {
	q.calls = append(q.calls, expression)
	if len(q.outputs) == 0 {
		return nil, fmt.Errorf("unexpected query for %s", expression)
	}
	r := q.outputs[0]
	q.outputs = q.outputs[1:]
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.out), nil
}

// mapQuerier answers from a fixed table.
type mapQuerier map[string]string

func (q mapQuerier) Query(_ context.Context, expression string) ([]byte, error) {
	out, ok := q[expression]
	if !ok {
		return nil, fmt.Errorf("%w: %s", buck.ErrQueryFailed, expression)
	}
	return []byte(out), nil
}

func dedupe(t *testing.T, q buck.Querier, targets ...string) []string {
	t.Helper()
	return New(q, logger.NewNop()).Deduplicate(context.Background(), targets)
}

func TestDeduplicateSingleTarget(t *testing.T) {
	q := outputs()
	assert.Equal(t, []string{"//a:a"}, dedupe(t, q, "//a:a"))
	assert.Empty(t, q.calls)
}

func TestDeduplicateEmpty(t *testing.T) {
	q := outputs()
	assert.Empty(t, dedupe(t, q))
	assert.Empty(t, q.calls)
}

func TestDeduplicateDisjointWildcards(t *testing.T) {
	q := outputs("a", "b")
	assert.Equal(t, []string{"//a/...", "//b/..."}, dedupe(t, q, "//a/...", "//b/..."))
	assert.Equal(t, []string{"//a/...", "//b/..."}, q.calls)
}

func TestDeduplicateEqualCoverageKeepsEarlier(t *testing.T) {
	q := outputs("a", "a")
	assert.Equal(t, []string{"//a/..."}, dedupe(t, q, "//a/...", "//b/..."))
	assert.Len(t, q.calls, 2)
}

func TestDeduplicateLaterSupersetKeepsBoth(t *testing.T) {
	q := outputs("a", "a\nb")
	assert.Equal(t, []string{"//a/...", "//b/..."}, dedupe(t, q, "//a/...", "//b/..."))
}

func TestDeduplicateExplicitSubsumedByWildcard(t *testing.T) {
	q := outputs("a", "//c:c")
	assert.Equal(t, []string{"//a/...", "//b/..."}, dedupe(t, q, "//a/...", "//b/...", "//c:c"))
	// The explicit target is never queried.
	assert.Equal(t, []string{"//a/...", "//b/..."}, q.calls)
}

func TestDeduplicatePackageWildcard(t *testing.T) {
	q := outputs("//a/b:x\n//a/b:y")
	assert.Equal(t, []string{"//a/b:"}, dedupe(t, q, "//a/b:", "//a/b:x"))
	assert.Equal(t, []string{"//a/b:"}, q.calls)
}

func TestDeduplicatePartialOverlapKept(t *testing.T) {
	q := mapQuerier{
		"//a/...": "//a:x\n//a:y",
		"//b/...": "//a:y\n//b:z",
	}
	assert.Equal(t, []string{"//a/...", "//b/..."}, dedupe(t, q, "//a/...", "//b/..."))
}

func TestDeduplicateStableOrder(t *testing.T) {
	q := mapQuerier{
		"//z/...": "//z:1\n//z:2",
		"//a/...": "//a:1",
	}
	got := dedupe(t, q, "//z/...", "//m:m", "//z:1", "//a/...", "//a:1")
	assert.Equal(t, []string{"//z/...", "//m:m", "//a/..."}, got)
}

func TestDeduplicateExactDuplicates(t *testing.T) {
	t.Run("explicit", func(t *testing.T) {
		q := outputs()
		assert.Equal(t, []string{"//a:a", "//b:b"}, dedupe(t, q, "//a:a", "//b:b", "//a:a"))
		assert.Empty(t, q.calls)
	})

	t.Run("wildcard repeat needs no query", func(t *testing.T) {
		q := outputs()
		assert.Equal(t, []string{"//a/..."}, dedupe(t, q, "//a/...", "//a/..."))
		assert.Empty(t, q.calls)
	})
}

func TestDeduplicateFailedQuery(t *testing.T) {
	t.Run("failed identifier is kept and never subsumes", func(t *testing.T) {
		q := &scriptedQuerier{outputs: []result{
			{err: errors.New("timeout")},
			{out: "//b:x"},
		}}
		got := dedupe(t, q, "//a/...", "//b/...", "//b:x")
		assert.Equal(t, []string{"//a/...", "//b/..."}, got)
		assert.Equal(t, []string{"//a/...", "//b/..."}, q.calls)
	})

	t.Run("failed identifier can still be subsumed", func(t *testing.T) {
		q := mapQuerier{"//all/...": "//sub/...\n//all:x"}
		got := dedupe(t, q, "//all/...", "//sub/...")
		assert.Equal(t, []string{"//all/..."}, got)
	})

	t.Run("remaining identifiers still processed", func(t *testing.T) {
		q := mapQuerier{
			"//b/...": "//b:1\n//b:2",
			"//c/...": "//b:1",
		}
		got := dedupe(t, q, "//broken/...", "//b/...", "//c/...")
		assert.Equal(t, []string{"//broken/...", "//b/..."}, got)
	})
}

func TestDeduplicateLiteralEcho(t *testing.T) {
	// A wildcard query echoing itself is not a build graph address and
	// cannot act as a superset. Its exact repeat is still dropped.
	q := outputs("//x/...", "//y:y")
	got := dedupe(t, q, "//x/...", "//y/...", "//x/...")
	assert.Equal(t, []string{"//x/...", "//y/..."}, got)
	assert.Equal(t, []string{"//x/...", "//y/..."}, q.calls)
}

func TestDeduplicateRepeatedFailedWildcard(t *testing.T) {
	q := &scriptedQuerier{outputs: []result{{err: errors.New("timeout")}}}
	r := New(q, logger.NewNop())

	got, stats := r.DeduplicateWithStats(context.Background(), []string{"//x/...", "//x/...", "//y:y"})
	assert.Equal(t, []string{"//x/...", "//y:y"}, got)
	assert.Equal(t, Stats{Input: 3, Output: 2, Queries: 1, Failed: 1, Repeated: 1}, stats)
}

func TestDeduplicateOnlyRepeats(t *testing.T) {
	q := outputs()
	assert.Equal(t, []string{"//x/..."}, dedupe(t, q, "//x/...", "//x/..."))
	assert.Empty(t, q.calls)
}

func TestDeduplicateEmptyCoverage(t *testing.T) {
	q := mapQuerier{
		"//a/...":     "//a:x",
		"//empty/...": "",
	}
	assert.Equal(t, []string{"//a/..."}, dedupe(t, q, "//a/...", "//empty/..."))
}

func TestDeduplicateIdempotent(t *testing.T) {
	q := mapQuerier{
		"//a/...": "//a:1\n//a/b:2",
		"//a/b:":  "//a/b:2",
		"//c/...": "//c:1",
		"//d/...": "//c:1\n//d:1",
	}
	input := []string{"//a/...", "//a/b:", "//c/...", "//a:1", "//d/...", "//e:e"}

	r := New(q, logger.NewNop())
	first := r.Deduplicate(context.Background(), input)
	second := r.Deduplicate(context.Background(), first)

	assert.Equal(t, []string{"//a/...", "//c/...", "//d/...", "//e:e"}, first)
	assert.Equal(t, first, second)
}

func TestDeduplicateDoesNotMutateInput(t *testing.T) {
	input := []string{"//a/...", "//b/..."}
	_ = dedupe(t, outputs("a", "a"), input...)
	assert.Equal(t, []string{"//a/...", "//b/..."}, input)
}

func TestDeduplicateWithStats(t *testing.T) {
	q := &scriptedQuerier{outputs: []result{
		{out: "a"},
		{err: errors.New("boom")},
	}}
	r := New(q, logger.NewNop())

	got, stats := r.DeduplicateWithStats(context.Background(), []string{"//a/...", "//b/...", "//a:a"})
	require.Equal(t, []string{"//a/...", "//b/...", "//a:a"}, got)
	assert.Equal(t, Stats{Input: 3, Output: 3, Queries: 2, Failed: 1}, stats)
}
