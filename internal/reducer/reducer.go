// Package reducer removes redundant build target identifiers from a target
// list without changing the union of targets the list denotes.
package reducer

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"

	"github.com/dbsmedya/targets2config/internal/buck"
	"github.com/dbsmedya/targets2config/internal/logger"
	"github.com/dbsmedya/targets2config/internal/target"
)

// coverage is the resolved CoverageSet of one identifier.
type coverage struct {
	set target.CoverageSet
	// resolved is false when the query failed or echoed the identifier back
	// unexpanded. Unresolved coverage never acts as the superset.
	resolved bool
}

// Stats describes one Deduplicate invocation.
type Stats struct {
	Input    int
	Output   int
	Queries  int
	Failed   int
	Repeated int // exact string repeats dropped before any query
}

// Reducer is the TargetSetReducer.
type Reducer struct {
	querier buck.Querier
	logger  *logger.Logger
}

// New creates a Reducer backed by querier.
func New(querier buck.Querier, log *logger.Logger) *Reducer {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Reducer{querier: querier, logger: log}
}

// Deduplicate drops every identifier whose coverage is a subset of the
// coverage of an earlier surviving identifier. Survivors keep their input
// order. Partially overlapping identifiers are both kept.
func (r *Reducer) Deduplicate(ctx context.Context, targets []string) []string {
	result, _ := r.DeduplicateWithStats(ctx, targets)
	return result
}

// DeduplicateWithStats is Deduplicate, also reporting query statistics.
func (r *Reducer) DeduplicateWithStats(ctx context.Context, targets []string) ([]string, Stats) {
	stats := Stats{Input: len(targets)}
	if len(targets) <= 1 {
		stats.Output = len(targets)
		return append([]string(nil), targets...), stats
	}

	// Equal strings have equal coverage, resolved or not.
	targets = lo.Uniq(targets)
	stats.Repeated = stats.Input - len(targets)

	// Scoped to this call: coverage is never reused across invocations.
	cache, err := lru.New[string, coverage](len(targets))
	if err != nil {
		// Only possible for a non-positive size.
		panic(err)
	}
	resolve := func(id string) coverage {
		if c, ok := cache.Get(id); ok {
			return c
		}
		c := r.query(ctx, id, &stats)
		cache.Add(id, c)
		return c
	}

	alive := make([]bool, len(targets))
	for i := range alive {
		alive[i] = true
	}

	for i := range targets {
		if !alive[i] {
			continue
		}
		for j := i + 1; j < len(targets); j++ {
			if !alive[j] {
				continue
			}
			superset := resolve(targets[i])
			if !superset.resolved {
				// Cannot subsume anything; skip the remaining pairs for i.
				break
			}
			subset := resolve(targets[j])
			if subset.set.SubsetOf(superset.set) {
				r.logger.Debugw("Dropping redundant target",
					"target", targets[j],
					"covered_by", targets[i],
				)
				alive[j] = false
			}
		}
	}

	result := make([]string, 0, len(targets))
	for i, id := range targets {
		if alive[i] {
			result = append(result, id)
		}
	}
	stats.Output = len(result)
	return result, stats
}

// query resolves the coverage of a single identifier. Explicit targets cover
// exactly themselves and are never queried.
func (r *Reducer) query(ctx context.Context, id string, stats *Stats) coverage {
	if !target.IsWildcard(id) {
		return coverage{set: target.NewCoverage(id), resolved: true}
	}

	stats.Queries++
	output, err := r.querier.Query(ctx, id)
	if err != nil {
		stats.Failed++
		r.logger.WithTarget(id).Infow("Failed to query target", "error", err)
		return coverage{set: target.NewCoverage(id), resolved: false}
	}

	set := target.ParseCoverage(output)
	if set.IsLiteral(id) {
		return coverage{set: set, resolved: false}
	}
	return coverage{set: set, resolved: true}
}
