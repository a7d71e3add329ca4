// Package expander discovers the build targets owned by a directory.
package expander

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"github.com/dbsmedya/targets2config/internal/buck"
	"github.com/dbsmedya/targets2config/internal/logger"
	"github.com/dbsmedya/targets2config/internal/target"
)

// Expander is the TargetExpander.
type Expander struct {
	querier buck.Querier
	kinds   string
	logger  *logger.Logger
}

// New creates an Expander. kinds optionally restricts discovery to rules
// whose kind matches the pattern.
func New(querier buck.Querier, kinds string, log *logger.Logger) *Expander {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Expander{querier: querier, kinds: kinds, logger: log}
}

// Discover returns every directory under root containing targets, with the
// target names found directly in it. A root that is not addressable in the
// build graph yields an empty map, not an error.
func (e *Expander) Discover(ctx context.Context, root string) *target.DirectoryTargetMap {
	start := time.Now()
	dirs := target.NewDirectoryTargetMap()
	log := e.logger.WithDirectory(root)

	expression := buck.KindExpression(e.kinds, target.Recursive(root))
	output, err := e.querier.Query(ctx, expression)
	if err != nil {
		log.Warnw("Target discovery query failed", "expression", expression, "error", err)
		dirs.Stats.Duration = time.Since(start)
		return dirs
	}

	prefix := cleanRoot(root)
	for _, line := range bytes.Split(output, []byte("\n")) {
		id := strings.TrimSpace(string(line))
		if id == "" {
			continue
		}
		dirs.Stats.LinesRead++

		pkg, name, ok := target.Split(id)
		if !ok || name == "" {
			dirs.Stats.Skipped++
			log.Debugw("Skipping non-explicit query result", "target", id)
			continue
		}
		sub, ok := relative(prefix, pkg)
		if !ok {
			dirs.Stats.Skipped++
			log.Debugw("Skipping target outside root", "target", id)
			continue
		}
		dirs.Add(sub, name)
	}

	dirs.Stats.Duration = time.Since(start)
	log.Debugw("Discovered targets",
		"directories", dirs.Len(),
		"targets", dirs.TargetCount(),
		"duration", dirs.Stats.Duration,
	)
	return dirs
}

// Targets flattens the targets discovered under root into sorted explicit
// identifiers. When globThreshold is set and more targets than that are
// found, the single recursive wildcard for root is returned instead.
func (e *Expander) Targets(ctx context.Context, root string, globThreshold *int) ([]string, *target.DirectoryTargetMap) {
	dirs := e.Discover(ctx, root)
	if dirs.Empty() {
		return nil, dirs
	}
	if globThreshold != nil && dirs.TargetCount() > *globThreshold {
		e.logger.WithDirectory(root).Infow("Using recursive wildcard instead of explicit targets",
			"targets", dirs.TargetCount(),
			"threshold", *globThreshold,
		)
		return []string{target.Recursive(root)}, dirs
	}
	return dirs.Flatten(root), dirs
}

func cleanRoot(root string) string {
	root = path.Clean(strings.Trim(root, "/"))
	if root == "." {
		return ""
	}
	return root
}

// relative returns pkg relative to root, by whole path segments.
func relative(root, pkg string) (string, bool) {
	if root == "" {
		return pkg, true
	}
	if pkg == root {
		return "", true
	}
	rest, ok := strings.CutPrefix(pkg, root+"/")
	return rest, ok
}
