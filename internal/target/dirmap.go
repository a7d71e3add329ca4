package target

import (
	"path"
	"sort"
	"time"

	"github.com/elliotchance/orderedmap/v2"
)

// DirectoryTargetMap maps a directory, relative to the discovery root, to the
// target names discovered directly in it. Directories and names keep their
// discovery order.
type DirectoryTargetMap struct {
	dirs  *orderedmap.OrderedMap[string, []string]
	Stats DiscoveryStats
}

// DiscoveryStats contains statistics about the discovery process.
type DiscoveryStats struct {
	LinesRead int           // Query output lines inspected
	Skipped   int           // Lines that were not explicit targets under the root
	Duration  time.Duration // Time taken for discovery
}

// NewDirectoryTargetMap creates an empty map.
func NewDirectoryTargetMap() *DirectoryTargetMap {
	return &DirectoryTargetMap{dirs: orderedmap.NewOrderedMap[string, []string]()}
}

// Add records name as discovered in sub. Repeated names are ignored.
func (m *DirectoryTargetMap) Add(sub, name string) {
	sub = cleanDir(sub)
	names, _ := m.dirs.Get(sub)
	for _, existing := range names {
		if existing == name {
			return
		}
	}
	m.dirs.Set(sub, append(names, name))
}

// Directories returns the sub-directories in discovery order.
func (m *DirectoryTargetMap) Directories() []string {
	return m.dirs.Keys()
}

// Names returns the target names discovered in sub, in discovery order.
func (m *DirectoryTargetMap) Names(sub string) []string {
	names, _ := m.dirs.Get(cleanDir(sub))
	return append([]string(nil), names...)
}

// Len returns the number of directories.
func (m *DirectoryTargetMap) Len() int {
	return m.dirs.Len()
}

// TargetCount returns the number of targets across all directories.
func (m *DirectoryTargetMap) TargetCount() int {
	count := 0
	for el := m.dirs.Front(); el != nil; el = el.Next() {
		count += len(el.Value)
	}
	return count
}

// Empty reports whether nothing was discovered.
func (m *DirectoryTargetMap) Empty() bool {
	return m.TargetCount() == 0
}

// Flatten returns explicit identifiers for every discovered target, with
// each directory joined onto root, sorted by (sub-path, target name).
func (m *DirectoryTargetMap) Flatten(root string) []string {
	subs := m.Directories()
	sort.Strings(subs)

	var ids []string
	for _, sub := range subs {
		names := m.Names(sub)
		sort.Strings(names)
		for _, name := range names {
			ids = append(ids, ExplicitTarget(path.Join(cleanDir(root), sub), name))
		}
	}
	return ids
}
