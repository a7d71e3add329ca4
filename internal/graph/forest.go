// Package graph links directories holding configuration files into a forest
// where every directory points at its nearest configured ancestor.
package graph

import (
	"path"
	"sort"
	"strings"
)

// Node is a configured directory.
type Node struct {
	Dir    string // repository relative, "." for the root
	Depth  int    // number of path segments, 0 for the root
	Parent string // nearest configured ancestor, empty for roots
}

// Forest holds directories and their nearest-ancestor edges.
type Forest struct {
	Nodes    map[string]*Node    // directory -> node
	Children map[string][]string // directory -> nearest configured descendants
}

// NewForest creates an empty forest.
func NewForest() *Forest {
	return &Forest{
		Nodes:    make(map[string]*Node),
		Children: make(map[string][]string),
	}
}

// Add inserts dir and re-links the forest so every node points at its
// nearest added ancestor. Adding a directory twice is a no-op.
func (f *Forest) Add(dir string) {
	dir = Clean(dir)
	if f.HasNode(dir) {
		return
	}
	f.Nodes[dir] = &Node{Dir: dir, Depth: Depth(dir)}
	f.link()
}

// link recomputes every parent edge. Insertion order never matters.
func (f *Forest) link() {
	f.Children = make(map[string][]string, len(f.Nodes))
	for _, node := range f.Nodes {
		node.Parent = ""
		for ancestor := parentDir(node.Dir); ancestor != ""; ancestor = parentDir(ancestor) {
			if f.HasNode(ancestor) {
				node.Parent = ancestor
				break
			}
		}
		if node.Parent != "" {
			f.Children[node.Parent] = append(f.Children[node.Parent], node.Dir)
		}
	}
	for _, children := range f.Children {
		sortByDepth(children)
	}
}

// HasNode reports whether dir was added.
func (f *Forest) HasNode(dir string) bool {
	_, ok := f.Nodes[Clean(dir)]
	return ok
}

// Len returns the number of directories.
func (f *Forest) Len() int {
	return len(f.Nodes)
}

// GetChildren returns the directories whose nearest configured ancestor is dir.
func (f *Forest) GetChildren(dir string) []string {
	return f.Children[Clean(dir)]
}

// Roots returns the directories without a configured ancestor, ordered by
// (depth, path).
func (f *Forest) Roots() []string {
	var roots []string
	for dir, degree := range f.CalculateInDegrees() {
		if degree == 0 {
			roots = append(roots, dir)
		}
	}
	sortByDepth(roots)
	return roots
}

// Descendants returns every directory nested under dir, ordered by
// (depth, path).
func (f *Forest) Descendants(dir string) []string {
	var out []string
	queue := append([]string(nil), f.GetChildren(dir)...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		out = append(out, next)
		queue = append(queue, f.GetChildren(next)...)
	}
	sortByDepth(out)
	return out
}

// Clean normalizes a repository relative directory. The root is ".".
func Clean(dir string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return "."
	}
	return path.Clean(dir)
}

// Depth returns the number of path segments in dir.
func Depth(dir string) int {
	dir = Clean(dir)
	if dir == "." {
		return 0
	}
	return strings.Count(dir, "/") + 1
}

func parentDir(dir string) string {
	if dir == "." {
		return ""
	}
	return path.Dir(dir)
}

func sortByDepth(dirs []string) {
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := Depth(dirs[i]), Depth(dirs[j])
		if di != dj {
			return di < dj
		}
		return dirs[i] < dirs[j]
	})
}
