// Package target models build target identifiers, the coverage sets they
// resolve to, and the per-directory map of discovered targets.
package target

import (
	"path"
	"strings"
)

// Kind classifies the shape of a target identifier.
type Kind int

const (
	// KindExplicit is a single target: //path:name.
	KindExplicit Kind = iota
	// KindPackage covers every target directly in a package: //path:
	KindPackage
	// KindRecursive covers every target under a path: //path/...
	KindRecursive
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindRecursive:
		return "recursive"
	default:
		return "explicit"
	}
}

const (
	cellPrefix      = "//"
	recursiveSuffix = "/..."
)

// KindOf returns the shape of id.
func KindOf(id string) Kind {
	switch {
	case strings.HasSuffix(id, recursiveSuffix) || id == cellPrefix+"...":
		return KindRecursive
	case strings.HasSuffix(id, ":"):
		return KindPackage
	default:
		return KindExplicit
	}
}

// IsWildcard reports whether id covers a set of targets rather than one.
func IsWildcard(id string) bool {
	return KindOf(id) != KindExplicit
}

// Recursive returns the recursive wildcard for dir, e.g. //dir/...
func Recursive(dir string) string {
	dir = cleanDir(dir)
	if dir == "" {
		return cellPrefix + "..."
	}
	return cellPrefix + dir + recursiveSuffix
}

// ExplicitTarget returns the explicit identifier //dir:name.
func ExplicitTarget(dir, name string) string {
	return cellPrefix + cleanDir(dir) + ":" + name
}

// Split breaks an explicit or package identifier into its package path and
// target name. ok is false for recursive wildcards and strings that are not
// build target addresses.
func Split(id string) (pkg, name string, ok bool) {
	rest, found := strings.CutPrefix(id, cellPrefix)
	if !found || KindOf(id) == KindRecursive {
		return "", "", false
	}
	pkg, name, found = strings.Cut(rest, ":")
	if !found {
		return "", "", false
	}
	return pkg, name, true
}

// cleanDir normalizes a repository relative directory; the root becomes "".
func cleanDir(dir string) string {
	dir = path.Clean(strings.Trim(dir, "/"))
	if dir == "." {
		return ""
	}
	return dir
}
