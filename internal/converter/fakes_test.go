package converter

import (
	"context"
	"fmt"
	"strings"

	"github.com/dbsmedya/targets2config/internal/checker"
	"github.com/dbsmedya/targets2config/internal/suppress"
	"github.com/dbsmedya/targets2config/internal/target"
	"github.com/dbsmedya/targets2config/internal/vcs"
)

// events is a shared call log used to assert collaborator ordering.
type events []string

func (e *events) add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

func (e *events) with(prefix string) []string {
	var out []string
	for _, ev := range *e {
		if strings.HasPrefix(ev, prefix) {
			out = append(out, ev)
		}
	}
	return out
}

type fakeExpander struct {
	log     *events
	targets map[string]map[string][]string // dir -> sub -> names
	globs   []*int
}

func (f *fakeExpander) Targets(_ context.Context, root string, globThreshold *int) ([]string, *target.DirectoryTargetMap) {
	f.log.add("expand %s", root)
	f.globs = append(f.globs, globThreshold)
	dirs := target.NewDirectoryTargetMap()
	for sub, names := range f.targets[root] {
		for _, name := range names {
			dirs.Add(sub, name)
		}
	}
	if dirs.Empty() {
		return nil, dirs
	}
	if globThreshold != nil && dirs.TargetCount() > *globThreshold {
		return []string{target.Recursive(root)}, dirs
	}
	return dirs.Flatten(root), dirs
}

type fakeReducer struct {
	log   *events
	calls [][]string
}

func (f *fakeReducer) Deduplicate(_ context.Context, targets []string) []string {
	f.log.add("dedupe %d", len(targets))
	f.calls = append(f.calls, append([]string(nil), targets...))
	return append([]string(nil), targets...)
}

type fakeChecker struct {
	log  *events
	errs checker.Errors
	err  error
	dirs []string
}

func (f *fakeChecker) Check(_ context.Context, dir string) (checker.Errors, error) {
	f.log.add("check %s", dir)
	f.dirs = append(f.dirs, dir)
	return f.errs, f.err
}

type fakeSuppressor struct {
	log        *events
	suppressed []checker.Errors
	localModes map[string]suppress.LocalMode
	unignored  []string // files reported by RemoveForeignIgnores
	err        error
	ignoreErr  error
}

func (f *fakeSuppressor) RemoveForeignIgnores(_ context.Context, dir string) ([]string, error) {
	f.log.add("unignore %s", dir)
	return f.unignored, f.ignoreErr
}

func (f *fakeSuppressor) Suppress(_ context.Context, dir string, errs checker.Errors) ([]string, error) {
	f.log.add("suppress %s %d", dir, len(errs))
	f.suppressed = append(f.suppressed, errs)
	if f.err != nil {
		return nil, f.err
	}
	var files []string
	for _, e := range errs {
		files = append(files, dir+"/"+e.Path)
	}
	return files, nil
}

func (f *fakeSuppressor) AddLocalMode(_ context.Context, file string, mode suppress.LocalMode) (bool, error) {
	f.log.add("local-mode %s %s", file, mode)
	if f.localModes == nil {
		f.localModes = make(map[string]suppress.LocalMode)
	}
	f.localModes[file] = mode
	return true, nil
}

type fakeCleaner struct {
	log   *events
	calls [][]string
	err   error
}

func (f *fakeCleaner) RemoveTypingFields(_ context.Context, dirs []string) ([]string, error) {
	f.log.add("clean %s", strings.Join(dirs, ","))
	f.calls = append(f.calls, dirs)
	return nil, f.err
}

type fakeLinter struct {
	log *events
	err error
}

func (f *fakeLinter) Lint(_ context.Context, dir string) error {
	f.log.add("lint %s", dir)
	return f.err
}

type fakeFormatter struct {
	log *events
	err error
}

func (f *fakeFormatter) Format(_ context.Context, files []string) error {
	f.log.add("format %s", strings.Join(files, ","))
	return f.err
}

type fakeRepository struct {
	log       *events
	staged    [][]string
	submitted []string
	reverted  int
	notRepo   bool
}

func (f *fakeRepository) Stage(_ context.Context, paths []string) error {
	f.log.add("stage %s", strings.Join(paths, ","))
	f.staged = append(f.staged, append([]string(nil), paths...))
	return nil
}

func (f *fakeRepository) Submit(_ context.Context, message string) error {
	f.log.add("submit")
	f.submitted = append(f.submitted, message)
	return nil
}

func (f *fakeRepository) RevertAll(_ context.Context) error {
	f.log.add("revert")
	f.reverted++
	return nil
}

func (f *fakeRepository) IsRepository(_ context.Context) error {
	if f.notRepo {
		return fmt.Errorf("%w: /repo", vcs.ErrNotRepository)
	}
	return nil
}
