// Package shelltest provides a scripted shell.Runner for tests.
package shelltest

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one invocation of the fake runner.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response is the scripted result of one call.
type Response struct {
	Output []byte
	Err    error
}

// FakeRunner returns scripted responses in order and records every call.
// When the script is exhausted it returns an error, mirroring a mock whose
// side effects ran out.
type FakeRunner struct {
	mu        sync.Mutex
	responses []Response
	calls     []Call
	// Handler, when set, is consulted instead of the script.
	Handler func(call Call) ([]byte, error)
}

// NewFakeRunner creates a FakeRunner with the given scripted responses.
func NewFakeRunner(responses ...Response) *FakeRunner {
	return &FakeRunner{responses: responses}
}

// Output implements shell.Runner.
func (f *FakeRunner) Output(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}
	f.calls = append(f.calls, call)

	if f.Handler != nil {
		return f.Handler(call)
	}
	if len(f.responses) == 0 {
		return nil, fmt.Errorf("unexpected call: %s", call)
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp.Output, resp.Err
}

// Calls returns a copy of the recorded calls.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CommandLines returns the recorded calls rendered as command lines.
func (f *FakeRunner) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Remaining reports how many scripted responses were not consumed.
func (f *FakeRunner) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.responses)
}
