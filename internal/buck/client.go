// Package buck queries the build graph through the buck command line.
package buck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dbsmedya/targets2config/internal/config"
	"github.com/dbsmedya/targets2config/internal/shell"
)

// ErrQueryFailed is returned when the build graph query did not succeed.
var ErrQueryFailed = errors.New("build graph query failed")

// Querier resolves a target expression into newline-delimited identifiers.
type Querier interface {
	Query(ctx context.Context, expression string) ([]byte, error)
}

// Client runs build graph queries in the repository root.
type Client struct {
	runner  shell.Runner
	root    string
	command string
	args    []string
	timeout time.Duration
}

// NewClient creates a Client from the build section of the configuration.
func NewClient(runner shell.Runner, root string, cfg config.BuildConfig) *Client {
	return &Client{
		runner:  runner,
		root:    root,
		command: cfg.Command,
		args:    append([]string(nil), cfg.QueryArgs...),
		timeout: time.Duration(cfg.QueryTimeout) * time.Second,
	}
}

// Query runs `<command> <query args...> <expression>` and returns the raw output.
func (c *Client) Query(ctx context.Context, expression string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), c.args...), expression)
	out, err := c.runner.Output(ctx, c.root, c.command, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrQueryFailed, expression, err)
	}
	return out, nil
}

// KindExpression restricts expression to rules whose kind matches pattern.
// An empty pattern returns expression unchanged.
func KindExpression(pattern, expression string) string {
	if pattern == "" {
		return expression
	}
	return fmt.Sprintf("kind('%s', %s)", pattern, expression)
}
