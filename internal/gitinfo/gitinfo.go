// Package gitinfo gathers read-only repository orientation for sessions:
// current branch, working tree status and recent commits. Orientation is
// advisory context for delegated agents, so every failure degrades to
// empty output instead of an error. Projects that are not git
// repositories, or machines without git, simply orient blank.
package gitinfo

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/specflow-dev/specflow/internal/logging"
)

// DefaultTimeout bounds a single git command.
const DefaultTimeout = 10 * time.Second

// CommandExecutor is a function type that executes a command in a
// directory and returns its combined output.
// This allows for dependency injection in tests.
type CommandExecutor func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// defaultExecutor runs commands using os/exec.
var defaultExecutor CommandExecutor = func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Orientation is a snapshot of where a session starts from.
type Orientation struct {
	Branch        string   `json:"branch,omitempty"`
	Status        string   `json:"status,omitempty"`
	RecentCommits []string `json:"recent_commits,omitempty"`
}

// Empty reports whether no orientation could be gathered.
func (o Orientation) Empty() bool {
	return o.Branch == "" && o.Status == "" && len(o.RecentCommits) == 0
}

// Client inspects one git repository.
type Client struct {
	dir      string
	timeout  time.Duration
	executor CommandExecutor
	log      *logging.Logger
}

// New creates a Client for the repository at dir. A zero timeout means
// DefaultTimeout.
func New(dir string, timeout time.Duration, log *logging.Logger) *Client {
	return NewWithExecutor(dir, timeout, log, defaultExecutor)
}

// NewWithExecutor creates a Client with a custom executor.
// This is primarily useful for testing.
func NewWithExecutor(dir string, timeout time.Duration, log *logging.Logger, executor CommandExecutor) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.NopLogger()
	}
	return &Client{dir: dir, timeout: timeout, executor: executor, log: log}
}

// run executes one git command under the client's timeout and returns
// trimmed output. Failures are logged at debug level and degrade to "".
func (c *Client) run(ctx context.Context, args ...string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.executor(ctx, c.dir, "git", args...)
	if err != nil {
		c.log.Debug("git command failed", "args", strings.Join(args, " "), "error", err)
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Branch returns the current branch name, or "" when unavailable.
func (c *Client) Branch(ctx context.Context) string {
	return c.run(ctx, "branch", "--show-current")
}

// Status returns the short working tree status, or "" when clean or
// unavailable.
func (c *Client) Status(ctx context.Context) string {
	return c.run(ctx, "status", "--short")
}

// RecentCommits returns up to n recent commits in oneline form.
func (c *Client) RecentCommits(ctx context.Context, n int) []string {
	if n <= 0 {
		return nil
	}
	out := c.run(ctx, "log", "-n", strconv.Itoa(n), "--oneline")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Orient gathers the full orientation snapshot.
func (c *Client) Orient(ctx context.Context) Orientation {
	return Orientation{
		Branch:        c.Branch(ctx),
		Status:        c.Status(ctx),
		RecentCommits: c.RecentCommits(ctx, 5),
	}
}
