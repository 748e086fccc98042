package gitinfo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specflow-dev/specflow/internal/testutil"
)

// fakeExecutor returns canned output keyed by the git subcommand.
func fakeExecutor(outputs map[string]string, err error) CommandExecutor {
	return func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, errors.New("no args")
		}
		return []byte(outputs[args[0]]), nil
	}
}

func TestOrient(t *testing.T) {
	outputs := map[string]string{
		"branch": "feature/auth\n",
		"status": " M internal/api/users.go\n?? notes.txt\n",
		"log":    "abc1234 add login route\ndef5678 initial commit\n",
	}
	c := NewWithExecutor("/repo", 0, nil, fakeExecutor(outputs, nil))

	o := c.Orient(context.Background())

	if o.Branch != "feature/auth" {
		t.Errorf("branch = %q, want %q", o.Branch, "feature/auth")
	}
	if !strings.Contains(o.Status, "users.go") {
		t.Errorf("status = %q, want working tree entries", o.Status)
	}
	if len(o.RecentCommits) != 2 {
		t.Fatalf("recent commits = %d, want 2", len(o.RecentCommits))
	}
	if o.RecentCommits[0] != "abc1234 add login route" {
		t.Errorf("first commit = %q", o.RecentCommits[0])
	}
	if o.Empty() {
		t.Error("orientation with data should not report empty")
	}
}

func TestOrientDegradesToEmpty(t *testing.T) {
	c := NewWithExecutor("/repo", 0, nil, fakeExecutor(nil, errors.New("git: command not found")))

	o := c.Orient(context.Background())

	if !o.Empty() {
		t.Errorf("orientation = %+v, want empty when git fails", o)
	}
}

func TestRunAppliesTimeout(t *testing.T) {
	var gotDeadline bool
	exec := func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		_, gotDeadline = ctx.Deadline()
		return []byte("main"), nil
	}
	c := NewWithExecutor("/repo", 2*time.Second, nil, exec)

	if got := c.Branch(context.Background()); got != "main" {
		t.Errorf("branch = %q, want %q", got, "main")
	}
	if !gotDeadline {
		t.Error("executor context should carry a deadline")
	}
}

func TestRecentCommitsCount(t *testing.T) {
	var gotArgs []string
	exec := func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte("abc one"), nil
	}
	c := NewWithExecutor("/repo", 0, nil, exec)

	commits := c.RecentCommits(context.Background(), 3)

	if len(commits) != 1 {
		t.Fatalf("commits = %v, want one line", commits)
	}
	want := "log -n 3 --oneline"
	if strings.Join(gotArgs, " ") != want {
		t.Errorf("git args = %q, want %q", strings.Join(gotArgs, " "), want)
	}

	if got := c.RecentCommits(context.Background(), 0); got != nil {
		t.Errorf("RecentCommits(0) = %v, want nil", got)
	}
}

func TestStatusCleanTree(t *testing.T) {
	c := NewWithExecutor("/repo", 0, nil, fakeExecutor(map[string]string{"status": "\n"}, nil))

	if got := c.Status(context.Background()); got != "" {
		t.Errorf("status = %q, want empty for clean tree", got)
	}
}

// TestOrientAgainstRealRepository runs the default executor against an
// actual git repository instead of canned output.
func TestOrientAgainstRealRepository(t *testing.T) {
	testutil.SkipIfNoGit(t)

	dir := testutil.SetupTestRepoWithContent(t, map[string]string{
		"api/users.go": "package api\n",
	})
	testutil.CreateBranch(t, dir, "feature/checkout")
	testutil.CheckoutBranch(t, dir, "feature/checkout")
	if got := testutil.GetCurrentBranch(t, dir); got != "feature/checkout" {
		t.Fatalf("fixture branch = %q, want %q", got, "feature/checkout")
	}
	testutil.CommitFile(t, dir, "api/checkout.go", "package api\n", "Add checkout endpoint")

	if err := os.WriteFile(filepath.Join(dir, "api", "users.go"), []byte("package api\n\n// handlers\n"), 0o644); err != nil {
		t.Fatalf("modify users.go: %v", err)
	}
	if !testutil.HasUncommittedChanges(t, dir) {
		t.Fatal("fixture should have uncommitted changes")
	}

	o := New(dir, 0, nil).Orient(context.Background())

	if o.Branch != "feature/checkout" {
		t.Errorf("branch = %q, want %q", o.Branch, "feature/checkout")
	}
	if !strings.Contains(o.Status, "api/users.go") {
		t.Errorf("status = %q, want modified users.go entry", o.Status)
	}
	if len(o.RecentCommits) != 3 {
		t.Fatalf("recent commits = %v, want 3", o.RecentCommits)
	}
	if !strings.Contains(o.RecentCommits[0], "Add checkout endpoint") {
		t.Errorf("newest commit = %q, want checkout endpoint commit", o.RecentCommits[0])
	}
	if !strings.Contains(o.RecentCommits[2], "Initial commit") {
		t.Errorf("oldest commit = %q, want initial commit", o.RecentCommits[2])
	}
}
