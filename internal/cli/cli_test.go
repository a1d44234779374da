package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/gitgraph/internal/config"
	"github.com/kurobon/gitgraph/internal/git"
)

type fixture struct {
	dir        string
	root, next plumbing.Hash
}

// newFixture commits a.txt twice in a repository on disk.
func newFixture(t *testing.T) fixture {
	t.Helper()
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvLogLevel, "")

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	commit := func(content, msg string) plumbing.Hash {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte(content), 0o644))
		_, err := wt.Add("a.txt")
		require.NoError(t, err)
		when = when.Add(time.Hour)
		sig := &object.Signature{Name: "Tester", Email: "tester@example.com", When: when}
		h, err := wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
		require.NoError(t, err)
		return h
	}

	f := fixture{dir: dir}
	f.root = commit("one\n", "root")
	f.next = commit("one\ntwo\n", "add two")
	return f
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestLog(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, f.dir, "--no-color")
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], f.next.String()[:7]))
	assert.Contains(t, got[0], "• [master] add two")
	assert.Contains(t, got[1], "• root")
	assert.NotContains(t, out, "\x1b[")
}

func TestLog_Max(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "-C", f.dir, "--max", "1")
	require.NoError(t, err)
	assert.Len(t, lines(out), 1)
}

func TestLog_DirtyWorktree(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "a.txt"), []byte("one\ntwo\nthree\n"), 0o644))

	out, err := run(t, f.dir)
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "Unstaged changes")

	out, err = run(t, "stat", "-C", f.dir)
	require.NoError(t, err)
	assert.Equal(t, "1 0 a.txt\n", out)
}

func TestStat(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "stat", "-C", f.dir, f.root.String())
	require.NoError(t, err)
	assert.Contains(t, out, "commit "+f.root.String())
	assert.Contains(t, out, "    root")
	assert.True(t, strings.HasSuffix(out, "\n\n1 0 a.txt\n"), out)

	out, err = run(t, "stat", "-C", f.dir, f.next.String(), "--anchor", f.root.String())
	require.NoError(t, err)
	assert.Equal(t, "1 0 a.txt\n", out)
}

func TestStat_AnchorNeedsRef(t *testing.T) {
	f := newFixture(t)
	_, err := run(t, "stat", "-C", f.dir, "--anchor", f.root.String())
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	f := newFixture(t)

	out, err := run(t, "diff", "-C", f.dir, "a.txt", f.next.String())
	require.NoError(t, err)
	got := lines(out)
	assert.Contains(t, got, "1 1 one")
	assert.Contains(t, got, "2 2 two")
}

func TestErrors(t *testing.T) {
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvBackend, "")
	t.Setenv(config.EnvLogLevel, "")

	_, err := run(t, t.TempDir())
	assert.ErrorIs(t, err, git.ErrNotRepository)

	f := newFixture(t)
	_, err = run(t, f.dir, "--backend", "svn")
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = run(t, f.dir, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gitgraph test\n", out)
}

func TestServe_ShutsDownWithContext(t *testing.T) {
	f := newFixture(t)

	cmd := NewRootCommand("test")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "-C", f.dir, "--addr", "127.0.0.1:0"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, cmd.ExecuteContext(ctx))
}
