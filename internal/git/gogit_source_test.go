package git

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type testRepo struct {
	t    *testing.T
	repo *gogit.Repository
	wt   *gogit.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	repo, err := gogit.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{t: t, repo: repo, wt: wt}
}

func (r *testRepo) write(path, content string) {
	r.t.Helper()
	require.NoError(r.t, util.WriteFile(r.wt.Filesystem, path, []byte(content), 0644))
}

func (r *testRepo) add(path, content string) {
	r.t.Helper()
	r.write(path, content)
	_, err := r.wt.Add(path)
	require.NoError(r.t, err)
}

func (r *testRepo) commit(msg string, minutes int, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()
	sig := &object.Signature{Name: "Tester", Email: "tester@example.com", When: epoch.Add(time.Duration(minutes) * time.Minute)}
	h, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	require.NoError(r.t, err)
	return h
}

func (r *testRepo) ref(name string, h plumbing.Hash) {
	r.t.Helper()
	require.NoError(r.t, r.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.ReferenceName(name), h)))
}

// mergeHistory builds R <- A, R <- B, M(A, B) with master at M, feature at
// B and a lightweight tag v1 at R.
func mergeHistory(t *testing.T) (r *testRepo, root, a, b, m plumbing.Hash) {
	r = newTestRepo(t)
	r.add("a.txt", "one\n")
	root = r.commit("root", 1)
	r.add("a.txt", "one\ntwo\n")
	a = r.commit("add two", 2)
	r.add("b.txt", "b\n")
	b = r.commit("add b", 3, root)
	m = r.commit("merge feature\n\nbody line", 4, a, b)
	r.ref("refs/heads/feature", b)
	r.ref("refs/tags/v1", root)
	return r, root, a, b, m
}

func abbrev(h plumbing.Hash) Ref {
	return Abbrev(h.String(), 7)
}

func TestGoGitSource_LogOrderAndDecorations(t *testing.T) {
	r, root, a, b, m := mergeHistory(t)
	s := NewGoGitSource(r.repo, DefaultOptions())

	commits, err := s.Log(context.Background())
	require.NoError(t, err)
	require.Len(t, commits, 4)

	refs := make([]Ref, 0, len(commits))
	for _, c := range commits {
		refs = append(refs, c.Ref)
	}
	assert.Equal(t, []Ref{abbrev(m), abbrev(b), abbrev(a), abbrev(root)}, refs)

	assert.Equal(t, []Ref{abbrev(a), abbrev(b)}, commits[0].Parents)
	assert.Equal(t, "master", commits[0].Decoration.Head)
	assert.Equal(t, "merge feature", commits[0].Subject)
	assert.Equal(t, []string{"feature"}, commits[1].Decoration.Branches)
	assert.Equal(t, []string{"v1"}, commits[3].Decoration.Tags)
	assert.Empty(t, commits[3].Parents)
	assert.Equal(t, "Tester", commits[0].AuthorName)
}

func TestGoGitSource_LogMaxCommits(t *testing.T) {
	r, _, _, b, m := mergeHistory(t)
	opts := DefaultOptions()
	opts.MaxCommits = 2
	s := NewGoGitSource(r.repo, opts)

	commits, err := s.Log(context.Background())
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, abbrev(m), commits[0].Ref)
	assert.Equal(t, abbrev(b), commits[1].Ref)
}

func TestGoGitSource_LogEmptyRepository(t *testing.T) {
	r := newTestRepo(t)
	s := NewGoGitSource(r.repo, DefaultOptions())
	commits, err := s.Log(context.Background())
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestGoGitSource_LogSentinels(t *testing.T) {
	r, _, _, _, m := mergeHistory(t)
	r.add("a.txt", "one\ntwo\nthree\n")
	r.write("b.txt", "b\nc\n")
	s := NewGoGitSource(r.repo, DefaultOptions())

	commits, err := s.Log(context.Background())
	require.NoError(t, err)
	require.Len(t, commits, 6)
	assert.Equal(t, Unstaged(7), commits[0].Ref)
	assert.Equal(t, Staged(7), commits[1].Ref)
	assert.Equal(t, []Ref{abbrev(m)}, commits[0].Parents)
	assert.Equal(t, []Ref{abbrev(m)}, commits[1].Parents)
	assert.Equal(t, abbrev(m), commits[2].Ref)
}

func TestGoGitSource_StatsShow(t *testing.T) {
	r, root, a, _, m := mergeHistory(t)
	s := NewGoGitSource(r.repo, DefaultOptions())
	ctx := context.Background()

	stats, err := s.Stats(ctx, Show(CommitTarget(Ref(m.String()))))
	require.NoError(t, err)
	assert.Equal(t, []Stat{{Adds: 1, Path: "b.txt"}}, stats)

	stats, err = s.Stats(ctx, Show(CommitTarget(Ref(a.String()))))
	require.NoError(t, err)
	assert.Equal(t, []Stat{{Adds: 1, Path: "a.txt"}}, stats)

	stats, err = s.Stats(ctx, Show(CommitTarget(Ref(root.String()))))
	require.NoError(t, err)
	assert.Equal(t, []Stat{{Adds: 1, Path: "a.txt"}}, stats)
}

func TestGoGitSource_StatsAnchored(t *testing.T) {
	r, root, _, _, m := mergeHistory(t)
	s := NewGoGitSource(r.repo, DefaultOptions())

	stats, err := s.Stats(context.Background(), Diff(CommitTarget(Ref(m.String())), Ref(root.String())))
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "a.txt", stats[0].Path)
	assert.Equal(t, "b.txt", stats[1].Path)
}

func TestGoGitSource_StatsUncommitted(t *testing.T) {
	r, _, _, _, _ := mergeHistory(t)
	r.add("a.txt", "one\ntwo\nthree\n")
	r.write("b.txt", "b\nc\n")
	s := NewGoGitSource(r.repo, DefaultOptions())
	ctx := context.Background()

	staged, err := s.Stats(ctx, StagedChanges())
	require.NoError(t, err)
	assert.Equal(t, []Stat{{Adds: 1, Path: "a.txt"}}, staged)

	unstaged, err := s.Stats(ctx, UnstagedChanges())
	require.NoError(t, err)
	assert.Equal(t, []Stat{{Adds: 1, Path: "b.txt"}}, unstaged)
}

func TestGoGitSource_FileDiff(t *testing.T) {
	r, _, a, _, _ := mergeHistory(t)
	s := NewGoGitSource(r.repo, DefaultOptions())

	fd, err := s.FileDiff(context.Background(), "a.txt", "", Show(CommitTarget(Ref(a.String()))))
	require.NoError(t, err)
	assert.Contains(t, fd.Lines, "+two")
	assert.Contains(t, fd.Lines, " one")

	var kinds []DiffLineKind
	for _, l := range fd.Meta {
		kinds = append(kinds, l.Kind)
	}
	assert.Contains(t, kinds, LineHunk)
	assert.Contains(t, kinds, LineAdd)
}

func TestGoGitSource_FileDiffUnstaged(t *testing.T) {
	r, _, _, _, _ := mergeHistory(t)
	r.write("b.txt", "b\nc\n")
	s := NewGoGitSource(r.repo, DefaultOptions())

	fd, err := s.FileDiff(context.Background(), "b.txt", "", UnstagedChanges())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"diff --git a/b.txt b/b.txt",
		"--- a/b.txt",
		"+++ b/b.txt",
		"@@ -1,1 +1,2 @@",
		" b",
		"+c",
	}, fd.Lines)
	assert.Equal(t, DiffLine{Kind: LineAdd, Old: 2, New: 2}, fd.Meta[5])

	none, err := s.FileDiff(context.Background(), "a.txt", "", UnstagedChanges())
	require.NoError(t, err)
	assert.Empty(t, none.Lines)
}

func TestGoGitSource_Message(t *testing.T) {
	r, _, _, _, m := mergeHistory(t)
	s := NewGoGitSource(r.repo, DefaultOptions())

	msg, err := s.Message(context.Background(), Ref(m.String()))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg, "commit "+m.String()+"\nAuthor: Tester <tester@example.com>"))
	assert.Contains(t, msg, "    merge feature\n    \n    body line")
	assert.True(t, strings.HasSuffix(msg, " 1 file changed, 1 insertion(+)"))
}

func TestShortstat(t *testing.T) {
	assert.Equal(t, "1 file changed, 1 insertion(+)", shortstat(1, 1, 0))
	assert.Equal(t, "2 files changed, 3 insertions(+), 1 deletion(-)", shortstat(2, 3, 1))
	assert.Equal(t, "1 file changed, 2 deletions(-)", shortstat(1, 0, 2))
	assert.Equal(t, "1 file changed, 0 insertions(+), 0 deletions(-)", shortstat(1, 0, 0))
}
