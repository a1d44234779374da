package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GoGitSource reads history straight from the object database with go-git.
type GoGitSource struct {
	repo *gogit.Repository
	root string
	opts Options
}

// OpenGoGit opens the repository containing path, searching parent
// directories for .git.
func OpenGoGit(path string, opts Options) (*GoGitSource, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("open repository %s: %w", path, err)
	}
	s := NewGoGitSource(repo, opts)
	if wt, err := repo.Worktree(); err == nil {
		s.root = wt.Filesystem.Root()
	} else {
		s.root = path
	}
	return s, nil
}

// NewGoGitSource wraps an already open repository.
func NewGoGitSource(repo *gogit.Repository, opts Options) *GoGitSource {
	return &GoGitSource{repo: repo, opts: opts.withDefaults()}
}

func (s *GoGitSource) Root() string {
	return s.root
}

func (s *GoGitSource) Log(ctx context.Context) ([]Commit, error) {
	head, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// no commits yet
			return nil, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	decorations, seeds, err := s.references(head)
	if err != nil {
		return nil, err
	}

	objs, err := walkCommits(ctx, s.repo, seeds)
	if err != nil {
		return nil, err
	}
	objs = orderCommits(objs)
	if s.opts.MaxCommits > 0 && len(objs) > s.opts.MaxCommits {
		objs = objs[:s.opts.MaxCommits]
	}

	commits := make([]Commit, 0, len(objs))
	for _, c := range objs {
		commits = append(commits, s.toCommit(c, decorations[c.Hash]))
	}

	staged, unstaged, err := s.changes()
	if err != nil {
		return nil, err
	}
	return WithSentinels(commits, head.Hash().String(), staged, unstaged), nil
}

func (s *GoGitSource) toCommit(c *object.Commit, deco Decoration) Commit {
	parents := make([]Ref, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, Abbrev(p.String(), s.opts.Abbrev))
	}
	return Commit{
		Ref:         Abbrev(c.Hash.String(), s.opts.Abbrev),
		Parents:     parents,
		Decoration:  deco,
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		Time:        c.Author.When,
		Subject:     strings.SplitN(strings.TrimSpace(c.Message), "\n", 2)[0],
	}
}

// references builds the decoration of every pointed-at commit and the seeds
// of the history walk.
func (s *GoGitSource) references(head *plumbing.Reference) (map[plumbing.Hash]Decoration, []plumbing.Hash, error) {
	decorations := make(map[plumbing.Hash]Decoration)
	seeds := []plumbing.Hash{head.Hash()}

	if !head.Name().IsBranch() {
		d := decorations[head.Hash()]
		d.Branches = append(d.Branches, "HEAD")
		decorations[head.Hash()] = d
	}

	iter, err := s.repo.References()
	if err != nil {
		return nil, nil, fmt.Errorf("list references: %w", err)
	}
	err = iter.ForEach(func(r *plumbing.Reference) error {
		if r.Type() != plumbing.HashReference {
			return nil
		}
		hash := r.Hash()
		name := r.Name()
		d := decorations[hash]
		switch {
		case name.IsBranch():
			if name == head.Name() {
				d.Head = name.Short()
			} else {
				d.Branches = append(d.Branches, name.Short())
			}
		case name.IsRemote():
			d.Refs = append(d.Refs, name.Short())
		case name.IsTag():
			if tag, err := s.repo.TagObject(hash); err == nil {
				hash = tag.Target
				d = decorations[hash]
			}
			d.Tags = append(d.Tags, name.Short())
		default:
			return nil
		}
		decorations[hash] = d
		if s.opts.All {
			seeds = append(seeds, hash)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for h, d := range decorations {
		sort.Strings(d.Branches)
		sort.Strings(d.Tags)
		sort.Strings(d.Refs)
		decorations[h] = d
	}
	// seed order decides BFS order only; sort to keep walks reproducible
	sort.Slice(seeds[1:], func(i, j int) bool {
		return seeds[1+i].String() < seeds[1+j].String()
	})
	return decorations, seeds, nil
}

// changes reports whether the index differs from HEAD and whether the
// working tree differs from the index. Untracked files count for neither.
func (s *GoGitSource) changes() (staged, unstaged bool, err error) {
	wt, err := s.repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, false, fmt.Errorf("worktree status: %w", err)
	}
	for _, fs := range status {
		if fs.Staging == gogit.Untracked {
			continue
		}
		if fs.Staging != gogit.Unmodified {
			staged = true
		}
		if fs.Worktree != gogit.Unmodified {
			unstaged = true
		}
	}
	return staged, unstaged, nil
}

func (s *GoGitSource) commit(ref Ref) (*object.Commit, error) {
	hash, err := s.repo.ResolveRevision(plumbing.Revision(ref.String()))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	c, err := s.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", ref, err)
	}
	return c, nil
}

func (s *GoGitSource) Message(ctx context.Context, ref Ref) (string, error) {
	c, err := s.commit(ref)
	if err != nil {
		return "", err
	}
	stats, err := c.StatsContext(ctx)
	if err != nil {
		return "", fmt.Errorf("stats %s: %w", ref, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "commit %s\nAuthor: %s <%s>\nDate:   %s\n\n",
		c.Hash.String(),
		c.Author.Name,
		c.Author.Email,
		c.Author.When.Format("Mon Jan 2 15:04:05 2006 -0700"),
	)
	for _, line := range strings.Split(strings.TrimSpace(c.Message), "\n") {
		sb.WriteString("    " + line + "\n")
	}

	adds, dels := 0, 0
	for _, st := range stats {
		adds += st.Addition
		dels += st.Deletion
	}
	if len(stats) > 0 {
		fmt.Fprintf(&sb, "\n %s\n", shortstat(len(stats), adds, dels))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// shortstat formats a summary the way `git diff --shortstat` does.
func shortstat(files, adds, dels int) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d %s changed", files, plural(files, "file", "files"))
	if adds > 0 || dels == 0 {
		fmt.Fprintf(&b, ", %d %s(+)", adds, plural(adds, "insertion", "insertions"))
	}
	if dels > 0 || adds == 0 {
		fmt.Fprintf(&b, ", %d %s(-)", dels, plural(dels, "deletion", "deletions"))
	}
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
