package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	udiff "github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type sideKind int

const (
	sideTree sideKind = iota
	sideIndex
	sideWorktree
)

// side is one end of a diff: a commit tree, the index or the working tree.
type side struct {
	kind sideKind
	tree *object.Tree
}

// sides maps an action to the states it compares, in the same way the git
// binary would (see ExecSource.diffArgs).
func (s *GoGitSource) sides(action DiffAction) (from, to side, err error) {
	anchor := func(fallback side) (side, error) {
		if !action.HasAnchor() || action.IsShow() {
			return fallback, nil
		}
		return s.treeSide(action.Anchor)
	}

	switch action.Target.Kind {
	case TargetStaged:
		head, err := s.headSide()
		if err != nil {
			return side{}, side{}, err
		}
		from, err = anchor(head)
		return from, side{kind: sideIndex}, err
	case TargetUnstaged:
		from, err = anchor(side{kind: sideIndex})
		return from, side{kind: sideWorktree}, err
	}

	target, err := s.treeSide(action.Target.Ref)
	if err != nil {
		return side{}, side{}, err
	}
	switch {
	case action.IsShow():
		from, err = s.parentSide(action.Target.Ref)
		return from, target, err
	case action.HasAnchor():
		from, err = s.treeSide(action.Anchor)
		return from, target, err
	default:
		// `git diff <ref>` compares the commit with the working tree
		return target, side{kind: sideWorktree}, nil
	}
}

func (s *GoGitSource) treeSide(ref Ref) (side, error) {
	c, err := s.commit(ref)
	if err != nil {
		return side{}, err
	}
	tree, err := c.Tree()
	if err != nil {
		return side{}, fmt.Errorf("tree of %s: %w", ref, err)
	}
	return side{kind: sideTree, tree: tree}, nil
}

func (s *GoGitSource) headSide() (side, error) {
	head, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return side{kind: sideTree, tree: &object.Tree{}}, nil
		}
		return side{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	return s.treeSide(Ref(head.Hash().String()))
}

// parentSide is the first parent's tree, or the empty tree for a root.
func (s *GoGitSource) parentSide(ref Ref) (side, error) {
	c, err := s.commit(ref)
	if err != nil {
		return side{}, err
	}
	if c.NumParents() == 0 {
		return side{kind: sideTree, tree: &object.Tree{}}, nil
	}
	p, err := c.Parent(0)
	if err != nil {
		return side{}, fmt.Errorf("parent of %s: %w", ref, err)
	}
	return s.treeSide(Ref(p.Hash.String()))
}

func (s *GoGitSource) Stats(ctx context.Context, action DiffAction) ([]Stat, error) {
	from, to, err := s.sides(action)
	if err != nil {
		return nil, err
	}
	if from.kind == sideTree && to.kind == sideTree {
		patch, err := s.treePatch(ctx, from.tree, to.tree)
		if err != nil {
			return nil, err
		}
		return patchStats(patch.FilePatches()), nil
	}

	changes, err := s.snapshotChanges(from, to)
	if err != nil {
		return nil, err
	}
	stats := make([]Stat, 0, len(changes))
	for _, ch := range changes {
		stats = append(stats, ch.stat())
	}
	return stats, nil
}

func (s *GoGitSource) FileDiff(ctx context.Context, path, oldPath string, action DiffAction) (FileDiff, error) {
	from, to, err := s.sides(action)
	if err != nil {
		return FileDiff{}, err
	}
	if from.kind == sideTree && to.kind == sideTree {
		patch, err := s.treePatch(ctx, from.tree, to.tree)
		if err != nil {
			return FileDiff{}, err
		}
		var buf bytes.Buffer
		fp := filePatches(patch.FilePatches(), path, oldPath)
		if err := fdiff.NewUnifiedEncoder(&buf, fdiff.DefaultContextLines).Encode(fp); err != nil {
			return FileDiff{}, fmt.Errorf("encode patch: %w", err)
		}
		return ParseFileDiff(buf.String(), action), nil
	}

	changes, err := s.snapshotChanges(from, to)
	if err != nil {
		return FileDiff{}, err
	}
	for _, ch := range changes {
		if ch.path == path || (oldPath != "" && ch.path == oldPath) {
			return ParseFileDiff(ch.unified(), action), nil
		}
	}
	return FileDiff{Action: action}, nil
}

func (s *GoGitSource) treePatch(ctx context.Context, from, to *object.Tree) (*object.Patch, error) {
	changes, err := object.DiffTreeWithOptions(ctx, from, to, &object.DiffTreeOptions{
		DetectRenames: true,
		RenameScore:   uint(s.opts.RenameThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("build patch: %w", err)
	}
	return patch, nil
}

func patchPaths(fp fdiff.FilePatch) (path, oldPath string) {
	from, to := fp.Files()
	switch {
	case to == nil && from == nil:
		return "", ""
	case to == nil:
		return from.Path(), ""
	case from == nil || from.Path() == to.Path():
		return to.Path(), ""
	default:
		return to.Path(), from.Path()
	}
}

func patchStats(fps []fdiff.FilePatch) []Stat {
	stats := make([]Stat, 0, len(fps))
	for _, fp := range fps {
		st := Stat{Binary: fp.IsBinary()}
		st.Path, st.OldPath = patchPaths(fp)
		for _, chunk := range fp.Chunks() {
			n := countLines(chunk.Content())
			switch chunk.Type() {
			case fdiff.Add:
				st.Adds += n
			case fdiff.Delete:
				st.Deletes += n
			}
		}
		stats = append(stats, st)
	}
	return stats
}

// singlePatch narrows a patch to the files matching one path.
type singlePatch struct {
	fps []fdiff.FilePatch
}

func (p singlePatch) FilePatches() []fdiff.FilePatch { return p.fps }
func (p singlePatch) Message() string                { return "" }

func filePatches(fps []fdiff.FilePatch, path, oldPath string) singlePatch {
	var out singlePatch
	for _, fp := range fps {
		p, op := patchPaths(fp)
		if p == path || (oldPath != "" && (op == oldPath || p == oldPath)) {
			out.fps = append(out.fps, fp)
		}
	}
	return out
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

// blobRef is a file in a snapshot, loaded lazily.
type blobRef struct {
	hash plumbing.Hash
	load func() (string, error)
}

func (s *GoGitSource) snapshot(sd side) (map[string]blobRef, error) {
	files := make(map[string]blobRef)
	switch sd.kind {
	case sideTree:
		if sd.tree == nil || len(sd.tree.Entries) == 0 {
			return files, nil
		}
		err := sd.tree.Files().ForEach(func(f *object.File) error {
			file := f
			files[f.Name] = blobRef{hash: f.Hash, load: file.Contents}
			return nil
		})
		return files, err

	case sideIndex:
		idx, err := s.repo.Storer.Index()
		if err != nil {
			return nil, fmt.Errorf("read index: %w", err)
		}
		for _, e := range idx.Entries {
			hash := e.Hash
			files[e.Name] = blobRef{hash: hash, load: func() (string, error) { return s.blob(hash) }}
		}
		return files, nil

	default:
		wt, err := s.repo.Worktree()
		if err != nil {
			return nil, fmt.Errorf("open worktree: %w", err)
		}
		idx, err := s.repo.Storer.Index()
		if err != nil {
			return nil, fmt.Errorf("read index: %w", err)
		}
		// like `git diff`, only tracked files take part
		for _, e := range idx.Entries {
			data, err := util.ReadFile(wt.Filesystem, e.Name)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", e.Name, err)
			}
			content := string(data)
			files[e.Name] = blobRef{
				hash: plumbing.ComputeHash(plumbing.BlobObject, data),
				load: func() (string, error) { return content, nil },
			}
		}
		return files, nil
	}
}

func (s *GoGitSource) blob(hash plumbing.Hash) (string, error) {
	b, err := s.repo.BlobObject(hash)
	if err != nil {
		return "", fmt.Errorf("read blob %s: %w", hash, err)
	}
	r, err := b.Reader()
	if err != nil {
		return "", err
	}
	defer r.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fileChange is one differing path between two snapshots.
type fileChange struct {
	path     string
	from, to string
	added    bool
	deleted  bool
	binary   bool
	diffs    []diffmatchpatch.Diff
}

func (s *GoGitSource) snapshotChanges(from, to side) ([]fileChange, error) {
	a, err := s.snapshot(from)
	if err != nil {
		return nil, err
	}
	b, err := s.snapshot(to)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(a)+len(b))
	for p := range a {
		paths = append(paths, p)
	}
	for p := range b {
		if _, ok := a[p]; !ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)

	var changes []fileChange
	for _, p := range paths {
		fa, aok := a[p]
		fb, bok := b[p]
		if aok && bok && fa.hash == fb.hash {
			continue
		}
		ch := fileChange{path: p, added: !aok, deleted: !bok}
		if aok {
			if ch.from, err = fa.load(); err != nil {
				return nil, err
			}
		}
		if bok {
			if ch.to, err = fb.load(); err != nil {
				return nil, err
			}
		}
		ch.binary = isBinary(ch.from) || isBinary(ch.to)
		if !ch.binary {
			ch.diffs = udiff.Do(ch.from, ch.to)
		}
		changes = append(changes, ch)
	}
	return changes, nil
}

func isBinary(s string) bool {
	if len(s) > 8000 {
		s = s[:8000]
	}
	return strings.IndexByte(s, 0) >= 0
}

func (ch fileChange) stat() Stat {
	st := Stat{Path: ch.path, Binary: ch.binary}
	for _, d := range ch.diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			st.Adds += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			st.Deletes += countLines(d.Text)
		}
	}
	return st
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// unified renders the change as a patch with a single full-context hunk.
func (ch fileChange) unified() string {
	var sb strings.Builder
	oldName, newName := "a/"+ch.path, "b/"+ch.path
	if ch.added {
		oldName = "/dev/null"
	}
	if ch.deleted {
		newName = "/dev/null"
	}
	fmt.Fprintf(&sb, "diff --git a/%s b/%s\n", ch.path, ch.path)
	if ch.binary {
		fmt.Fprintf(&sb, "Binary files %s and %s differ\n", oldName, newName)
		return sb.String()
	}
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", oldName, newName)

	oldLines, newLines := len(splitLines(ch.from)), len(splitLines(ch.to))
	fmt.Fprintf(&sb, "@@ -%s +%s @@\n", hunkRange(oldLines), hunkRange(newLines))
	for _, d := range ch.diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range splitLines(d.Text) {
			sb.WriteString(prefix + line + "\n")
		}
	}
	return sb.String()
}

func hunkRange(n int) string {
	if n == 0 {
		return "0,0"
	}
	return fmt.Sprintf("1,%d", n)
}
