package git

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotRepository  = errors.New("fatal: not a git repository (or any of the parent directories): .git")
	ErrUnknownBackend = errors.New("unknown history backend")
)

// Backend names accepted by OpenSource.
const (
	BackendGoGit = "gogit"
	BackendExec  = "exec"
)

// DefaultRenameThreshold is the similarity percentage above which a
// delete/add pair is reported as a rename.
const DefaultRenameThreshold = 50

// Source retrieves history, stats and diffs for one repository.
type Source interface {
	// Log returns the history newest first, every commit ahead of its
	// parents, with sentinel pseudo-commits in front when the index or
	// working tree has changes.
	Log(ctx context.Context) ([]Commit, error)
	Stats(ctx context.Context, action DiffAction) ([]Stat, error)
	FileDiff(ctx context.Context, path, oldPath string, action DiffAction) (FileDiff, error)
	Message(ctx context.Context, ref Ref) (string, error)
	Root() string
}

// Options tune what a Source returns.
type Options struct {
	// All includes every branch, remote and tag, not only HEAD.
	All bool
	// Abbrev is the hash abbreviation length of log refs.
	Abbrev int
	// MaxCommits caps the history length; zero means no cap.
	MaxCommits int
	// IgnoreWhitespace drops whitespace-only changes from stats and diffs.
	IgnoreWhitespace bool
	// RenameThreshold is the rename similarity percentage.
	RenameThreshold int
}

// DefaultOptions mirrors `git log --all` with 7 character hashes.
func DefaultOptions() Options {
	return Options{
		All:             true,
		Abbrev:          7,
		RenameThreshold: DefaultRenameThreshold,
	}
}

func (o Options) withDefaults() Options {
	if o.Abbrev <= 0 {
		o.Abbrev = 7
	}
	if o.RenameThreshold <= 0 {
		o.RenameThreshold = DefaultRenameThreshold
	}
	return o
}

// OpenSource opens the repository containing path with the named backend.
func OpenSource(path, backend string, opts Options) (Source, error) {
	switch backend {
	case "", BackendGoGit:
		return OpenGoGit(path, opts)
	case BackendExec:
		return OpenExec(context.Background(), path, NewExecRunner(""), opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
