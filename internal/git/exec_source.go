package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// ExecSource reads history through the git binary.
type ExecSource struct {
	r    Runner
	root string
	opts Options
}

// OpenExec resolves the top level of the repository containing path.
func OpenExec(ctx context.Context, path string, r Runner, opts Options) (*ExecSource, error) {
	out, err := r.Run(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	return &ExecSource{r: r, root: strings.TrimSpace(out), opts: opts.withDefaults()}, nil
}

func (s *ExecSource) Root() string {
	return s.root
}

func (s *ExecSource) run(ctx context.Context, args ...string) (string, error) {
	out, err := s.r.Run(ctx, s.root, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *ExecSource) Log(ctx context.Context) ([]Commit, error) {
	head, err := s.run(ctx, "rev-parse", "--verify", "-q", "HEAD")
	if err != nil {
		if silentExit(err) {
			// unborn HEAD: no commits yet
			return nil, nil
		}
		return nil, err
	}

	args := []string{"log"}
	if s.opts.All {
		args = append(args, "--all")
	}
	args = append(args,
		"--date-order",
		"--decorate",
		"--abbrev="+strconv.Itoa(s.opts.Abbrev),
		"--pretty=format:"+LogFormat,
	)
	if s.opts.MaxCommits > 0 {
		args = append(args, "-n", strconv.Itoa(s.opts.MaxCommits))
	}

	out, err := s.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	commits, err := ParseLog(out)
	if err != nil {
		return nil, err
	}

	staged, err := s.hasChanges(ctx, StagedChanges())
	if err != nil {
		return nil, err
	}
	unstaged, err := s.hasChanges(ctx, UnstagedChanges())
	if err != nil {
		return nil, err
	}
	return WithSentinels(commits, head, staged, unstaged), nil
}

func (s *ExecSource) hasChanges(ctx context.Context, action DiffAction) (bool, error) {
	args := []string{"diff", "--shortstat"}
	if action.HasStaged() {
		args = append(args, "--staged")
	}
	out, err := s.run(ctx, args...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Possible actions and the command they map to:
//
//	show <ref>              -> show <ref>
//	show staged             -> diff --cached
//	show unstaged           -> diff
//	diff <ref>              -> diff <ref> (against the working tree)
//	diff <anchor> <ref>     -> diff <anchor> <ref>
//	diff <anchor> staged    -> diff --cached <anchor>
//	diff <anchor> unstaged  -> diff <anchor>
func (s *ExecSource) diffArgs(action DiffAction, extra ...string) []string {
	var args []string
	if action.IsShow() && action.Target.Kind == TargetCommit {
		args = append(args, "show", "--format=")
	} else {
		args = append(args, "diff")
	}
	if action.HasStaged() {
		args = append(args, "--cached")
	}
	args = append(args, extra...)
	args = append(args, "--find-renames="+strconv.Itoa(s.opts.RenameThreshold))
	if s.opts.IgnoreWhitespace {
		args = append(args, "-w")
	}
	if action.HasAnchor() && !action.IsShow() {
		args = append(args, action.Anchor.String())
	}
	if action.Target.Kind == TargetCommit {
		args = append(args, action.Target.Ref.String())
	}
	return args
}

func (s *ExecSource) Stats(ctx context.Context, action DiffAction) ([]Stat, error) {
	out, err := s.run(ctx, s.diffArgs(action, "--numstat")...)
	if err != nil {
		return nil, err
	}
	return ParseNumstats(out)
}

func (s *ExecSource) FileDiff(ctx context.Context, path, oldPath string, action DiffAction) (FileDiff, error) {
	args := s.diffArgs(action, "--patience", "-p")
	args = append(args, "--", path)
	if oldPath != "" {
		args = append(args, oldPath)
	}
	// untrimmed: a trailing context line may be a lone space
	out, err := s.r.Run(ctx, s.root, args...)
	if err != nil {
		return FileDiff{}, err
	}
	return ParseFileDiff(out, action), nil
}

func (s *ExecSource) Message(ctx context.Context, ref Ref) (string, error) {
	return s.run(ctx, "show", "--shortstat", ref.String())
}
