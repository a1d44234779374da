package git

// TargetKind says what a Target points at.
type TargetKind int

const (
	TargetCommit TargetKind = iota
	TargetStaged
	TargetUnstaged
)

// Target is the end state of a diff: a commit, the index or the working tree.
type Target struct {
	Kind TargetKind
	Ref  Ref
}

// TargetFor maps a ref from the log to a Target, turning sentinels into the
// index or working tree.
func TargetFor(ref Ref) Target {
	switch {
	case ref.IsStaged():
		return Target{Kind: TargetStaged}
	case ref.IsUnstaged():
		return Target{Kind: TargetUnstaged}
	default:
		return Target{Kind: TargetCommit, Ref: ref}
	}
}

func CommitTarget(ref Ref) Target {
	return Target{Kind: TargetCommit, Ref: ref}
}

func (t Target) String() string {
	switch t.Kind {
	case TargetStaged:
		return "STAGED"
	case TargetUnstaged:
		return "UNSTAGED"
	default:
		return t.Ref.String()
	}
}

// DiffAction is a set of commits to diff or show. The target is the end
// state; the anchor, when set, is the base state. Without an anchor a diff is
// taken against the working tree, like `git diff <target>`.
type DiffAction struct {
	Target Target
	Anchor Ref
	show   bool
}

// Diff describes a diff between target and anchor. Diffing a commit against
// itself is a show.
func Diff(target Target, anchor Ref) DiffAction {
	show := !anchor.IsZero() && target.Kind == TargetCommit && target.Ref == anchor
	return DiffAction{Target: target, Anchor: anchor, show: show}
}

// Show describes the changes introduced by target alone.
func Show(target Target) DiffAction {
	return DiffAction{Target: target, show: true}
}

// StagedChanges diffs the index against HEAD.
func StagedChanges() DiffAction {
	return Diff(Target{Kind: TargetStaged}, "")
}

// UnstagedChanges diffs the working tree against the index.
func UnstagedChanges() DiffAction {
	return Diff(Target{Kind: TargetUnstaged}, "")
}

func (a DiffAction) HasStaged() bool {
	return a.Target.Kind == TargetStaged
}

func (a DiffAction) IsShow() bool {
	return a.show
}

func (a DiffAction) HasAnchor() bool {
	return !a.Anchor.IsZero()
}

func (a DiffAction) String() string {
	if a.HasAnchor() {
		return a.Anchor.String()
	}
	return a.Target.String()
}

// ActionFor builds the action for a target ref from the log and an optional
// anchor. A commit without an anchor is shown; sentinels diff the index or
// working tree.
func ActionFor(target, anchor Ref) DiffAction {
	t := TargetFor(target)
	if anchor.IsZero() && t.Kind == TargetCommit {
		return Show(t)
	}
	return Diff(t, anchor)
}
