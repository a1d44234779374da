package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/view"
)

// RunStat prints the changed files of an action, preceded by the commit
// message when a single commit is shown.
func RunStat(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	action, err := actionFor(cmd, a, argAt(args, 0))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if action.IsShow() && action.Target.Kind == git.TargetCommit {
		msg, err := a.session.Message(ctx, action.Target.Ref)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, strings.TrimRight(msg, "\n"))
		fmt.Fprintln(a.out)
	}

	stats, err := a.session.Stats(ctx, action)
	if err != nil {
		return err
	}
	a.println(view.NewStatsView(a.renderer()).Lines(stats))
	return nil
}
