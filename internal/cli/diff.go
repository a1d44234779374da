package cli

import (
	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/view"
)

func RunDiff(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, "")
	if err != nil {
		return err
	}
	action, err := actionFor(cmd, a, argAt(args, 1))
	if err != nil {
		return err
	}
	oldPath, err := OptionalStringFlag(cmd, "old-path")
	if err != nil {
		return err
	}

	fd, err := a.session.FileDiff(cmd.Context(), git.Stat{Path: argAt(args, 0), OldPath: oldPath}, action)
	if err != nil {
		return err
	}
	a.println(view.NewDiffView(a.renderer()).Lines(fd))
	return nil
}
