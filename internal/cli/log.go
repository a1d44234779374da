package cli

import (
	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/view"
)

func RunLog(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, argAt(args, 0))
	if err != nil {
		return err
	}
	v := view.NewLogView(a.renderer(), a.cfg.AuthorWidth, a.cfg.ColorPalette())
	a.printLog(v)

	follow, err := cmd.Flags().GetBool("follow")
	if err != nil || !follow {
		return err
	}
	return a.follow(cmd.Context(), func() {
		a.clear()
		a.printLog(v)
	})
}
