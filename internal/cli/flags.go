package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/state"
)

func OptionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return strings.TrimSpace(args[i])
	}
	return ""
}

// actionFor resolves a ref argument and the --anchor flag. Without a ref the
// log's current action applies.
func actionFor(cmd *cobra.Command, a *app, ref string) (git.DiffAction, error) {
	anchor, err := OptionalStringFlag(cmd, "anchor")
	if err != nil {
		return git.DiffAction{}, err
	}
	if ref == "" {
		if anchor != "" {
			return git.DiffAction{}, fmt.Errorf("--anchor needs a ref")
		}
		var action git.DiffAction
		a.session.View(func(l *state.Log) { action = l.Action() })
		return action, nil
	}
	return git.ActionFor(git.NewRef(ref), git.NewRef(anchor)), nil
}
