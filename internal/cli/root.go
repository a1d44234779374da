// Package cli wires configuration, history sources and views into the
// gitgraph command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitgraph [path]",
		Short: "Print the commit graph of a git repository",
		Long: `gitgraph prints the history of a repository as a colored commit graph,
one commit per line: hash, age, author, graph, decorations and subject.

Uncommitted changes in the index and the working tree show up as two
pseudo-commits on top of HEAD.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          RunLog,
	}
	rootCmd.Flags().Bool("follow", false, "Redraw whenever the repository changes")

	pf := rootCmd.PersistentFlags()
	pf.StringP("repo", "C", ".", "Path inside the repository")
	pf.String("config", "", "Path to a YAML config file (default $GITGRAPH_CONFIG)")
	pf.String("backend", "", "History backend: gogit|exec")
	pf.Bool("all", true, "Include every branch, remote and tag, not only HEAD")
	pf.Int("max", 0, "Show at most this many commits (0 for all)")
	pf.BoolP("ignore-whitespace", "w", false, "Ignore whitespace changes in stats and diffs")
	pf.Bool("no-color", false, "Disable colored output")
	pf.String("log-level", "", "Log level: debug|info|warn|error")

	statCmd := &cobra.Command{
		Use:   "stat [ref]",
		Short: "List the files changed by a commit, or between two commits",
		Long: `stat lists added and deleted line counts per file.

Without a ref it shows the newest entry of the log, which is the working tree
when it has uncommitted changes. With --anchor it diffs ref against anchor.`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunStat,
	}
	statCmd.Flags().String("anchor", "", "Base commit to diff against")

	diffCmd := &cobra.Command{
		Use:   "diff <path> [ref]",
		Short: "Print the diff of one file with line numbers",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  RunDiff,
	}
	diffCmd.Flags().String("anchor", "", "Base commit to diff against")
	diffCmd.Flags().String("old-path", "", "Previous path of a renamed file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph, stats and diffs as JSON over HTTP",
		Args:  cobra.NoArgs,
		RunE:  RunServe,
	}
	serveCmd.Flags().String("addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().Bool("watch", false, "Reload history whenever the repository changes")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gitgraph %s\n", version)
		},
	}

	rootCmd.AddCommand(statCmd, diffCmd, serveCmd, versionCmd)
	return rootCmd
}
