package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/kurobon/gitgraph/internal/config"
	"github.com/kurobon/gitgraph/internal/git"
	"github.com/kurobon/gitgraph/internal/logging"
	"github.com/kurobon/gitgraph/internal/state"
	"github.com/kurobon/gitgraph/internal/view"
	"github.com/kurobon/gitgraph/internal/watch"
)

// app is what every command needs: the merged configuration, a logger and
// a session with history loaded.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	console *logging.Console
	session *state.Session
	out     io.Writer
	color   bool

	// guards out against redraws racing each other
	mu sync.Mutex
}

func newApp(cmd *cobra.Command, path string) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	stderr, err := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	console := logging.NewConsole()
	logger := logging.Multi(stderr, console.Logger(level))
	if path == "" {
		if path, err = OptionalStringFlag(cmd, "repo"); err != nil {
			return nil, err
		}
	}
	if path == "" {
		path = "."
	}

	src, err := git.OpenSource(path, cfg.Backend, cfg.Options())
	if err != nil {
		return nil, err
	}
	sess := state.NewSession(src, logger)
	if err := sess.Reload(cmd.Context()); err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, fmt.Errorf("failed to read --no-color flag: %w", err)
	}
	out := cmd.OutOrStdout()
	return &app{
		cfg:     cfg,
		logger:  logger,
		console: console,
		session: sess,
		out:     out,
		color:   !noColor && termenv.NewOutput(out).Profile != termenv.Ascii,
	}, nil
}

// loadConfig reads the config file and environment, then applies the flags
// given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend, _ = flags.GetString("backend")
	}
	if flags.Changed("all") {
		cfg.All, _ = flags.GetBool("all")
	}
	if flags.Changed("max") {
		cfg.MaxCommits, _ = flags.GetInt("max")
	}
	if flags.Changed("ignore-whitespace") {
		cfg.IgnoreWhitespace, _ = flags.GetBool("ignore-whitespace")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) renderer() *lipgloss.Renderer {
	return view.NewRenderer(a.out, a.color)
}

func (a *app) println(lines []string) {
	for _, line := range lines {
		fmt.Fprintln(a.out, line)
	}
}

func (a *app) printLog(v *view.LogView) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.View(func(l *state.Log) { a.println(v.Lines(l)) })
}

// follow reloads history after every settled burst of changes and calls
// redraw, until ctx is done.
func (a *app) follow(ctx context.Context, redraw func()) error {
	w, err := watch.New(a.session.Source().Root(), func() {
		if err := a.session.Reload(ctx); err != nil {
			a.logger.Warn("reload after change failed", "error", err)
			return
		}
		if redraw != nil {
			redraw()
		}
	}, watch.Options{Debounce: a.cfg.Debounce, Logger: a.logger})
	if err != nil {
		return err
	}
	defer w.Close()

	<-ctx.Done()
	return nil
}

// clear wipes the terminal before a redraw. Plain output is appended to
// instead.
func (a *app) clear() {
	if !a.color {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	o := termenv.NewOutput(a.out)
	o.ClearScreen()
}
