// Package watch reports settled bursts of file changes in a repository.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kurobon/gitgraph/internal/logging"
)

const DefaultDebounce = 200 * time.Millisecond

// Options tune a Watcher.
type Options struct {
	Debounce time.Duration
	Logger   logging.Logger
}

// Watcher watches a worktree recursively, plus the parts of .git that move
// when history changes: HEAD, the index and refs. Each burst of changes that
// settles for the debounce interval triggers one call to onChange.
type Watcher struct {
	root     string
	gitDir   string
	w        *fsnotify.Watcher
	onChange func()
	logger   logging.Logger
	debounce time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	done   chan struct{}
}

// New starts watching root. onChange runs on a timer goroutine.
func New(root string, onChange func(), opts Options) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", root)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		gitDir:   filepath.Join(root, ".git"),
		w:        fw,
		onChange: onChange,
		logger:   opts.Logger,
		debounce: opts.Debounce,
		done:     make(chan struct{}),
	}
	if w.logger == nil {
		w.logger = logging.Nop()
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	if err := w.addRecursive(root); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w.addGitDir()

	go w.observe()
	return w, nil
}

// addRecursive adds every directory under dir, skipping .git.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		if err := w.w.Add(path); err != nil {
			w.logger.Warn("watch add failed", "path", path, "error", err)
		}
		return nil
	})
}

// addGitDir watches .git itself and its refs tree.
func (w *Watcher) addGitDir() {
	if err := w.w.Add(w.gitDir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("watch add failed", "path", w.gitDir, "error", err)
		}
		return
	}
	refs := filepath.Join(w.gitDir, "refs")
	_ = filepath.WalkDir(refs, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := w.w.Add(path); err != nil {
			w.logger.Warn("watch add failed", "path", path, "error", err)
		}
		return nil
	})
}

// Relevant reports whether a change to path can affect what is shown: any
// worktree file, or HEAD, the index, packed-refs and refs inside gitDir.
func Relevant(gitDir, path string) bool {
	rel, err := filepath.Rel(gitDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	rel = filepath.ToSlash(rel)
	switch rel {
	case "HEAD", "index", "packed-refs":
		return true
	}
	return strings.HasPrefix(rel, "refs/") && !strings.HasSuffix(rel, ".lock")
}

func (w *Watcher) observe() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !Relevant(w.gitDir, ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					w.addNew(ev.Name)
				}
			}
			w.logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			w.schedule()
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// addNew watches a directory created after the watch started.
func (w *Watcher) addNew(dir string) {
	if rel, err := filepath.Rel(w.gitDir, dir); err == nil && !strings.HasPrefix(rel, "..") {
		if err := w.w.Add(dir); err != nil {
			w.logger.Warn("watch add failed", "path", dir, "error", err)
		}
		return
	}
	_ = w.addRecursive(dir)
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.closed || w.timer != t {
			w.mu.Unlock()
			return
		}
		w.timer = nil
		w.mu.Unlock()
		if w.onChange != nil {
			w.onChange()
		}
	})
	w.timer = t
}

// Close stops watching and cancels a pending callback. It is safe to call
// more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	err := w.w.Close()
	<-w.done
	return err
}
