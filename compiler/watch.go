package compiler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/packscript/log"
)

// DefaultDebounce is the quiet period after the last change before
// recompiling.
const DefaultDebounce = 300 * time.Millisecond

// defaultIgnores lists paths whose changes never trigger a compilation.
var defaultIgnores = []string{
	"**/.git",
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.#*",
	"**/.DS_Store",
}

// Watch compiles once and then again each time files below the input stop
// changing for debounce, until ctx is done. Compilation errors are logged.
// Changes to the output are ignored.
func (c *Compiler) Watch(ctx context.Context, debounce time.Duration) error {
	input, t, err := c.target()
	if err != nil {
		return err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := newWatcher(input, watchIgnores(input, t))
	if err != nil {
		return err
	}
	defer w.fsw.Close()

	compile := func() {
		if _, err := c.Compile(ctx); err != nil && ctx.Err() == nil {
			log.ErrorContext(ctx, "compile failed", slog.Any("error", err))
		}
	}

	compile()

	log.InfoContext(ctx, "watching", slog.String("input", input), slog.Duration("debounce", debounce))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			rel, err := filepath.Rel(input, evt.Name)
			if err != nil || w.ignored(rel) {
				continue
			}

			if evt.Has(fsnotify.Create) {
				w.maybeAdd(evt.Name)
			}

			log.TraceContext(ctx, "change", slog.String("file", rel), slog.String("op", evt.Op.String()))

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}

			fire = timer.C

		case <-fire:
			fire = nil

			compile()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}

// watchIgnores returns the default ignores plus the output of t when it lies
// below input.
func watchIgnores(input string, t target) []string {
	ignores := append([]string{}, defaultIgnores...)

	for _, p := range []string{t.dir, t.path} {
		rel, err := filepath.Rel(input, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}

		rel = doublestar.EscapeMeta(filepath.ToSlash(rel))
		ignores = append(ignores, rel, rel+"/**", "**/."+filepath.Base(rel)+"-*")
	}

	return ignores
}

type watcher struct {
	fsw     *fsnotify.Watcher
	base    string
	ignores []string
}

func newWatcher(base string, ignores []string) (*watcher, error) {
	for _, pat := range ignores {
		if !doublestar.ValidatePattern(pat) {
			return nil, ErrRead.With(slog.String("pattern", pat))
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ErrRead.Wrap(err).With(slog.String("dir", base))
	}

	w := &watcher{fsw: fsw, base: base, ignores: ignores}

	err = filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Debug("watch skipped", slog.String("path", path), slog.Any("error", err))

			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if rel, err := filepath.Rel(base, path); err == nil && rel != "." && w.ignored(rel) {
			return filepath.SkipDir
		}

		return fsw.Add(path)
	})
	if err != nil {
		_ = fsw.Close()

		return nil, ErrRead.Wrap(err).With(slog.String("dir", base))
	}

	return w, nil
}

// maybeAdd watches path if it is a directory that is not ignored.
func (w *watcher) maybeAdd(path string) {
	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return
	}

	if rel, err := filepath.Rel(w.base, path); err != nil || w.ignored(rel) {
		return
	}

	if err := w.fsw.Add(path); err != nil {
		log.Warn("cannot watch directory", slog.String("dir", path), slog.Any("error", err))
	}
}

// ignored reports whether rel, relative to the watched root, matches an
// ignore pattern.
func (w *watcher) ignored(rel string) bool {
	rel = filepath.ToSlash(rel)

	for _, pat := range w.ignores {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}

	return false
}
