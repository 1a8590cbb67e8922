package compiler

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/ardnew/packscript/lang"
	"github.com/ardnew/packscript/log"
	"github.com/ardnew/packscript/pack"
)

const (
	// ScriptExt is the extension of data pack scripts.
	ScriptExt = "dps"
	// FunctionExt is the extension of standalone function scripts.
	FunctionExt = "fps"
)

// SourceUnit is one script file.
type SourceUnit struct {
	// Path is the file path.
	Path string
	// Rel is the slash-separated path relative to the compiled tree.
	Rel string
	// Namespace is the default namespace of the names it defines.
	Namespace string

	text string
}

// unitHost executes scripts on behalf of the engine.
type unitHost struct {
	*Scope

	res  *Registry
	lib  []string
	uses func(path string)
}

func (h *unitHost) SetResource(typ, name string, value any) error {
	return h.res.Set(typ, name, value)
}

func (h *unitHost) GetResource(typ, name string) (any, error) {
	v, err := h.res.Get(typ, name)
	if err != nil {
		return nil, err
	}

	return v.Any(), nil
}

func (h *unitHost) Include(from lang.Pos, name string) ([]lang.Line, error) {
	file, err := resolveInclude(from.File, name, h.lib)
	if err != nil {
		return nil, err
	}

	text, err := readSource(file)
	if err != nil {
		return nil, err
	}

	h.use(file)

	log.Debug("include", slog.String("file", file), slog.String("from", from.String()))

	return Lines(file, text)
}

// use reports a file the executed scripts depend on.
func (h *unitHost) use(path string) {
	if h.uses != nil {
		h.uses(path)
	}
}

// resolveInclude searches the directory of from and then each directory of
// lib for name. A name without extension also matches the script extension.
func resolveInclude(from, name string, lib []string) (string, error) {
	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = append(candidates, name+"."+ScriptExt)
	}

	dirs := []string{""}
	if !filepath.IsAbs(name) {
		dirs = append([]string{filepath.Dir(from)}, lib...)
	}

	for _, dir := range dirs {
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p, nil
			}
		}
	}

	return "", ErrIncludeNotFound.With(slog.String("include", name))
}

func readSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", ErrRead.Wrap(err).With(slog.String("file", path))
	}

	return norm.NFC.String(string(b)), nil
}

// discover loads every script below dir in sorted order. Files are read
// concurrently.
func discover(ctx context.Context, dir, root, namespace string) ([]SourceUnit, error) {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "**/*."+ScriptExt, doublestar.WithFilesOnly())
	if err != nil {
		return nil, ErrRead.Wrap(err).With(slog.String("dir", dir))
	}

	slices.Sort(matches)

	units := make([]SourceUnit, len(matches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), max(len(matches), 1)))

	for i, m := range matches {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(dir, filepath.FromSlash(m))

			text, err := readSource(path)
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}

			units[i] = SourceUnit{
				Path:      path,
				Rel:       filepath.ToSlash(rel),
				Namespace: namespace,
				text:      text,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return units, nil
}

// compilePack compiles the scripts of every namespace under root/data and
// writes the generated functions, tags and resources into root. Namespaces
// are compiled in sorted order; each one defines its functions separately
// while tags and resources are shared by the whole tree.
func (b *build) compilePack(ctx context.Context, root string, pc pack.Context) error {
	data := filepath.Join(root, "data")

	entries, err := os.ReadDir(data)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.DebugContext(ctx, "no data folder", slog.String("root", root))

			return nil
		}

		return ErrRead.Wrap(err).With(slog.String("dir", data))
	}

	var (
		tags = &TagRegistry{}
		res  = NewRegistry("minecraft")
	)

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		ns := e.Name()
		nsDir := filepath.Join(data, ns)
		srcDir := filepath.Join(nsDir, pc.Source())

		if legacy := filepath.Join(nsDir, "sources"); pc.Source() != "sources" && exists(legacy) {
			return ErrLegacyLayout.With(slog.String("namespace", ns), slog.String("dir", legacy))
		}

		units, err := discover(ctx, srcDir, b.root, ns)
		if err != nil {
			return err
		}

		scope := NewScope(ns, tags)
		res.SetNamespace(ns)

		h := &unitHost{Scope: scope, res: res, lib: b.opts.Lib, uses: b.use}

		for _, u := range units {
			log.InfoContext(ctx, "compile", slog.String("file", u.Rel))

			if err := b.run(ctx, h, u, pc.Format); err != nil {
				return err
			}

			b.scripts++
		}

		if !pc.KeepSource {
			if err := os.RemoveAll(srcDir); err != nil {
				return ErrWrite.Wrap(err).With(slog.String("dir", srcDir))
			}
		}

		n, err := writeFunctions(ctx, root, pc.Function(), scope.Functions())
		if err != nil {
			return err
		}

		b.functions += n
	}

	res.MergeTags(tags, pc.Function())

	n, err := writeResources(ctx, root, res)
	b.resources += n

	return err
}

// run executes one script with h, discarding lines emitted outside of a
// function.
func (b *build) run(ctx context.Context, h *unitHost, u SourceUnit, format int) error {
	return b.runFrom(ctx, h, u, discard, format)
}

// runFrom executes one script with h, sending lines emitted outside of a
// function to the buffer base.
func (b *build) runFrom(ctx context.Context, h *unitHost, u SourceUnit, base, format int) error {
	lines, err := Lines(u.Path, u.text)
	if err != nil {
		return err
	}

	h.Reset(base)

	m := lang.New(h,
		lang.WithVar("ns", u.Namespace),
		lang.WithVar("pack_format", format),
		lang.WithReadHook(h.use),
	)

	return m.Exec(ctx, lines)
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}
