package compiler

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/packscript/log"
	"github.com/ardnew/packscript/pack"
	"github.com/ardnew/packscript/pkg"
)

// modMetadata lists the files of which a jar needs at least one.
var modMetadata = []string{"fabric.mod.json", "mods.toml", "neoforge.mods.toml"}

// Options configure a [Compiler].
type Options struct {
	// Input is the pack directory. It defaults to the working directory.
	Input string
	// Output is the output directory, or a path ending in ".zip" or ".jar"
	// to produce an archive.
	Output string
	// KeepSource retains the script directories in the output.
	KeepSource bool
	// Lib lists directories searched by include after the including
	// script's own directory.
	Lib []string
	// Cache is the file recording the last successful compilation. When
	// set, a compilation whose inputs are unchanged is skipped.
	Cache string
}

// Result summarizes a compilation.
type Result struct {
	// Output is the directory or archive written.
	Output string
	// Scripts, Functions and Resources count the files compiled and written.
	Scripts   int
	Functions int
	Resources int
	// Cached reports that the compilation was skipped.
	Cached bool
}

// Compiler compiles a pack directory.
type Compiler struct {
	opts Options
}

// New returns a compiler configured by opts.
func New(opts Options) *Compiler {
	return &Compiler{opts: opts}
}

// Options returns the configuration of c.
func (c *Compiler) Options() Options { return c.opts }

// build is the state of one compilation.
type build struct {
	opts  Options
	input string
	root  string

	// deps holds the files read by scripts besides the scripts themselves.
	deps map[string]struct{}

	scripts   int
	functions int
	resources int
}

// use records path as a dependency unless it lies in the build tree, whose
// files are copies of the input.
func (b *build) use(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	if strings.HasPrefix(path, b.root+string(filepath.Separator)) {
		return
	}

	if b.deps == nil {
		b.deps = make(map[string]struct{})
	}

	b.deps[path] = struct{}{}
}

// target is the resolved output of a compilation.
type target struct {
	dir  string
	path string
	zip  bool
	jar  bool
}

func (c *Compiler) target() (string, target, error) {
	input, err := filepath.Abs(cmp.Or(c.opts.Input, "."))
	if err != nil {
		return "", target{}, ErrRead.Wrap(err).With(slog.String("input", c.opts.Input))
	}

	out := c.opts.Output

	t := target{jar: strings.HasSuffix(out, ".jar"), zip: strings.HasSuffix(out, ".zip")}

	dir := strings.TrimSuffix(strings.TrimSuffix(out, ".zip"), ".jar")
	if base := filepath.Base(dir); out == "" || dir == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", target{}, ErrOutputName.With(slog.String("output", out))
	}

	if t.dir, err = filepath.Abs(dir); err != nil {
		return "", target{}, ErrOutputName.Wrap(err).With(slog.String("output", out))
	}

	if input == t.dir {
		return "", target{}, ErrSameOutput.With(slog.String("input", input))
	}

	switch {
	case t.jar:
		t.path = t.dir + ".jar"
	case t.zip:
		t.path = t.dir + ".zip"
	default:
		t.path = t.dir
	}

	return input, t, nil
}

// Compile builds the pack into a temporary directory and, once every step
// has succeeded, replaces the output with it.
func (c *Compiler) Compile(ctx context.Context) (Result, error) {
	input, t, err := c.target()
	if err != nil {
		return Result{}, err
	}

	var digest uint64

	if c.opts.Cache != "" {
		if digest, err = Digest(input, t.path, c.opts); err != nil {
			return Result{}, err
		}

		if rec, ok := LoadRecord(c.opts.Cache); ok && rec.Fresh(digest, t.path) {
			log.InfoContext(ctx, "up to date", slog.String("output", t.path))

			return Result{Output: t.path, Cached: true}, nil
		}
	}

	tmp, err := os.MkdirTemp("", pkg.Name+"-*")
	if err != nil {
		return Result{}, ErrWrite.Wrap(err)
	}
	defer os.RemoveAll(tmp)

	b := &build{opts: c.opts, input: input, root: filepath.Join(tmp, filepath.Base(t.dir))}

	if err := os.MkdirAll(b.root, dirMode); err != nil {
		return Result{}, ErrWrite.Wrap(err).With(slog.String("dir", b.root))
	}

	hasData := isDir(filepath.Join(input, "data"))
	if hasData {
		if err := b.compileDatapack(ctx, t.jar); err != nil {
			return Result{}, err
		}
	}

	scripts, err := doublestar.Glob(os.DirFS(input), "*."+FunctionExt, doublestar.WithFilesOnly())
	if err != nil {
		return Result{}, ErrRead.Wrap(err).With(slog.String("dir", input))
	}

	if len(scripts) > 0 {
		if err := b.compileFunctions(ctx, scripts); err != nil {
			return Result{}, err
		}
	}

	if !hasData && len(scripts) == 0 {
		log.WarnContext(ctx, "no datapack or function scripts found", slog.String("input", input))

		return Result{}, nil
	}

	if t.zip || t.jar {
		err = archive(t.path, b.root)
	} else {
		err = promote(t.path, b.root)
	}

	if err != nil {
		return Result{}, err
	}

	res := Result{
		Output:    t.path,
		Scripts:   b.scripts,
		Functions: b.functions,
		Resources: b.resources,
	}

	if c.opts.Cache != "" {
		c.saveRecord(ctx, Record{Digest: digest, Output: t.path}, b)
	}

	log.InfoContext(ctx, "compiled",
		slog.String("output", res.Output),
		slog.Int("scripts", res.Scripts),
		slog.Int("functions", res.Functions),
		slog.Int("resources", res.Resources),
	)

	return res, nil
}

// saveRecord stores r with the files b depended on. A compilation whose
// record cannot be saved is simply not cached.
func (c *Compiler) saveRecord(ctx context.Context, r Record, b *build) {
	deps, err := HashFiles(slices.Sorted(maps.Keys(b.deps)))
	if err == nil {
		r.Deps = deps
		err = SaveRecord(c.opts.Cache, r)
	}

	if err != nil {
		log.WarnContext(ctx, "cannot save build record", slog.Any("error", err))
	}
}

// compileDatapack copies the pack into the output root and compiles the base
// pack followed by its overlays.
func (b *build) compileDatapack(ctx context.Context, jar bool) error {
	m, err := pack.LoadManifest(b.input)
	if err != nil {
		return err
	}

	if jar && !anyExists(b.input, modMetadata...) {
		return ErrMissingModMetadata.With(slog.String("input", b.input))
	}

	overlays := filepath.Join(b.input, "overlays")
	hasOverlays := isDir(overlays)

	g, _ := errgroup.WithContext(ctx)

	if hasOverlays {
		g.Go(func() error { return copyTree(b.root, overlays) })
	}

	g.Go(func() error { return copyTree(filepath.Join(b.root, "data"), filepath.Join(b.input, "data")) })

	copies := []string{"pack.png"}
	if jar {
		copies = append(copies, "assets", "fabric.mod.json")
	}

	for _, name := range copies {
		src := filepath.Join(b.input, name)

		switch {
		case isDir(src):
			g.Go(func() error { return copyTree(filepath.Join(b.root, name), src) })
		case isFile(src):
			g.Go(func() error { return copyFile(filepath.Join(b.root, name), src) })
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if jar {
		if err := b.copyModMetadata(); err != nil {
			return err
		}
	}

	if hasOverlays {
		if err := registerOverlays(ctx, m, overlays); err != nil {
			return err
		}
	}

	pc := pack.NewContext(m, b.opts.KeepSource)

	if !pc.Supports(pc.Format) {
		log.WarnContext(ctx, "pack format outside of supported formats",
			slog.Int("pack_format", pc.Format),
			slog.Int("min", pc.Supported.Min),
			slog.Int("max", pc.Supported.Max),
		)
	}

	if err := b.compilePack(ctx, b.root, pc); err != nil {
		return err
	}

	if err := b.compileOverlays(ctx, pc); err != nil {
		return err
	}

	if err := m.Save(b.root); err != nil {
		return ErrWrite.Wrap(err).With(slog.String("dir", b.root))
	}

	return nil
}

// copyModMetadata places mods.toml where both Forge and NeoForge look for it.
// A neoforge.mods.toml takes precedence for NeoForge.
func (b *build) copyModMetadata() error {
	copies := []struct{ src, dst string }{
		{"mods.toml", "META-INF/mods.toml"},
		{"mods.toml", "META-INF/neoforge.mods.toml"},
		{"neoforge.mods.toml", "META-INF/neoforge.mods.toml"},
	}

	for _, c := range copies {
		src := filepath.Join(b.input, c.src)
		if !isFile(src) {
			continue
		}

		if err := copyFile(filepath.Join(b.root, filepath.FromSlash(c.dst)), src); err != nil {
			return err
		}
	}

	return nil
}

// compileFunctions compiles standalone function scripts. Each script writes
// its top-level lines to a function named after the file, and every
// function it defines is written next to it, with '/' in its path replaced
// by '_'. The scripts share one set of function names.
func (b *build) compileFunctions(ctx context.Context, scripts []string) error {
	scope := NewScope("minecraft", nil)

	for _, name := range scripts {
		path := filepath.Join(b.input, filepath.FromSlash(name))

		text, err := readSource(path)
		if err != nil {
			return err
		}

		log.InfoContext(ctx, "compile", slog.String("file", name))

		h := &unitHost{Scope: scope, res: NewRegistry("minecraft"), lib: b.opts.Lib, uses: b.use}
		u := SourceUnit{Path: path, Rel: name, Namespace: "minecraft", text: text}

		if err := b.runFrom(ctx, h, u, scope.Base(name), 0); err != nil {
			return err
		}

		b.scripts++
	}

	for _, f := range scope.Functions() {
		name := f.Name
		if i := strings.Index(name, ":"); i >= 0 {
			name = name[i+1:]
		}

		name = strings.TrimSuffix(strings.ReplaceAll(name, "/", "_"), "."+FunctionExt)

		if err := writeFile(filepath.Join(b.root, name+".mcfunction"), functionText(f.Lines)); err != nil {
			return err
		}

		b.functions++
	}

	return nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && fi.IsDir()
}

func isFile(path string) bool {
	fi, err := os.Stat(path)

	return err == nil && fi.Mode().IsRegular()
}

func anyExists(dir string, names ...string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}

	return false
}
