package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/ardnew/packscript/compiler"
	"github.com/ardnew/packscript/log"
)

// Compile compiles a data pack directory or a folder of function scripts.
type Compile struct {
	Input    string        `default:"."      help:"Pack directory or folder of function scripts"             short:"i" type:"path"`
	Output   string        `default:"output" help:"Output directory, or archive path ending in .zip or .jar" short:"o" type:"path"`
	Source   bool          `                 help:"Keep script sources in the output"                        short:"S"`
	Verbose  bool          `                 help:"Log every generated function and resource"                short:"v"`
	Lib      []string      `env:"${libEnv}"  help:"Include search directories, separated by '${pathSep}'"    placeholder:"DIRS"   sep:"none"`
	Cache    bool          `                 help:"Skip the compilation when no input changed"`
	Watch    bool          `                 help:"Recompile whenever an input file changes"                 short:"w"`
	Debounce time.Duration `default:"300ms"  help:"Quiet period before a watched change is compiled"`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) error {
	if c.Verbose && log.Default().Level() > log.LevelDebug {
		log.Config(log.WithLevel(log.LevelDebug))
	}

	opts := compiler.Options{
		Input:      c.Input,
		Output:     c.Output,
		KeepSource: c.Source,
		Lib:        searchPath(c.Lib),
	}

	if c.Cache {
		path, err := compiler.New(opts).CachePath(cacheDir(ctx))
		if err != nil {
			return err
		}

		opts.Cache = path
	}

	comp := compiler.New(opts)

	log.DebugContext(ctx, "compile options",
		slog.String("input", opts.Input),
		slog.String("output", opts.Output),
		slog.Any("lib", opts.Lib),
		slog.String("cache", opts.Cache),
	)

	if c.Watch {
		return comp.Watch(ctx, c.Debounce)
	}

	_, err := comp.Compile(ctx)

	return err
}
