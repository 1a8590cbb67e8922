package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/packscript/cli/cmd"
	"github.com/ardnew/packscript/log"
	"github.com/ardnew/packscript/pkg"
)

// CLI is the top-level command-line interface for packscript.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Compile    cmd.Compile    `aliases:"c"  cmd:"" default:"withargs" help:"Compile a data pack or function scripts"`
	PackFormat cmd.PackFormat `aliases:"pf" cmd:""                    help:"Show or update the supported pack formats"`
	Repl       cmd.Repl       `             cmd:""                    help:"Run script lines interactively"`
	Config     cmd.Config     `             cmd:""                    help:"Write the current global flags to a configuration file"`
	Version    cmd.Version    `             cmd:""                    help:"Print the packscript version"`
}

// Run executes the packscript CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.PathSepIdentifier: string(os.PathListSeparator),
		cmd.LibEnvIdentifier:  cmd.LibEnv,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags apply before parsing so that parse errors are logged the
	// way the user asked for.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolveTOML, cmd.ProjectConfig),
		kong.Configuration(resolveYAML, pkg.ConfigPath("config.yaml")),
		kong.Configuration(kong.JSON, pkg.ConfigPath("config.json")),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ktx.BindTo(ctx, (*context.Context)(nil))

	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(&cli)
}

// Main runs the command line args and returns the process exit status.
func Main(ctx context.Context, args ...string) int {
	if err := Run(ctx, os.Exit, args...); err != nil {
		log.ErrorContext(ctx, "run failed", slog.Any("error", err))

		return 1
	}

	return 0
}
