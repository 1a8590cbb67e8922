package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/packscript/cli/cmd/repl"
	"github.com/ardnew/packscript/compiler"
	"github.com/ardnew/packscript/log"
	"github.com/ardnew/packscript/pack"
)

// Repl runs script lines interactively.
type Repl struct {
	Namespace  string   `default:"repl"  help:"Namespace of unqualified function names"               short:"n"`
	PackFormat string   `                help:"Pack format or release name (default: latest release)"`
	Lib        []string `env:"${libEnv}" help:"Include search directories, separated by '${pathSep}'" placeholder:"DIRS" sep:"none"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "repl session",
		slog.String("namespace", session.Namespace()),
	)

	return repl.Run(ctx, session, cacheDir(ctx))
}

func (r *Repl) session() (*compiler.Session, error) {
	_, format := pack.Latest()

	if r.PackFormat != "" {
		var err error
		if format, err = pack.VersionOrFormat(r.PackFormat); err != nil {
			return nil, err
		}
	}

	return compiler.NewSession(r.Namespace, format, searchPath(r.Lib)), nil
}
