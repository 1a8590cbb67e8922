package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/ardnew/packscript/log"
	"github.com/ardnew/packscript/pack"
)

// PackFormat reports the pack formats declared by a manifest and optionally
// rewrites them.
type PackFormat struct {
	Input  string `default:"." help:"Pack directory"                              short:"i" type:"existingdir"`
	Target string `            help:"Target pack format or release name"          short:"t"`
	Min    string `            help:"Minimum supported pack format or release name" short:"m"`
	Max    string `            help:"Maximum supported pack format or release name" short:"M"`
}

// Run executes the pack-format command.
func (p *PackFormat) Run(ctx context.Context) error {
	m, err := pack.LoadManifest(p.Input)
	if err != nil {
		return err
	}

	w := stdout(ctx)

	if p.Target == "" && p.Min == "" && p.Max == "" {
		r, err := pack.RangeOf(m)
		if err != nil {
			return err
		}

		report(w, r)
		fmt.Fprintln(w, "\nedit these values via the --min, --target, or --max options")

		return nil
	}

	r, err := m.Retarget(p.Target, p.Min, p.Max)
	if err != nil {
		return err
	}

	if err := m.Save(p.Input); err != nil {
		return pack.ErrInvalidManifest.Wrap(err).With(slog.String("dir", p.Input))
	}

	log.DebugContext(ctx, "manifest updated",
		slog.String("dir", p.Input),
		slog.Int("target", r.Target),
		slog.Int("min", r.Min),
		slog.Int("max", r.Max),
	)

	report(w, r)

	return nil
}

// report prints the formats of r with the releases using each of them.
// Supported bounds are omitted when the manifest declares none.
func report(w io.Writer, r pack.Range) {
	number := color.New(color.FgYellow).SprintFunc()

	line := func(label string, f int) {
		fmt.Fprintf(w, "%-20s%s (%s)\n", label, number(fmt.Sprintf("%3d", f)), releases(f))
	}

	if r.Max != 0 {
		line("max supported:", r.Max)
	}

	line("target:", r.Target)

	if r.Min != 0 {
		line("min supported:", r.Min)
	}
}

func releases(f int) string {
	if v := pack.VersionsOf(f); len(v) > 0 {
		return strings.Join(v, ", ")
	}

	return "unknown"
}
