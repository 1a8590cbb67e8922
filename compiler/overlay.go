package compiler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/packscript/log"
	"github.com/ardnew/packscript/pack"
)

// registerOverlays adds each directory of dir that m does not list yet to the
// front of its overlay entries, in sorted order, with the formats encoded in
// the directory name.
func registerOverlays(ctx context.Context, m *pack.Manifest, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ErrRead.Wrap(err).With(slog.String("dir", dir))
	}

	for _, e := range entries {
		if !e.IsDir() || m.HasOverlay(e.Name()) {
			continue
		}

		f, err := pack.ParseOverlay(e.Name())
		if err != nil {
			return err
		}

		m.PrependOverlay(e.Name(), f)

		log.DebugContext(ctx, "overlay registered",
			slog.String("directory", e.Name()),
			slog.Int("min", f.Min),
			slog.Int("max", f.Max),
		)
	}

	return nil
}

// compileOverlays compiles every overlay of pc as a separate pass over its
// copy below the output root.
func (b *build) compileOverlays(ctx context.Context, pc pack.Context) error {
	for _, o := range pc.Overlays {
		root := filepath.Join(b.root, o.Directory)

		if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
			log.WarnContext(ctx, "overlay directory not found", slog.String("directory", o.Directory))

			continue
		}

		if f, ok := o.Range(); ok && !pc.Overlaps(f) {
			log.WarnContext(ctx, "overlay formats outside of supported formats",
				slog.String("directory", o.Directory),
				slog.Int("min", f.Min),
				slog.Int("max", f.Max),
			)
		}

		log.InfoContext(ctx, "overlay", slog.String("directory", o.Directory))

		if err := b.compilePack(ctx, root, pc); err != nil {
			return err
		}
	}

	return nil
}
