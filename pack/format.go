package pack

import (
	"log/slog"
	"regexp"
	"strings"
)

const (
	// ModernLayout is the first pack format whose function directories use
	// singular names.
	ModernLayout = 45
	// ModernSource is the first pack format whose script directory is
	// named "source". Scripts are never read by the game, so the rename
	// applies from an earlier format than the function directories.
	ModernSource = 15
)

// Folder returns the directory name for kind ("function" or "source") under
// pack format f: kind itself from its threshold on, plural before it.
func Folder(kind string, f int) string {
	threshold := ModernLayout
	if kind == "source" {
		threshold = ModernSource
	}

	if f >= threshold {
		return kind
	}

	return kind + "s"
}

// Formats is the pack format range an overlay applies to. A single format
// has Min == Max and is encoded as a bare integer.
type Formats struct {
	Min, Max int
}

// Single reports whether the range is one format.
func (f Formats) Single() bool { return f.Min == f.Max }

// Value returns the manifest representation of f.
func (f Formats) Value() any {
	if f.Single() {
		return f.Min
	}

	return map[string]any{"min_inclusive": f.Min, "max_inclusive": f.Max}
}

var reOverlayRange = regexp.MustCompile(`^([\d.]+)-([\d.]+|future)$`)

// ParseOverlay derives the formats of an unregistered overlay directory from
// its name, reading '_' as '.': "1_20_3-1_20_5" is a range of releases,
// "1_21-future" is open-ended, "1_20_2" is one release and "48" is one pack
// format.
func ParseOverlay(dir string) (Formats, error) {
	name := strings.ReplaceAll(dir, "_", ".")

	fail := func(err error) (Formats, error) {
		e := ErrUnregisteredOverlay.With(
			slog.String("directory", dir),
			slog.String("hint", "register it in pack.mcmeta or name it after the version(s) it is for (1_20_2, 1_20_3-1_20_5)"),
		)
		if err != nil {
			e = e.Wrap(err)
		}

		return Formats{}, e
	}

	if m := reOverlayRange.FindStringSubmatch(name); m != nil {
		lo, err := VersionOrFormat(m[1])
		if err != nil {
			return fail(err)
		}

		hi, err := VersionOrFormat(m[2])
		if err != nil {
			return fail(err)
		}

		return Formats{Min: lo, Max: hi}, nil
	}

	f, err := VersionOrFormat(name)
	if err != nil || f == 0 {
		return fail(err)
	}

	return Formats{Min: f, Max: f}, nil
}
