package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/packscript/pack"
)

func writeManifest(t *testing.T, dir, text string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, pack.ManifestName), []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPackFormat_Report(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"pack": {"pack_format": 48, "description": "x"}}`)

	var cli struct {
		PackFormat PackFormat `cmd:""`
	}

	ctx, out := parse(t, &cli, "pack-format", "-i", dir)

	if err := cli.PackFormat.Run(ctx); err != nil {
		t.Fatal(err)
	}

	got := out.String()

	for _, want := range []string{"target:", " 48 (", "1.21", "--target"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}

	if strings.Contains(got, "supported:") {
		t.Errorf("output reports supported formats the manifest lacks:\n%s", got)
	}
}

func TestPackFormat_Retarget(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{"pack": {"pack_format": 48, "description": "x"}}`)

	var cli struct {
		PackFormat PackFormat `cmd:""`
	}

	ctx, out := parse(t, &cli, "pack-format", "-i", dir, "-t", "57", "-m", "48")

	if err := cli.PackFormat.Run(ctx); err != nil {
		t.Fatal(err)
	}

	m, err := pack.LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}

	r, err := pack.RangeOf(m)
	if err != nil {
		t.Fatal(err)
	}

	if want := (pack.Range{Target: 57, Min: 48, Max: 57}); r != want {
		t.Errorf("manifest range = %+v, want %+v", r, want)
	}

	for _, want := range []string{"max supported:", "min supported:"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPackFormat_Errors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		args     []string
		want     error
	}{
		{"missing manifest", "", nil, pack.ErrMissingManifest},
		{"bad version", `{"pack": {"pack_format": 48}}`, []string{"-t", "one.two"}, pack.ErrUnknownVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.manifest != "" {
				writeManifest(t, dir, tt.manifest)
			}

			var cli struct {
				PackFormat PackFormat `cmd:""`
			}

			ctx, _ := parse(t, &cli, append([]string{"pack-format", "-i", dir}, tt.args...)...)

			if err := cli.PackFormat.Run(ctx); !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}
