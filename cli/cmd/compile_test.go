package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/packscript/compiler"
	"github.com/ardnew/packscript/pack"
)

// writeFiles writes files, keyed by slash-separated path, below dir.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, text := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// writePack creates a minimal data pack below dir including a script from
// the directory lib.
func writePack(t *testing.T, dir, lib string) {
	t.Helper()

	writeFiles(t, dir, map[string]string{
		pack.ManifestName:                     `{"pack": {"pack_format": 48, "description": "test"}}`,
		"data/demo/source/main.dps":           "include \"util\"\n/function main [load]:\n    /say $greeting\n",
		"data/demo/function/plain.mcfunction": "say plain\n",
	})

	writeFiles(t, lib, map[string]string{"util.dps": "greeting = \"hello\"\n"})
}

func TestCompile_Run(t *testing.T) {
	in, lib := t.TempDir(), t.TempDir()
	out := filepath.Join(t.TempDir(), "out")

	writePack(t, in, lib)

	var cli struct {
		Compile Compile `cmd:""`
	}

	ctx, _ := parse(t, &cli, "compile", "-i", in, "-o", out, "--lib", lib, "--cache")

	if err := cli.Compile.Run(ctx); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(filepath.Join(out, "data", "demo", "function", "main.mcfunction"))
	if err != nil {
		t.Fatal(err)
	}

	if want := "say hello\n"; len(b) < len(want) || string(b[len(b)-len(want):]) != want {
		t.Errorf("main.mcfunction = %q, want suffix %q", b, want)
	}

	path, err := compiler.New(compiler.Options{Input: in, Output: out}).CachePath(cacheDir(ctx))
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := compiler.LoadRecord(path); !ok {
		t.Errorf("no build record at %s", path)
	}

	// Unchanged input is skipped.
	if err := cli.Compile.Run(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestCompile_LibEnv(t *testing.T) {
	lib := t.TempDir()
	t.Setenv(LibEnv, lib)

	var cli struct {
		Compile Compile `cmd:""`
	}

	parse(t, &cli, "compile", "-o", filepath.Join(t.TempDir(), "out"))

	if len(cli.Compile.Lib) != 1 || cli.Compile.Lib[0] != lib {
		t.Errorf("Lib = %q, want [%q]", cli.Compile.Lib, lib)
	}
}

func TestCompile_SameOutput(t *testing.T) {
	in := t.TempDir()
	writePack(t, in, t.TempDir())

	var cli struct {
		Compile Compile `cmd:""`
	}

	ctx, _ := parse(t, &cli, "compile", "-i", in, "-o", in)

	if err := cli.Compile.Run(ctx); err == nil {
		t.Error("Run() succeeded with output equal to input")
	}
}

func TestCompile_DefaultOutput(t *testing.T) {
	dir, lib := t.TempDir(), t.TempDir()

	writePack(t, dir, lib)
	t.Chdir(dir)

	var cli struct {
		Compile Compile `cmd:""`
	}

	ctx, _ := parse(t, &cli, "compile", "--lib", lib)

	if filepath.Base(cli.Compile.Output) != "output" {
		t.Errorf("Output = %q, want a directory named output", cli.Compile.Output)
	}

	if err := cli.Compile.Run(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "output", "data", "demo", "function", "main.mcfunction")); err != nil {
		t.Errorf("default output not written: %v", err)
	}
}
