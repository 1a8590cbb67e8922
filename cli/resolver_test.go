package cli

import (
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

type resolverCLI struct {
	Level string `default:"info"`

	Compile struct {
		Output string   `default:"output"`
		Lib    []string `sep:":"`
		Source bool
	} `cmd:""`

	Repl struct {
		PackFormat int `default:"48"`
	} `cmd:""`
}

func parseWith(t *testing.T, loader kong.ConfigurationLoader, doc string, args ...string) resolverCLI {
	t.Helper()

	res, err := loader(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("loader error = %v", err)
	}

	var c resolverCLI

	p, err := kong.New(&c, kong.Resolvers(res), kong.Exit(func(int) { t.Fatal("exit") }))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}

	return c
}

func TestResolveTOML(t *testing.T) {
	doc := `
level = "debug"

[compile]
output = "build/pack.zip"
lib = ["a", "b"]
source = true

[repl]
pack_format = 15
`

	c := parseWith(t, resolveTOML, doc, "compile")

	if c.Level != "debug" {
		t.Errorf("Level = %q", c.Level)
	}

	if c.Compile.Output != "build/pack.zip" || !c.Compile.Source {
		t.Errorf("Compile = %+v", c.Compile)
	}

	if !reflect.DeepEqual(c.Compile.Lib, []string{"a", "b"}) {
		t.Errorf("Lib = %v", c.Compile.Lib)
	}

	c = parseWith(t, resolveTOML, doc, "repl")
	if c.Repl.PackFormat != 15 {
		t.Errorf("PackFormat = %d", c.Repl.PackFormat)
	}
}

func TestResolveYAML(t *testing.T) {
	doc := "level: warn\ncompile:\n  output: out.jar\n"

	c := parseWith(t, resolveYAML, doc, "compile", "--output", "flag")
	if c.Level != "warn" || c.Compile.Output != "flag" {
		t.Errorf("got %+v", c)
	}
}

func TestResolve_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		loader kong.ConfigurationLoader
		doc    string
	}{
		{"toml", resolveTOML, "level = "},
		{"yaml", resolveYAML, "level: [unterminated"},
		{"empty yaml", resolveYAML, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parseWith(t, tt.loader, tt.doc, "compile")
			if c.Level != "info" || c.Compile.Output != "output" {
				t.Errorf("got %+v, want defaults", c)
			}
		})
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{"x", "x"},
		{true, true},
		{int64(-3), "-3"},
		{uint64(7), "7"},
		{1.5, "1.5"},
		{[]any{int64(1), "a"}, []any{"1", "a"}},
	}

	for _, tt := range tests {
		if got := flagValue(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("flagValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
