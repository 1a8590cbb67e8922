package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/packscript/log"
	"github.com/ardnew/packscript/pkg"
	"github.com/ardnew/packscript/profile"
)

// Config writes a configuration file holding the current global flag values.
type Config struct {
	Format string `default:"toml" enum:"toml,yaml,json" help:"File format (toml is written to the working directory, others to the user configuration directory)" short:"F"`
	Force  bool   `help:"Overwrite an existing configuration file" short:"f"`
}

// Run executes the config command.
func (c *Config) Run(ctx context.Context) error {
	path := c.path()

	if _, err := os.Stat(path); err == nil && !c.Force {
		return ErrWriteConfig.
			With(slog.String("file", path)).
			Wrap(ErrFileExists)
	}

	values := flagValues(ctx)

	b, err := encodeConfig(c.Format, values)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(path), pkg.DirMode); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.InfoContext(ctx, "configuration written",
		slog.String("path", path),
		slog.Int("keys", len(values)),
	)

	return nil
}

func (c *Config) path() string {
	if c.Format == "toml" {
		return ProjectConfig
	}

	return pkg.ConfigPath("config." + c.Format)
}

func encodeConfig(format string, values map[string]any) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(values)

	case "json":
		return json.MarshalIndent(values, "", "  ")

	default:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(values); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil
	}
}

// flagValues returns the global flags that hold a value, keyed by flag name.
func flagValues(ctx context.Context) map[string]any {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return map[string]any{}
	}

	ignore := []string{"help", profile.Tag}
	values := make(map[string]any)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := configValue(ktx.FlagValue(flag)); ok {
			values[flag.Name] = v
		}
	}

	return values
}

// configValue converts a flag value for encoding. Empty strings and lists
// are omitted.
func configValue(v any) (any, bool) {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String(), true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Invalid:
		return nil, false

	case reflect.String:
		return rv.String(), rv.Len() > 0

	case reflect.Slice:
		return v, rv.Len() > 0

	default:
		return v, true
	}
}
