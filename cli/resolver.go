package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/packscript/log"
)

// resolveTOML is a [kong.ConfigurationLoader] for TOML configuration files
// such as packscript.toml:
//
//	log-level = "debug"
//
//	[compile]
//	output = "build/pack.zip"
//	lib = ["../shared"]
//
// Top-level keys apply to any flag of that name. A table named after a
// command applies only to that command's flags and takes precedence. Keys may
// spell hyphens as underscores.
func resolveTOML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		log.Warn("ignoring configuration", slog.String("format", "toml"), slog.Any("error", err))

		return config{}, nil
	}

	return config(doc), nil
}

// resolveYAML is a [kong.ConfigurationLoader] for YAML configuration files
// with the same layout as [resolveTOML].
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring configuration", slog.String("format", "yaml"), slog.Any("error", err))
		}

		return config{}, nil
	}

	return config(doc), nil
}

// config implements [kong.Resolver] over a decoded configuration document.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	if parent != nil {
		if n := parent.Node(); n != nil && n.Type == kong.CommandNode {
			if sec, ok := c.lookup(n.Name).(map[string]any); ok {
				if v := config(sec).lookup(flag.Name); v != nil {
					return flagValue(v), nil
				}
			}
		}
	}

	if v := c.lookup(flag.Name); v != nil {
		if _, ok := v.(map[string]any); !ok {
			return flagValue(v), nil
		}
	}

	return nil, nil
}

func (c config) lookup(name string) any {
	if v, ok := c[name]; ok {
		return v
	}

	return c[strings.ReplaceAll(name, "-", "_")]
}

// flagValue converts a decoded value into the form kong's mappers accept:
// strings, booleans, and lists of strings.
func flagValue(v any) any {
	switch x := v.(type) {
	case string, bool:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = flagValue(e)
		}

		return out
	default:
		return fmt.Sprint(x)
	}
}
