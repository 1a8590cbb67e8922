package lang

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"
)

// builtinTypes declares the signatures of the builtins for the expression
// compiler. Values are bound per machine by [Machine.builtins].
var builtinTypes = map[string]any{
	"ns":           "",
	"pack_format":  0,
	"range":        (func(...int) ([]any, error))(nil),
	"yaml":         (func(string) (any, error))(nil),
	"json":         (func(string) (any, error))(nil),
	"read":         (func(string) (string, error))(nil),
	"bytes":        (func(any) ([]byte, error))(nil),
	"str":          (func(any) string)(nil),
	"resource":     (func(string, string) (any, error))(nil),
	"set_resource": (func(string, string, any) (any, error))(nil),
}

var compileOptions = func() []expr.Option {
	opts := []expr.Option{expr.Env(builtinTypes), expr.AllowUndefinedVariables()}
	for _, name := range BuiltinNames() {
		opts = append(opts, expr.DisableBuiltin(name))
	}

	return opts
}()

// BuiltinNames returns the sorted names predefined in every machine.
func BuiltinNames() []string {
	return slices.Sorted(maps.Keys(builtinTypes))
}

// BuiltinType returns the declared type of a builtin: a typed nil function
// for callables, or a zero value for variables.
func BuiltinType(name string) (any, bool) {
	t, ok := builtinTypes[name]

	return t, ok
}

func (m *Machine) builtins() map[string]any {
	return map[string]any{
		"ns":           "",
		"pack_format":  0,
		"range":        rangeOf,
		"yaml":         parseYAML,
		"json":         parseJSON,
		"read":         m.read,
		"bytes":        toBytes,
		"str":          Format,
		"resource":     m.host.GetResource,
		"set_resource": m.setResource,
	}
}

// read returns the content of a file, relative to the file containing the
// statement being executed.
func (m *Machine) read(path string) (string, error) {
	if !filepath.IsAbs(path) && m.pos.File != "" {
		path = filepath.Join(filepath.Dir(m.pos.File), path)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", ErrInvalidArgument.Wrap(err).With(slog.String("read", path))
	}

	if m.cfg.onRead != nil {
		m.cfg.onRead(path)
	}

	return string(b), nil
}

func (m *Machine) setResource(typ, name string, value any) (any, error) {
	return nil, m.host.SetResource(typ, name, value)
}

// rangeOf mirrors the stop, start-stop and start-stop-step forms of range.
func rangeOf(args ...int) ([]any, error) {
	start, stop, step := 0, 0, 1

	switch len(args) {
	case 1:
		stop = args[0]
	case 2:
		start, stop = args[0], args[1]
	case 3:
		start, stop, step = args[0], args[1], args[2]
	default:
		return nil, ErrInvalidArgument.With(slog.String("range", "expected 1 to 3 arguments"))
	}

	if step == 0 {
		return nil, ErrInvalidArgument.With(slog.String("range", "step must not be zero"))
	}

	var out []any

	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, i)
	}

	if out == nil {
		out = []any{}
	}

	return out, nil
}

func parseYAML(text string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, ErrInvalidArgument.Wrap(err).With(slog.String("yaml", "invalid document"))
	}

	return Normalize(v), nil
}

func parseJSON(text string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, ErrInvalidArgument.Wrap(err).With(slog.String("json", "invalid document"))
	}

	return Normalize(v), nil
}

func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	case []any:
		b := make([]byte, len(x))

		for i, e := range x {
			n, ok := toInt(e)
			if !ok || n < 0 || n > math.MaxUint8 {
				return nil, ErrInvalidArgument.With(slog.String("bytes", Format(e)))
			}

			b[i] = byte(n)
		}

		return b, nil
	}

	return nil, ErrInvalidArgument.With(slog.String("bytes", typeName(v)))
}

// Normalize converts decoded documents to the engine's value types: maps
// become map[string]any, lists []any, and whole numbers int.
func Normalize(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Normalize(e)
		}

		return out

	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[Format(k)] = Normalize(e)
		}

		return out

	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}

		return out

	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}

		f, _ := x.Float64()

		return f

	case int64:
		return int(x)

	case uint64:
		if x <= math.MaxInt64 {
			return int(x)
		}
	}

	return v
}
