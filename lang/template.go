package lang

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Segment is one piece of a [Template]: literal text, or the source of an
// expression whose value is substituted when the template is rendered.
type Segment struct {
	Text string
	Expr bool
}

// Lit returns a literal segment.
func Lit(text string) Segment { return Segment{Text: text} }

// Sub returns an expression segment.
func Sub(source string) Segment { return Segment{Text: source, Expr: true} }

type part struct {
	text    string
	program *vm.Program
}

// Template is text with embedded expressions. Expressions are compiled once
// by [NewTemplate] and evaluated on every [Template.Render], left to right.
type Template struct {
	parts []part
}

// NewTemplate compiles segs into a template. Adjacent literal segments are
// merged.
func NewTemplate(segs ...Segment) (*Template, error) {
	t := &Template{parts: make([]part, 0, len(segs))}

	for _, s := range segs {
		if !s.Expr {
			if n := len(t.parts); n > 0 && t.parts[n-1].program == nil {
				t.parts[n-1].text += s.Text
			} else if s.Text != "" {
				t.parts = append(t.parts, part{text: s.Text})
			}

			continue
		}

		program, err := compile(s.Text)
		if err != nil {
			return nil, err
		}

		t.parts = append(t.parts, part{text: s.Text, program: program})
	}

	return t, nil
}

// Literal returns the template text and true when it has no expressions.
func (t *Template) Literal() (string, bool) {
	if t == nil {
		return "", true
	}

	var sb strings.Builder

	for _, p := range t.parts {
		if p.program != nil {
			return "", false
		}

		sb.WriteString(p.text)
	}

	return sb.String(), true
}

// Render evaluates each expression against env and returns the joined text.
func (t *Template) Render(env map[string]any) (string, error) {
	if t == nil {
		return "", nil
	}

	var sb strings.Builder

	for _, p := range t.parts {
		if p.program == nil {
			sb.WriteString(p.text)

			continue
		}

		v, err := run(p.program, p.text, env)
		if err != nil {
			return "", err
		}

		sb.WriteString(Format(v))
	}

	return sb.String(), nil
}

// String reconstructs the template source using ${{ }} for expressions.
func (t *Template) String() string {
	if t == nil {
		return ""
	}

	var sb strings.Builder

	for _, p := range t.parts {
		if p.program != nil {
			sb.WriteString("${{" + p.text + "}}")
		} else {
			sb.WriteString(p.text)
		}
	}

	return sb.String()
}

// Format renders a value as command text: integers in decimal, floats in
// their shortest form, booleans as true/false, nil as the empty string, and
// lists or maps as compact JSON.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		var buf bytes.Buffer

		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)

		if err := enc.Encode(v); err == nil {
			return strings.TrimSuffix(buf.String(), "\n")
		}
	}

	return fmt.Sprint(v)
}

// compile compiles an expression for evaluation against a map environment
// whose variables are only known at run time.
func compile(source string) (*vm.Program, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrExprCompile.With(slog.String("source", source))
	}

	program, err := expr.Compile(source, compileOptions...)
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).With(slog.String("source", source))
	}

	return program, nil
}

// run evaluates program, compiled from source, against env.
func run(program *vm.Program, source string, env map[string]any) (any, error) {
	v, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).With(slog.String("source", source))
	}

	return v, nil
}
