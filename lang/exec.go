package lang

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Host receives the effects of executing statements.
type Host interface {
	// EmitLine appends text to the innermost capture, or else to the function
	// targeted by the top of the scope stack.
	EmitLine(text string)
	// ToggleScope pops the scope stack when its top was entered with name,
	// and otherwise pushes a scope entered with name.
	ToggleScope(name string)
	// ReplaceScope retargets the top of the scope stack to name.
	ReplaceScope(name string)
	// DefineFunction parses a function definition and registers the new
	// function, returning its qualified name and any trailing text.
	DefineFunction(def string) (name, extra string, err error)
	// EnterCapture starts redirecting emitted lines into a new capture.
	EnterCapture()
	// ExitCapture ends the innermost capture and returns its lines.
	ExitCapture() []string
	// SetResource stores a resource value.
	SetResource(typ, name string, value any) error
	// GetResource returns a stored resource value.
	GetResource(typ, name string) (any, error)
	// Include resolves path relative to from and returns its lines.
	Include(from Pos, path string) ([]Line, error)
}

// DefaultLoopLimit is the number of iterations after which a while loop is
// aborted.
const DefaultLoopLimit = 1_000_000

// DefaultIncludeDepth is the maximum nesting of include statements.
const DefaultIncludeDepth = 32

var (
	errBreak    = errors.New("break")
	errContinue = errors.New("continue")
)

// Machine executes statements against a set of variables.
type Machine struct {
	host  Host
	vars  map[string]any
	cfg   config
	pos   Pos
	depth int
}

// New returns a machine whose effects are delegated to host.
func New(host Host, opts ...Option) *Machine {
	m := &Machine{host: host, cfg: apply(config{
		loopLimit:    DefaultLoopLimit,
		includeDepth: DefaultIncludeDepth,
	}, opts...)}

	m.vars = m.builtins()
	maps.Copy(m.vars, m.cfg.vars)

	return m
}

// Set assigns a variable.
func (m *Machine) Set(name string, value any) { m.vars[name] = value }

// Get returns a variable.
func (m *Machine) Get(name string) (any, bool) {
	v, ok := m.vars[name]

	return v, ok
}

// Names returns the sorted names of all variables, builtins included.
func (m *Machine) Names() []string {
	return slices.Sorted(maps.Keys(m.vars))
}

// Eval compiles and evaluates a single expression.
func (m *Machine) Eval(source string) (any, error) {
	p, err := compileAt(m.pos, source)
	if err != nil {
		return nil, err
	}

	return p.eval(m)
}

// Exec parses lines and runs the resulting block.
func (m *Machine) Exec(ctx context.Context, lines []Line) error {
	b, err := Parse(lines)
	if err != nil {
		return err
	}

	return m.Run(ctx, b)
}

// Run executes b in order.
func (m *Machine) Run(ctx context.Context, b Block) error {
	err := m.run(ctx, b)
	if errors.Is(err, errBreak) || errors.Is(err, errContinue) {
		return nil
	}

	return err
}

func (m *Machine) run(ctx context.Context, b Block) error {
	for _, st := range b {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.pos = st.Pos()

		if err := st.exec(ctx, m); err != nil {
			if err == errBreak || err == errContinue {
				return err
			}

			return at(err, st.Pos())
		}
	}

	return nil
}

func (*passStmt) exec(context.Context, *Machine) error { return nil }
func (*breakStmt) exec(context.Context, *Machine) error { return errBreak }
func (*continueStmt) exec(context.Context, *Machine) error { return errContinue }

func (s *exprStmt) exec(_ context.Context, m *Machine) error {
	_, err := s.value.eval(m)

	return err
}

func (s *assignStmt) exec(_ context.Context, m *Machine) error {
	v, err := s.value.eval(m)
	if err != nil {
		return err
	}

	m.vars[s.name] = v

	return nil
}

func (s *indexStmt) exec(_ context.Context, m *Machine) error {
	key, err := s.key.eval(m)
	if err != nil {
		return err
	}

	val, err := s.value.eval(m)
	if err != nil {
		return err
	}

	switch c := m.vars[s.name].(type) {
	case map[string]any:
		c[Format(key)] = val

		return nil

	case []any:
		i, ok := toInt(key)
		if ok && i < 0 {
			i += len(c)
		}

		if !ok || i < 0 || i >= len(c) {
			return ErrNotIndexable.With(slog.String("name", s.name), slog.Any("index", key))
		}

		c[i] = val

		return nil
	}

	return ErrNotIndexable.With(slog.String("name", s.name), slog.String("type", typeName(m.vars[s.name])))
}

func (s *ifStmt) exec(ctx context.Context, m *Machine) error {
	for _, c := range s.clauses {
		if c.cond == nil {
			return m.run(ctx, c.body.body)
		}

		v, err := c.cond.eval(m)
		if err != nil {
			return at(err, c.Pos())
		}

		if Truthy(v) {
			return m.run(ctx, c.body.body)
		}
	}

	return nil
}

// clauseStmt only executes as part of an ifStmt.
func (*clauseStmt) exec(context.Context, *Machine) error { return nil }

func (s *forStmt) exec(ctx context.Context, m *Machine) error {
	v, err := s.iter.eval(m)
	if err != nil {
		return err
	}

	steps, err := iterate(v, len(s.names))
	if err != nil {
		return err
	}

	for _, step := range steps {
		for i, name := range s.names {
			m.vars[name] = step[i]
		}

		if err := m.run(ctx, s.body.body); err != nil {
			if err == errBreak {
				break
			}

			if err != errContinue {
				return err
			}
		}
	}

	return nil
}

func (s *whileStmt) exec(ctx context.Context, m *Machine) error {
	for n := 0; ; n++ {
		if n >= m.cfg.loopLimit {
			return ErrLoopLimit.With(slog.Int("limit", m.cfg.loopLimit))
		}

		v, err := s.cond.eval(m)
		if err != nil {
			return err
		}

		if !Truthy(v) {
			return nil
		}

		if err := m.run(ctx, s.body.body); err != nil {
			if err == errBreak {
				return nil
			}

			if err != errContinue {
				return err
			}
		}
	}
}

func (s *captureStmt) exec(ctx context.Context, m *Machine) error {
	m.host.EnterCapture()
	err := m.run(ctx, s.body.body)
	lines := m.host.ExitCapture()

	captured := make([]any, len(lines))
	for i, ln := range lines {
		captured[i] = ln
	}

	m.vars[s.name] = captured

	return err
}

func (s *includeStmt) exec(ctx context.Context, m *Machine) error {
	v, err := s.path.eval(m)
	if err != nil {
		return err
	}

	path, ok := v.(string)
	if !ok || path == "" {
		return ErrInvalidArgument.With(slog.String("include", Format(v)))
	}

	if m.depth >= m.cfg.includeDepth {
		return ErrIncludeDepth.With(slog.String("include", path), slog.Int("limit", m.cfg.includeDepth))
	}

	lines, err := m.host.Include(s.Pos(), path)
	if err != nil {
		return err
	}

	b, err := Parse(lines)
	if err != nil {
		return err
	}

	from := m.pos
	m.depth++

	defer func() {
		m.depth--
		m.pos = from
	}()

	return m.run(ctx, b)
}

func (s *emitStmt) exec(_ context.Context, m *Machine) error {
	text, err := s.text.Render(m.vars)
	if err != nil {
		return err
	}

	m.host.EmitLine(text)

	return nil
}

func (s *functionStmt) exec(ctx context.Context, m *Machine) error {
	prefix, err := s.prefix.Render(m.vars)
	if err != nil {
		return err
	}

	def, err := s.def.Render(m.vars)
	if err != nil {
		return err
	}

	name, extra, err := m.host.DefineFunction(def)
	if err != nil {
		return err
	}

	m.host.EmitLine(prefix + " " + name + extra)

	if s.mode == ModeReplace {
		m.host.ReplaceScope(name)

		return nil
	}

	m.host.ToggleScope(name)
	err = m.run(ctx, s.body.body)
	m.host.ToggleScope(name)

	return err
}

func (s *createStmt) exec(_ context.Context, m *Machine) error {
	v, err := s.value.eval(m)
	if err != nil {
		return err
	}

	return m.host.SetResource(s.typ, s.name, v)
}

// Truthy reports whether v counts as true in a condition: false, nil, zero
// numbers and empty strings, lists and maps are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}

// iterate returns the values bound on each iteration. With one name, lists
// yield items, strings yield characters and maps yield keys in order. With
// two names, maps yield key and value and list items must be pairs.
func iterate(v any, names int) ([][]any, error) {
	if x, ok := v.(string); ok && names == 1 {
		out := make([][]any, 0, len(x))
		for _, r := range x {
			out = append(out, []any{string(r)})
		}

		return out, nil
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([][]any, rv.Len())

		for i := range rv.Len() {
			item := rv.Index(i).Interface()
			if names == 1 {
				out[i] = []any{item}

				continue
			}

			pair := reflect.ValueOf(item)
			if (pair.Kind() != reflect.Slice && pair.Kind() != reflect.Array) || pair.Len() != names {
				return nil, ErrNotIterable.With(
					slog.String("reason", "cannot unpack item"),
					slog.String("item", Format(item)),
				)
			}

			out[i] = []any{pair.Index(0).Interface(), pair.Index(1).Interface()}
		}

		return out, nil

	case reflect.Map:
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(Format(a.Interface()), Format(b.Interface()))
		})

		out := make([][]any, len(keys))
		for i, k := range keys {
			out[i] = []any{k.Interface(), rv.MapIndex(k).Interface()}[:names]
		}

		return out, nil
	}

	return nil, ErrNotIterable.With(slog.String("type", typeName(v)))
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x == float64(int(x)) {
			return int(x), true
		}
	}

	return 0, false
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}

	return reflect.TypeOf(v).String()
}
