package compiler

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// discard is the handle of the buffer receiving lines emitted outside of any
// function. It is never written.
const discard = 0

var reDefinition = regexp.MustCompile(`^([a-z0-9:/_-]*)[ \t]*(?:\[([a-z0-9:/_, -]*)\](.*))?$`)

type functionBuffer struct {
	name  string
	lines []string
}

type scopeFrame struct {
	key    string
	target int
}

// Function is a generated function.
type Function struct {
	Name  string
	Lines []string
}

// Scope tracks the functions defined while compiling one namespace, the
// stack of functions currently receiving lines and the stack of active
// captures.
type Scope struct {
	namespace string
	tags      *TagRegistry
	funcs     []functionBuffer
	index     map[string]int
	frames    []scopeFrame
	captures  [][]string
}

// NewScope returns a scope whose unqualified names default to namespace.
// Tags of defined functions are added to tags; a nil registry ignores them.
func NewScope(namespace string, tags *TagRegistry) *Scope {
	s := &Scope{
		namespace: namespace,
		tags:      tags,
		funcs:     []functionBuffer{{}},
		index:     map[string]int{},
	}
	s.Reset(discard)

	return s
}

// Namespace returns the default namespace.
func (s *Scope) Namespace() string { return s.namespace }

// Reset drops all frames and captures and makes target the base of the
// scope stack.
func (s *Scope) Reset(target int) {
	s.frames = []scopeFrame{{target: target}}
	s.captures = nil
	s.funcs[discard].lines = nil
}

// Base allocates a buffer named key that is not a function definition and
// returns its handle. Its lines are returned by [Scope.Buffer].
func (s *Scope) Base(key string) int {
	if h, ok := s.index[key]; ok {
		return h
	}

	return s.alloc(key)
}

// Depth returns the number of frames above the base.
func (s *Scope) Depth() int { return len(s.frames) - 1 }

// Current returns the name of the function receiving lines, or "" when
// lines are discarded.
func (s *Scope) Current() string {
	return s.funcs[s.frames[len(s.frames)-1].target].name
}

// Buffer returns the lines of the buffer with handle h.
func (s *Scope) Buffer(h int) []string { return s.funcs[h].lines }

// Functions returns the defined functions in definition order.
func (s *Scope) Functions() []Function {
	out := make([]Function, 0, len(s.funcs)-1)

	for _, f := range s.funcs[1:] {
		out = append(out, Function{Name: f.name, Lines: f.lines})
	}

	return out
}

// Lookup returns the lines of the named function.
func (s *Scope) Lookup(name string) ([]string, bool) {
	h, ok := s.index[qualify(name, s.namespace)]
	if !ok {
		return nil, false
	}

	return s.funcs[h].lines, true
}

// EmitLine appends text to the innermost capture or to the current function.
func (s *Scope) EmitLine(text string) {
	if n := len(s.captures); n > 0 {
		s.captures[n-1] = append(s.captures[n-1], text)

		return
	}

	h := s.frames[len(s.frames)-1].target
	s.funcs[h].lines = append(s.funcs[h].lines, text)
}

// ToggleScope pops the top frame when it was entered with name, and pushes a
// frame targeting name otherwise.
func (s *Scope) ToggleScope(name string) {
	if n := len(s.frames); n > 1 && s.frames[n-1].key == name {
		s.frames = s.frames[:n-1]

		return
	}

	s.frames = append(s.frames, scopeFrame{key: name, target: s.index[name]})
}

// ReplaceScope retargets the top frame to name without changing its key.
func (s *Scope) ReplaceScope(name string) {
	s.frames[len(s.frames)-1].target = s.index[name]
}

// EnterCapture starts a capture.
func (s *Scope) EnterCapture() { s.captures = append(s.captures, []string{}) }

// ExitCapture ends the innermost capture and returns its lines.
func (s *Scope) ExitCapture() []string {
	n := len(s.captures)
	if n == 0 {
		return nil
	}

	lines := s.captures[n-1]
	s.captures = s.captures[:n-1]

	return lines
}

// DefineFunction parses def as "name [tag, ...] extra" and allocates a new
// empty function. An empty name is replaced by the first free
// "<namespace>:anon/function[_n]". Names default to the scope namespace and
// tags to "minecraft". It returns the qualified name and the text following
// the tag list.
func (s *Scope) DefineFunction(def string) (string, string, error) {
	m := reDefinition.FindStringSubmatch(def)
	if m == nil {
		return "", "", ErrDefinitionSyntax.With(slog.String("definition", def))
	}

	name, tags, extra := m[1], m[2], m[3]

	if name == "" {
		name = s.anonymous()
	}

	name = qualify(name, s.namespace)
	if _, ok := s.index[name]; ok {
		return "", "", ErrDuplicateName.With(slog.String("name", name))
	}

	if s.tags != nil && tags != "" {
		for tag := range strings.SplitSeq(tags, ",") {
			s.tags.Add(qualify(strings.TrimSpace(tag), "minecraft"), name)
		}
	}

	s.alloc(name)

	return name, extra, nil
}

func (s *Scope) anonymous() string {
	base := s.namespace + ":anon/function"
	if _, ok := s.index[base]; !ok {
		return base
	}

	for n := 1; ; n++ {
		name := base + "_" + strconv.Itoa(n)
		if _, ok := s.index[name]; !ok {
			return name
		}
	}
}

func (s *Scope) alloc(name string) int {
	s.funcs = append(s.funcs, functionBuffer{name: name})
	h := len(s.funcs) - 1
	s.index[name] = h

	return h
}

// qualify prefixes name with namespace unless it already has one.
func qualify(name, namespace string) string {
	if strings.Contains(name, ":") {
		return name
	}

	return namespace + ":" + name
}

// TagRegistry maps function tags to their functions in first-seen order.
type TagRegistry struct {
	order  []string
	values map[string][]string
}

// Add appends function to tag unless it is already listed.
func (t *TagRegistry) Add(tag, function string) {
	if t.values == nil {
		t.values = map[string][]string{}
	}

	vals, ok := t.values[tag]
	if !ok {
		t.order = append(t.order, tag)
	}

	for _, v := range vals {
		if v == function {
			return
		}
	}

	t.values[tag] = append(vals, function)
}

// Tags returns the tag names in first-seen order.
func (t *TagRegistry) Tags() []string { return t.order }

// Values returns the functions of tag.
func (t *TagRegistry) Values(tag string) []string { return t.values[tag] }

// Len returns the number of tags.
func (t *TagRegistry) Len() int { return len(t.order) }
