package lang

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/expr-lang/expr/vm"
)

// Stmt is an executable statement.
type Stmt interface {
	Pos() Pos
	exec(ctx context.Context, m *Machine) error
}

// opener is a statement that may own an indented body.
type opener interface {
	Stmt
	opens() bool
	setBody(b Block)
}

// Mode selects how a function definition affects the scope stack.
type Mode int

const (
	// ModeBlock enters the new function for the indented body that follows.
	ModeBlock Mode = iota
	// ModeReplace retargets the current scope to the new function.
	ModeReplace
)

// String returns the marker that ends a definition in this mode.
func (m Mode) String() string {
	if m == ModeReplace {
		return ";"
	}

	return ":"
}

type pos struct{ at Pos }

func (p pos) Pos() Pos { return p.at }

type body struct{ body Block }

func (*body) opens() bool { return true }
func (b *body) setBody(x Block) { b.body = x }

// program is a compiled expression with its source.
type program struct {
	source string
	*vm.Program
}

func compileAt(where Pos, source string) (program, error) {
	source = strings.TrimSpace(source)

	p, err := compile(source)
	if err != nil {
		return program{}, at(err, where)
	}

	return program{source: source, Program: p}, nil
}

func (p program) eval(m *Machine) (any, error) {
	return run(p.Program, p.source, m.vars)
}

type (
	passStmt     struct{ pos }
	breakStmt    struct{ pos }
	continueStmt struct{ pos }

	exprStmt struct {
		pos
		value program
	}

	assignStmt struct {
		pos
		name  string
		value program
	}

	indexStmt struct {
		pos
		name  string
		key   program
		value program
	}

	clauseStmt struct {
		pos
		body
		keyword string
		cond    *program
	}

	ifStmt struct {
		pos
		clauses []*clauseStmt
		closed  bool
	}

	forStmt struct {
		pos
		body
		names []string
		iter  program
	}

	whileStmt struct {
		pos
		body
		cond program
	}

	captureStmt struct {
		pos
		body
		name string
	}

	includeStmt struct {
		pos
		path program
	}

	emitStmt struct {
		pos
		text *Template
	}

	functionStmt struct {
		pos
		body
		prefix *Template
		def    *Template
		mode   Mode
	}

	createStmt struct {
		pos
		typ   string
		name  string
		value program
	}
)

func (s *ifStmt) opens() bool { return true }
func (s *ifStmt) setBody(b Block) { s.clauses[0].body.body = b }
func (s *functionStmt) opens() bool { return s.mode == ModeBlock }

// NewEmit returns a statement that renders text and emits it as a line.
func NewEmit(at Pos, text *Template) Stmt {
	return &emitStmt{pos: pos{at}, text: text}
}

// NewFunction returns a statement that defines a function from the rendered
// def, emits "<prefix> <name><extra>" to the current scope, and then either
// enters the new function for its body ([ModeBlock]) or retargets the
// current scope to it ([ModeReplace]).
func NewFunction(at Pos, prefix, def *Template, mode Mode) Stmt {
	return &functionStmt{pos: pos{at}, prefix: prefix, def: def, mode: mode}
}

// NewCreate returns a statement that evaluates value and stores the result
// as the resource typ/name.
func NewCreate(at Pos, typ, name, value string) (Stmt, error) {
	p, err := compileAt(at, value)
	if err != nil {
		return nil, err
	}

	return &createStmt{pos: pos{at}, typ: typ, name: name, value: p}, nil
}

var (
	ident      = `[A-Za-z_]\w*`
	reIf       = regexp.MustCompile(`^if\b(.*):$`)
	reElif     = regexp.MustCompile(`^elif\b(.*):$`)
	reElse     = regexp.MustCompile(`^else\s*:$`)
	reWhile    = regexp.MustCompile(`^while\b(.*):$`)
	reFor      = regexp.MustCompile(`^for\s+(` + ident + `)(?:\s*,\s*(` + ident + `))?\s+in\b(.*):$`)
	reCapture  = regexp.MustCompile(`^capture\s+(` + ident + `)\s*:$`)
	reInclude  = regexp.MustCompile(`^include\b(.*)$`)
	reAssign   = regexp.MustCompile(`^(` + ident + `)\s*([-+*/]?=)(.*)$`)
	reIndexSet = regexp.MustCompile(`^(` + ident + `)\s*\[(.*?)\]\s*=(.*)$`)
	reKeyword  = regexp.MustCompile(`^(?:if|elif|else|for|while|capture|include|pass|break|continue)\b`)
)

// parseStmt parses passthrough text. inLoop reports whether break and
// continue are allowed.
func parseStmt(at Pos, text string, inLoop bool) (Stmt, error) {
	p := pos{at}
	syntax := func(reason string) error {
		return ErrSyntax.With(slog.String("reason", reason), slog.String("text", text)).At(at)
	}

	switch text {
	case "pass":
		return &passStmt{p}, nil
	case "break", "continue":
		if !inLoop {
			return nil, syntax("'" + text + "' outside loop")
		}

		if text == "break" {
			return &breakStmt{p}, nil
		}

		return &continueStmt{p}, nil
	}

	if m := reIf.FindStringSubmatch(text); m != nil {
		c, err := compileAt(at, m[1])
		if err != nil {
			return nil, err
		}

		return &ifStmt{pos: p, clauses: []*clauseStmt{{pos: p, keyword: "if", cond: &c}}}, nil
	}

	if m := reElif.FindStringSubmatch(text); m != nil {
		c, err := compileAt(at, m[1])
		if err != nil {
			return nil, err
		}

		return &clauseStmt{pos: p, keyword: "elif", cond: &c}, nil
	}

	if reElse.MatchString(text) {
		return &clauseStmt{pos: p, keyword: "else"}, nil
	}

	if m := reWhile.FindStringSubmatch(text); m != nil {
		c, err := compileAt(at, m[1])
		if err != nil {
			return nil, err
		}

		return &whileStmt{pos: p, cond: c}, nil
	}

	if m := reFor.FindStringSubmatch(text); m != nil {
		it, err := compileAt(at, m[3])
		if err != nil {
			return nil, err
		}

		names := []string{m[1]}
		if m[2] != "" {
			names = append(names, m[2])
		}

		return &forStmt{pos: p, names: names, iter: it}, nil
	}

	if m := reCapture.FindStringSubmatch(text); m != nil {
		return &captureStmt{pos: p, name: m[1]}, nil
	}

	if m := reInclude.FindStringSubmatch(text); m != nil {
		path, err := compileAt(at, m[1])
		if err != nil {
			return nil, err
		}

		return &includeStmt{pos: p, path: path}, nil
	}

	if reKeyword.MatchString(text) {
		return nil, syntax("malformed statement")
	}

	if m := reIndexSet.FindStringSubmatch(text); m != nil && !strings.HasPrefix(m[3], "=") {
		key, err := compileAt(at, m[2])
		if err != nil {
			return nil, err
		}

		val, err := compileAt(at, m[3])
		if err != nil {
			return nil, err
		}

		return &indexStmt{pos: p, name: m[1], key: key, value: val}, nil
	}

	if m := reAssign.FindStringSubmatch(text); m != nil && !strings.HasPrefix(m[3], "=") {
		source := m[3]
		if op := strings.TrimSuffix(m[2], "="); op != "" {
			source = m[1] + " " + op + " (" + m[3] + ")"
		}

		val, err := compileAt(at, source)
		if err != nil {
			return nil, err
		}

		return &assignStmt{pos: p, name: m[1], value: val}, nil
	}

	if strings.HasSuffix(text, ":") {
		return nil, syntax("unknown block statement")
	}

	val, err := compileAt(at, text)
	if err != nil {
		return nil, err
	}

	return &exprStmt{pos: p, value: val}, nil
}
