package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Pos is a source position.
type Pos struct {
	File string
	Line int
}

// String returns "file:line".
func (p Pos) String() string { return p.File + ":" + strconv.Itoa(p.Line) }

// Attrs returns the position as logging attributes.
func (p Pos) Attrs() []slog.Attr {
	return []slog.Attr{slog.String("file", p.File), slog.Int("line", p.Line)}
}

// Line is one logical source line. Exactly one of Text and Stmt is used: a
// nil Stmt means Text is parsed as an engine statement.
type Line struct {
	Pos    Pos
	Indent string
	Text   string
	Stmt   Stmt
}

// Block is a sequence of statements at one indentation level.
type Block []Stmt

// tabWidth is the column multiple a tab advances to.
const tabWidth = 8

// width returns the column width of leading whitespace.
func width(indent string) int {
	w := 0

	for _, r := range indent {
		if r == '\t' {
			w += tabWidth - w%tabWidth
		} else {
			w++
		}
	}

	return w
}

// Parse arranges lines into a block tree. A statement that opens a block
// (its text ends with ':') owns the following lines indented deeper than
// itself; elif and else attach to the if statement before them.
func Parse(lines []Line) (Block, error) {
	p := &parser{lines: lines}

	b, err := p.block(-1)
	if err != nil {
		return nil, err
	}

	if p.next < len(p.lines) {
		ln := p.lines[p.next]

		return nil, ErrIndentation.With(slog.String("reason", "unindent does not match any outer level")).At(ln.Pos)
	}

	return b, nil
}

type parser struct {
	lines []Line
	next  int
	loops int
}

// skip reports whether ln carries no statement.
func skip(ln Line) bool {
	if ln.Stmt != nil {
		return false
	}

	t := strings.TrimSpace(ln.Text)

	return t == "" || strings.HasPrefix(t, "#")
}

func (p *parser) block(outer int) (Block, error) {
	var (
		b     Block
		level = -1
	)

	for p.next < len(p.lines) {
		ln := p.lines[p.next]
		if skip(ln) {
			p.next++

			continue
		}

		w := width(ln.Indent)
		if w <= outer {
			break
		}

		switch {
		case level < 0:
			level = w
		case w > level:
			return nil, ErrIndentation.With(slog.String("reason", "unexpected indent")).At(ln.Pos)
		case w < level:
			return nil, ErrIndentation.With(slog.String("reason", "unindent does not match any outer level")).At(ln.Pos)
		}

		p.next++

		st := ln.Stmt
		if st == nil {
			var err error

			if st, err = parseStmt(ln.Pos, strings.TrimSpace(ln.Text), p.loops > 0); err != nil {
				return nil, err
			}
		}

		if o, ok := st.(opener); ok && o.opens() {
			_, loop := st.(*forStmt)
			_, while := st.(*whileStmt)

			if loop || while {
				p.loops++
			}

			body, err := p.block(w)

			if loop || while {
				p.loops--
			}

			if err != nil {
				return nil, err
			}

			if len(body) == 0 {
				return nil, ErrIndentation.With(slog.String("reason", "expected an indented block")).At(ln.Pos)
			}

			o.setBody(body)
		}

		if c, ok := st.(*clauseStmt); ok {
			prev, isIf := lastIf(b)
			if !isIf || prev.closed {
				return nil, ErrSyntax.With(slog.String("reason", c.keyword+" without if")).At(ln.Pos)
			}

			prev.clauses = append(prev.clauses, c)
			prev.closed = c.cond == nil

			continue
		}

		b = append(b, st)
	}

	return b, nil
}

func lastIf(b Block) (*ifStmt, bool) {
	if len(b) == 0 {
		return nil, false
	}

	s, ok := b[len(b)-1].(*ifStmt)

	return s, ok
}
