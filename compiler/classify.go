package compiler

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/ardnew/packscript/lang"
	"github.com/ardnew/packscript/log"
)

// Class is the kind of a logical source line.
type Class int

const (
	ClassPassthrough Class = iota
	ClassCommand
	ClassCreate
)

// String returns the name of the class.
func (c Class) String() string {
	switch c {
	case ClassCommand:
		return "command"
	case ClassCreate:
		return "create"
	default:
		return "passthrough"
	}
}

var (
	reCommand = regexp.MustCompile(`^([\t ]*)/(.*)$`)
	reCreate  = regexp.MustCompile(`^([\t ]*)create\b[ \t]*([\w/]+)\b[ \t]*([a-z0-9:/_.-]*)[ \t]*->(.*)$`)
	reIndent  = regexp.MustCompile(`^[\t ]*`)
)

// Logical is one logical source line. Pos is the position of its first
// physical line.
type Logical struct {
	Pos  lang.Pos
	Text string
}

// Split breaks src into logical lines. Trailing whitespace is removed from
// every physical line. A line ending with a backslash is joined with the next
// one, whose leading whitespace is dropped. A line that is not a command and
// leaves a bracket or a backtick string open is joined with the following
// lines, separated by a space, until it is balanced.
func Split(file, src string) []Logical {
	var (
		out     []Logical
		pending string
		joining bool
		bracket bool
		start   int
	)

	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimRight(raw, " \t\r\f\v")

		switch {
		case bracket:
			line = pending + " " + strings.TrimLeft(line, " \t")
		case joining:
			line = pending + strings.TrimLeft(line, " \t")
		default:
			start = i + 1
		}

		joining, bracket = false, false

		if strings.HasSuffix(line, `\`) {
			pending, joining = line[:len(line)-1], true

			continue
		}

		if !reCommand.MatchString(line) && unbalanced(line) {
			pending, bracket = line, true

			continue
		}

		out = append(out, Logical{Pos: lang.Pos{File: file, Line: start}, Text: line})
	}

	if joining || bracket {
		out = append(out, Logical{Pos: lang.Pos{File: file, Line: start}, Text: pending})
	}

	// A trailing newline leaves one empty element behind.
	if n := len(out); n > 0 && out[n-1].Text == "" {
		out = out[:n-1]
	}

	return out
}

// unbalanced reports whether s leaves a bracket or backtick string open.
// Quoted strings are skipped and '#' outside a string ends the scan.
func unbalanced(s string) bool {
	var (
		depth int
		quote rune
		esc   bool
	)

	for _, r := range s {
		switch {
		case esc:
			esc = false
		case quote != 0:
			switch {
			case r == '\\' && quote != '`':
				esc = true
			case r == quote:
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case r == '#':
			return depth > 0
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		}
	}

	return depth > 0 || quote == '`'
}

// Classify reports the class of a logical line and its parts: indent and
// command text for [ClassCommand]; indent, resource type, name and value
// expression for [ClassCreate]; indent and text for [ClassPassthrough].
func Classify(text string) (Class, []string) {
	if m := reCommand.FindStringSubmatch(text); m != nil {
		return ClassCommand, m[1:]
	}

	if m := reCreate.FindStringSubmatch(text); m != nil {
		return ClassCreate, m[1:]
	}

	indent := reIndent.FindString(text)

	return ClassPassthrough, []string{indent, text[len(indent):]}
}

// Lines classifies src and returns the lines the engine parses. Commands and
// resource creations are compiled into statements; everything else is left
// for the engine.
func Lines(file, src string) ([]lang.Line, error) {
	logical := Split(file, src)
	lines := make([]lang.Line, 0, len(logical))

	for _, l := range logical {
		class, part := Classify(l.Text)

		log.Trace("classify",
			slog.String("pos", l.Pos.String()),
			slog.String("class", class.String()),
			slog.String("text", l.Text),
		)

		line := lang.Line{Pos: l.Pos, Indent: part[0]}

		switch class {
		case ClassCommand:
			st, err := compileCommand(l.Pos, part[1])
			if err != nil {
				return nil, err
			}

			line.Stmt = st

		case ClassCreate:
			st, err := lang.NewCreate(l.Pos, part[1], part[2], part[3])
			if err != nil {
				return nil, located(err, l.Pos)
			}

			line.Stmt = st

		default:
			line.Text = part[1]
		}

		lines = append(lines, line)
	}

	return lines, nil
}
