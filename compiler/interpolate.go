package compiler

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/ardnew/packscript/lang"
)

var (
	reInterpolation = regexp.MustCompile(`\$\{\{(.*?)\}\}|\$([a-zA-Z_]\w*)`)
	reFunction      = regexp.MustCompile(`\bfunction\b`)
)

// span is an interpolation marker covering text[lo:hi].
type span struct {
	lo, hi int
	expr   string
}

// interpolations returns the markers in text in order. A bare $name at the
// very start of text is literal.
func interpolations(text string) []span {
	var out []span

	for _, m := range reInterpolation.FindAllStringSubmatchIndex(text, -1) {
		switch {
		case m[2] >= 0:
			out = append(out, span{lo: m[0], hi: m[1], expr: text[m[2]:m[3]]})
		case m[0] > 0:
			out = append(out, span{lo: m[0], hi: m[1], expr: text[m[4]:m[5]]})
		}
	}

	return out
}

// segments returns text[lo:hi] as template segments. Markers must not cross
// the bounds.
func segments(text string, spans []span, lo, hi int) []lang.Segment {
	var segs []lang.Segment

	for _, s := range spans {
		if s.hi <= lo || s.lo >= hi {
			continue
		}

		if s.lo > lo {
			segs = append(segs, lang.Lit(text[lo:s.lo]))
		}

		segs = append(segs, lang.Sub(s.expr))
		lo = s.hi
	}

	if lo < hi {
		segs = append(segs, lang.Lit(text[lo:hi]))
	}

	return segs
}

// functionEnd returns the offset just past the right-most "function" word in
// text that is neither hyphenated nor part of a marker, or -1.
func functionEnd(text string, spans []span) int {
	matches := reFunction.FindAllStringIndex(text, -1)

next:
	for i := len(matches) - 1; i >= 0; i-- {
		lo, hi := matches[i][0], matches[i][1]

		if lo > 0 && text[lo-1] == '-' || hi < len(text) && text[hi] == '-' {
			continue
		}

		for _, s := range spans {
			if lo < s.hi && s.lo < hi {
				continue next
			}
		}

		return hi
	}

	return -1
}

// compileCommand compiles the text of a command line (after its slash).
// Text ending with ':' defines a function whose body is the indented block
// below; text ending with ';' defines a function and makes it the current
// one. Either way the definition is the text between the right-most
// "function" word and the final character.
func compileCommand(pos lang.Pos, text string) (lang.Stmt, error) {
	spans := interpolations(text)

	var mode lang.Mode

	switch {
	case strings.HasSuffix(text, ":"):
		mode = lang.ModeBlock
	case strings.HasSuffix(text, ";"):
		mode = lang.ModeReplace
	default:
		tmpl, err := lang.NewTemplate(segments(text, spans, 0, len(text))...)
		if err != nil {
			return nil, located(err, pos)
		}

		return lang.NewEmit(pos, tmpl), nil
	}

	last := len(text) - 1

	end := functionEnd(text[:last], spans)
	if end < 0 {
		return nil, ErrSyntax.With(slog.String("command", text)).At(pos)
	}

	lo, hi := end, last
	for lo < hi && isSpace(text[lo]) {
		lo++
	}

	for hi > lo && isSpace(text[hi-1]) {
		hi--
	}

	prefix, err := lang.NewTemplate(segments(text, spans, 0, end)...)
	if err != nil {
		return nil, located(err, pos)
	}

	def, err := lang.NewTemplate(segments(text, spans, lo, hi)...)
	if err != nil {
		return nil, located(err, pos)
	}

	return lang.NewFunction(pos, prefix, def, mode), nil
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

// located attaches pos to err.
func located(err error, pos lang.Pos) error {
	if err == nil {
		return nil
	}

	return lang.WrapError(err).At(pos)
}
