package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/fatih/color"
)

var (
	keyColor   = color.New(color.FgCyan)
	timeColor  = color.New(color.FgHiBlack)
	msgColor   = color.New(color.Bold)
	valueColor = color.New(color.FgGreen)
	levelColor = map[slog.Level]*color.Color{
		slog.Level(LevelTrace): color.New(color.FgMagenta),
		slog.Level(LevelDebug): color.New(color.FgBlue),
		slog.Level(LevelInfo):  color.New(color.FgGreen),
		slog.Level(LevelWarn):  color.New(color.FgYellow),
		slog.Level(LevelError): color.New(color.FgRed, color.Bold),
	}
)

// prettyHandler writes colorized records as either key=value text or
// single-line JSON objects.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	json   bool
	prefix []byte // preformatted attributes from WithAttrs
	groups []string
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, json bool) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, json: json}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if h.json {
		buf.WriteByte('{')
	}

	n := 0
	builtin := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Equal(slog.Attr{}) {
			return
		}

		h.writeBuiltin(&buf, n, a, r.Level)
		n++
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	builtin(slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if f := r.Source(); f != nil {
			builtin(slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", f.File, f.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	if len(h.prefix) > 0 {
		h.sep(&buf, n)
		buf.Write(h.prefix)
		n++
	}

	r.Attrs(func(a slog.Attr) bool {
		if h.writeAttr(&buf, n, h.groups, a) {
			n++
		}

		return true
	})

	if h.json {
		buf.WriteByte('}')
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	buf := bytes.NewBuffer(append([]byte(nil), h.prefix...))
	n := len(h.prefix)

	for _, a := range attrs {
		if h.writeAttr(buf, n, h.groups, a) {
			n++
		}
	}

	c.prefix = buf.Bytes()

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.groups = append(append([]string(nil), h.groups...), name)

	return &c
}

func (h *prettyHandler) sep(buf *bytes.Buffer, n int) {
	if n == 0 {
		return
	}

	if h.json {
		buf.WriteByte(',')
	} else {
		buf.WriteByte(' ')
	}
}

func (h *prettyHandler) key(buf *bytes.Buffer, groups []string, k string) {
	for i := len(groups) - 1; i >= 0; i-- {
		k = groups[i] + "." + k
	}

	if h.json {
		buf.WriteString(keyColor.Sprint(strconv.Quote(k)))
		buf.WriteByte(':')
	} else {
		buf.WriteString(keyColor.Sprint(k))
		buf.WriteByte('=')
	}
}

func (h *prettyHandler) writeBuiltin(buf *bytes.Buffer, n int, a slog.Attr, level slog.Level) {
	h.sep(buf, n)

	s := a.Value.Resolve().String()

	switch a.Key {
	case slog.TimeKey:
		s = timeColor.Sprint(h.text(s))
	case slog.LevelKey:
		if c, ok := levelColor[level]; ok {
			s = c.Sprint(h.text(s))
		} else {
			s = h.text(s)
		}
	case slog.MessageKey:
		s = msgColor.Sprint(h.text(s))
	default:
		s = h.text(s)
	}

	if h.json || a.Key != slog.MessageKey {
		h.key(buf, nil, a.Key)
	}

	buf.WriteString(s)
}

// writeAttr writes a, flattening groups into dotted keys. It reports whether
// anything was written.
func (h *prettyHandler) writeAttr(buf *bytes.Buffer, n int, groups []string, a slog.Attr) bool {
	a.Value = a.Value.Resolve()

	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(groups, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return false
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := groups
		if a.Key != "" {
			sub = append(append([]string(nil), groups...), a.Key)
		}

		wrote := false

		for _, ga := range a.Value.Group() {
			if h.writeAttr(buf, n, sub, ga) {
				wrote = true
				n++
			}
		}

		return wrote
	}

	h.sep(buf, n)
	h.key(buf, groups, a.Key)

	switch a.Value.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool:
		buf.WriteString(valueColor.Sprint(a.Value.String()))
	default:
		buf.WriteString(valueColor.Sprint(h.text(a.Value.String())))
	}

	return true
}

// text quotes s for JSON output, or for text output when it contains spaces.
func (h *prettyHandler) text(s string) string {
	if h.json {
		return strconv.Quote(s)
	}

	for _, r := range s {
		if r == ' ' || r == '=' || r == '"' || r < 0x20 {
			return strconv.Quote(s)
		}
	}

	return s
}
