package compiler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"reflect"
)

// Kind identifies the representation of a resource [Value].
type Kind int

const (
	KindMap Kind = iota
	KindList
	KindText
	KindBinary
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindList:
		return "list"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Value is resource content: structured data written as JSON, or text and
// bytes written verbatim.
type Value struct {
	kind Kind
	data any
}

// ValueOf converts an engine value to resource content. Maps with string
// keys, lists, strings and byte slices are accepted.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case map[string]any:
		return Value{kind: KindMap, data: x}, nil
	case []any:
		return Value{kind: KindList, data: x}, nil
	case string:
		return Value{kind: KindText, data: x}, nil
	case []byte:
		return Value{kind: KindBinary, data: x}, nil
	}

	if v != nil {
		switch rv := reflect.ValueOf(v); rv.Kind() {
		case reflect.Map:
			if rv.Type().Key().Kind() == reflect.String {
				return Value{kind: KindMap, data: v}, nil
			}
		case reflect.Slice, reflect.Array:
			return Value{kind: KindList, data: v}, nil
		}
	}

	return Value{}, ErrContentType.With(slog.String("type", typeName(v)))
}

// Kind returns the representation of v.
func (v Value) Kind() Kind { return v.kind }

// Any returns the engine value held by v.
func (v Value) Any() any { return v.data }

// Encode returns the file content of v. Maps and lists become JSON with
// sorted keys indented by two spaces; text and bytes are returned unchanged.
func (v Value) Encode() ([]byte, error) {
	switch v.kind {
	case KindText:
		s, _ := v.data.(string)

		return []byte(s), nil

	case KindBinary:
		b, _ := v.data.([]byte)

		return b, nil
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v.data); err != nil {
		return nil, ErrSerialize.Wrap(err).With(slog.String("kind", v.kind.String()))
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}

	return reflect.TypeOf(v).String()
}
