package repl

import (
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/packscript/lang"
)

// exprBuiltins holds signatures of the expression language builtins that are
// most useful in scripts.
var exprBuiltins = map[string]struct {
	signature string
	params    []string
}{
	"len":     {"len(v)", []string{"v"}},
	"all":     {"all(array, predicate)", []string{"array", "predicate"}},
	"any":     {"any(array, predicate)", []string{"array", "predicate"}},
	"map":     {"map(array, mapper)", []string{"array", "mapper"}},
	"filter":  {"filter(array, predicate)", []string{"array", "predicate"}},
	"find":    {"find(array, predicate)", []string{"array", "predicate"}},
	"count":   {"count(array, predicate)", []string{"array", "predicate"}},
	"sum":     {"sum(array)", []string{"array"}},
	"min":     {"min(array)", []string{"array"}},
	"max":     {"max(array)", []string{"array"}},
	"join":    {"join(array, separator)", []string{"array", "separator"}},
	"split":   {"split(string, separator)", []string{"string", "separator"}},
	"replace": {"replace(string, old, new)", []string{"string", "old", "new"}},
	"trim":    {"trim(string)", []string{"string"}},
	"upper":   {"upper(string)", []string{"string"}},
	"lower":   {"lower(string)", []string{"string"}},
	"int":     {"int(v)", []string{"v"}},
	"float":   {"float(v)", []string{"v"}},
	"string":  {"string(v)", []string{"v"}},
	"keys":    {"keys(map)", []string{"map"}},
	"values":  {"values(map)", []string{"map"}},
}

// exprBuiltinNames returns the names of the expression builtins.
func exprBuiltinNames() []string {
	names := make([]string, 0, len(exprBuiltins))
	for name := range exprBuiltins {
		names = append(names, name)
	}

	return names
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall is a call whose argument list contains the cursor.
type functionCall struct {
	name     string
	argIndex int
	inCall   bool
}

// detectFunctionCall reports the call, if any, whose parentheses enclose
// cursor, and the index of the argument under it.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open := -1
	depth := 0

	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		if r == ')' {
			depth++
		} else if r == '(' {
			if depth == 0 {
				open = i

				break
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '_' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	arg := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				arg++
			}
		}
	}

	return functionCall{name: name, argIndex: arg, inCall: true}
}

// getSignature returns the signature of a builtin and its parameter names,
// or an empty signature when name is not a known function.
func getSignature(name string) (string, []string) {
	if b, ok := exprBuiltins[name]; ok {
		return b.signature, b.params
	}

	v, ok := lang.BuiltinType(name)
	if !ok {
		return "", nil
	}

	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Func {
		return "", nil
	}

	params := make([]string, t.NumIn())
	for i := range params {
		if t.IsVariadic() && i == len(params)-1 {
			params[i] = "..." + formatTypeName(t.In(i).Elem())
		} else {
			params[i] = formatTypeName(t.In(i))
		}
	}

	return name + "(" + strings.Join(params, ", ") + ")", params
}

// formatTypeName returns a short name for a parameter type.
func formatTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "list"
	case reflect.Map:
		return "map"
	case reflect.Interface:
		return "any"
	case reflect.Func:
		return "func"
	default:
		return "arg"
	}
}

// renderSignatureHint renders signature with the parameter at index current
// highlighted. A variadic parameter stays highlighted for every later index.
func renderSignatureHint(signature string, params []string, current int) string {
	open := strings.Index(signature, "(")
	if open < 0 {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(signature[:open]))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == current || (strings.HasPrefix(p, "...") && current >= i) {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
