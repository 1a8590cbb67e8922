package repl

import (
	"reflect"
	"strings"
	"testing"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   functionCall
	}{
		{"no call", "x = 1", 5, functionCall{}},
		{"first arg", "range(", 6, functionCall{"range", 0, true}},
		{"second arg", "range(1, ", 9, functionCall{"range", 1, true}},
		{"nested closed", "len(range(3), ", 14, functionCall{"len", 1, true}},
		{"inside nested", "len(range(3", 11, functionCall{"range", 0, true}},
		{"list literal", "join([1, 2], ", 13, functionCall{"join", 1, true}},
		{"after close", "range(3) ", 9, functionCall{}},
		{"bare paren", "(1, ", 4, functionCall{}},
		{"in template", "/say ${{ str(", 13, functionCall{"str", 0, true}},
		{"cursor past end", "read(", 99, functionCall{"read", 0, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFunctionCall(tt.input, tt.cursor); got != tt.want {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want %+v", tt.input, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
	}{
		{"range", "range(...int)", []string{"...int"}},
		{"set_resource", "set_resource(string, string, any)", []string{"string", "string", "any"}},
		{"read", "read(string)", []string{"string"}},
		{"join", "join(array, separator)", []string{"array", "separator"}},
		{"ns", "", nil},
		{"nope", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, params := getSignature(tt.name)
			if sig != tt.wantSig || !reflect.DeepEqual(params, tt.wantParams) {
				t.Errorf("getSignature(%q) = %q, %v, want %q, %v", tt.name, sig, params, tt.wantSig, tt.wantParams)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	got := renderSignatureHint("resource(string, string)", []string{"string", "string"}, 1)
	if !strings.Contains(got, "resource") || strings.Count(got, "string") != 2 {
		t.Errorf("renderSignatureHint() = %q", got)
	}

	if got := renderSignatureHint("plain", nil, 0); !strings.Contains(got, "plain") {
		t.Errorf("renderSignatureHint(plain) = %q", got)
	}
}
