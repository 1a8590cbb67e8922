package repl

import (
	"slices"
	"testing"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/packscript/compiler"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_assign", "x = fo", 6, "fo", 4, 6},
		{"after_paren", "range(fo", 8, "fo", 6, 8},
		{"after_dollar", "/say $na", 8, "na", 6, 8},
		{"in_template", "/say ${{ le", 11, "le", 9, 11},
		{"function_name", "/function demo:util/ru", 22, "demo:util/ru", 10, 22},
		{"command", "/fun", 4, "/fun", 0, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"cursor_past_end", "abc", 10, "abc", 0, 3},
		{"quoted", `read("fi`, 8, "fi", 6, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestIsFunction(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"range", true},
		{"resource", true},
		{"ns", false},
		{"pack_format", false},
		{"len", true},
		{"nope", false},
	}

	for _, tt := range tests {
		if got := isFunction(tt.name); got != tt.want {
			t.Errorf("isFunction(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestModel_ComputeMatches(t *testing.T) {
	s := compiler.NewSession("repl", 48, nil)
	if _, err := s.Exec(t.Context(), "greeting = 1\n/function helper:\n    /say hi\n"); err != nil {
		t.Fatal(err)
	}

	m := newModel(t.Context(), s, NewHistory(t.TempDir()+"/history"))

	m.input.SetValue("gree")
	m.input.SetCursor(4)

	matches, _, start, end := m.computeMatches()
	if start != 0 || end != 4 || !hasMatch(matches, "greeting") {
		t.Errorf("computeMatches(gree) = %v [%d:%d]", matches, start, end)
	}

	m.input.SetValue("/function repl:hel")
	m.input.SetCursor(18)

	if matches, _, _, _ = m.computeMatches(); !hasMatch(matches, "repl:helper") {
		t.Errorf("computeMatches(function) = %v", matches)
	}

	m, _ = m.switchToMode(modeCtrl)
	m.input.SetValue("func")
	m.input.SetCursor(4)

	if matches, _, _, _ = m.computeMatches(); !hasMatch(matches, "functions") {
		t.Errorf("computeMatches(ctrl) = %v", matches)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Find("r", []string{"range", "read", "resource", "repeat", "return"})

	if got := renderCandidateBar(matches, 0, true, 0); got != "" {
		t.Errorf("renderCandidateBar(width 0) = %q", got)
	}

	if got := renderCandidateBar(nil, 0, false, 80); got != "" {
		t.Errorf("renderCandidateBar(nil) = %q", got)
	}

	if got := renderCandidateBar(matches, 0, false, 80); got == "" {
		t.Error("renderCandidateBar() is empty")
	}
}

func hasMatch(matches fuzzy.Matches, s string) bool {
	return slices.ContainsFunc(matches, func(m fuzzy.Match) bool { return m.Str == s })
}
