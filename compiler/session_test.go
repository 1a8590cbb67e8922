package compiler

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestSession_Exec(t *testing.T) {
	s := NewSession("demo", 48, nil)
	ctx := context.Background()

	steps := []struct {
		input string
		want  []string
	}{
		{"n = 3", nil},
		{"/say top $n", []string{"say top 3"}},
		{script("/function main [load]:", "    for i in range(n):", "        /say $i"), nil},
		{"/function demo:main", []string{"function demo:main"}},
		{"create loot_table x -> {\"pools\": []}", nil},
	}

	for _, st := range steps {
		got, err := s.Exec(ctx, st.input)
		if err != nil {
			t.Fatalf("Exec(%q) error = %v", st.input, err)
		}

		if len(got) != len(st.want) || (len(got) > 0 && !reflect.DeepEqual(got, st.want)) {
			t.Errorf("Exec(%q) = %q, want %q", st.input, got, st.want)
		}
	}

	if lines, ok := s.Lookup("main"); !ok || !reflect.DeepEqual(lines, []string{"say 0", "say 1", "say 2"}) {
		t.Errorf("Lookup(main) = %v, %v", lines, ok)
	}

	if got := s.Tags().Values("minecraft:load"); !reflect.DeepEqual(got, []string{"demo:main"}) {
		t.Errorf("load tag = %v", got)
	}

	if res := s.Resources(); len(res) != 1 || res[0].Path() != "data/demo/loot_table/x.json" {
		t.Errorf("Resources() = %+v", res)
	}

	if v, ok := s.Get("n"); !ok || v != 3 {
		t.Errorf("Get(n) = %v, %v", v, ok)
	}

	if s.Namespace() != "demo" || len(s.Functions()) != 1 {
		t.Errorf("Namespace() = %q, Functions() = %v", s.Namespace(), s.Functions())
	}
}

func TestSession_ExecError(t *testing.T) {
	s := NewSession("demo", 48, nil)

	if _, err := s.Exec(context.Background(), "/execute run:"); !errors.Is(err, ErrSyntax) {
		t.Errorf("Exec() error = %v, want %v", err, ErrSyntax)
	}

	got, err := s.Exec(context.Background(), "/say fine")
	if err != nil || !reflect.DeepEqual(got, []string{"say fine"}) {
		t.Errorf("Exec() after error = %q, %v", got, err)
	}
}
