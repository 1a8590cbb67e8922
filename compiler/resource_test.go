package compiler

import (
	"errors"
	"testing"
)

func TestValue_Encode(t *testing.T) {
	tests := []struct {
		name  string
		value any
		kind  Kind
		want  string
	}{
		{
			name:  "map",
			value: map[string]any{"b": 1, "a": []any{1, "<x>"}},
			kind:  KindMap,
			want:  "{\n  \"a\": [\n    1,\n    \"<x>\"\n  ],\n  \"b\": 1\n}",
		},
		{
			name:  "list",
			value: []any{"x"},
			kind:  KindList,
			want:  "[\n  \"x\"\n]",
		},
		{
			name:  "typed list",
			value: []int{1, 2},
			kind:  KindList,
			want:  "[\n  1,\n  2\n]",
		},
		{
			name:  "text",
			value: "plain {text}",
			kind:  KindText,
			want:  "plain {text}",
		},
		{
			name:  "binary",
			value: []byte{0x89, 'P', 'N', 'G'},
			kind:  KindBinary,
			want:  "\x89PNG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ValueOf(tt.value)
			if err != nil {
				t.Fatalf("ValueOf() error = %v", err)
			}

			if v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", v.Kind(), tt.kind)
			}

			b, err := v.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			if string(b) != tt.want {
				t.Errorf("Encode() = %q, want %q", b, tt.want)
			}
		})
	}
}

func TestValueOf_ContentType(t *testing.T) {
	for _, v := range []any{nil, 42, 1.5, true, map[int]any{1: 2}} {
		if _, err := ValueOf(v); !errors.Is(err, ErrContentType) {
			t.Errorf("ValueOf(%v) error = %v, want %v", v, err, ErrContentType)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry("test")

	if err := r.Set("loot_table", "a", map[string]any{"v": 1}); err != nil {
		t.Fatal(err)
	}

	if err := r.Set("loot_table", "test:a.json", map[string]any{"v": 2}); err != nil {
		t.Fatal(err)
	}

	if err := r.Set("loot_table", "b", 3); !errors.Is(err, ErrContentType) {
		t.Errorf("Set() error = %v, want %v", err, ErrContentType)
	}

	v, err := r.Get("loot_table", "test:a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got := v.Any().(map[string]any)["v"]; got != 2 {
		t.Errorf("Get() = %v, want last write 2", got)
	}

	if _, err := r.Get("loot_table", "missing"); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("Get(missing) error = %v, want %v", err, ErrResourceNotFound)
	}

	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestResource_Path(t *testing.T) {
	tests := []struct {
		typ, name string
		want      string
	}{
		{"loot_table", "test:chest/a", "data/test/loot_table/chest/a.json"},
		{"item_modifier", "test:notes.txt", "data/test/item_modifier/notes.txt"},
		{"tags/function", "minecraft:tick", "data/minecraft/tags/function/tick.json"},
		{"predicate", "x", "data/minecraft/predicate/x.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Resource{Type: tt.typ, Name: tt.name}).Path(); got != tt.want {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRegistry_MergeTags(t *testing.T) {
	var tags TagRegistry

	tags.Add("minecraft:load", "test:init")
	tags.Add("minecraft:load", "test:other")

	r := NewRegistry("test")
	r.MergeTags(&tags, "function")

	res := r.Resources()
	if len(res) != 1 {
		t.Fatalf("Resources() = %v, want one tag", res)
	}

	b, err := res[0].Value.Encode()
	if err != nil {
		t.Fatal(err)
	}

	want := "{\n  \"values\": [\n    \"test:init\",\n    \"test:other\"\n  ]\n}"
	if string(b) != want {
		t.Errorf("tag = %q, want %q", b, want)
	}

	if got := res[0].Path(); got != "data/minecraft/tags/function/load.json" {
		t.Errorf("Path() = %q", got)
	}
}
