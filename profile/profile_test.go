package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Start(t *testing.T) {
	tests := []struct {
		name string
		p    Profiler
	}{
		{"disabled", Profiler{}},
		{"unknown mode", Profiler{Mode: "bogus", Path: t.TempDir(), Quiet: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.p.Start()
			if s == nil {
				t.Fatal("Start() = nil")
			}

			s.Stop()
		})
	}
}

func TestModes(t *testing.T) {
	modes := Modes()
	if !slices.IsSorted(modes) {
		t.Errorf("Modes() = %v, not sorted", modes)
	}
}
