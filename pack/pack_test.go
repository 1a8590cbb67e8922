package pack

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestFolder(t *testing.T) {
	tests := []struct {
		kind   string
		format int
		want   string
	}{
		{"function", 15, "functions"},
		{"function", 44, "functions"},
		{"function", 45, "function"},
		{"source", 14, "sources"},
		{"source", 15, "source"},
		{"source", 44, "source"},
		{"source", 48, "source"},
	}

	for _, tt := range tests {
		if got := Folder(tt.kind, tt.format); got != tt.want {
			t.Errorf("Folder(%q, %d) = %q, want %q", tt.kind, tt.format, got, tt.want)
		}
	}
}

func TestVersionOrFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1.21.4", 61, false},
		{"1.19.2", 10, false},
		{"1.16.3", 6, false},
		{"1.14.4", 4, false},
		{"future", Future, false},
		{"48", 48, false},
		{"1.99", 0, true},
		{"ov", 0, true},
	}

	for _, tt := range tests {
		got, err := VersionOrFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("VersionOrFormat(%q) = %d, %v", tt.in, got, err)
		}

		if err != nil && !errors.Is(err, ErrUnknownVersion) {
			t.Errorf("error = %v, want %v", err, ErrUnknownVersion)
		}
	}
}

func TestVersions(t *testing.T) {
	v := Versions()

	if v[0] != "future" || v[1] != "1.21.6" || v[len(v)-1] != "1.13" {
		t.Errorf("Versions() = %v", v)
	}

	if got, want := VersionsOf(57), []string{"1.21.3", "1.21.2"}; !slices.Equal(got, want) {
		t.Errorf("VersionsOf(57) = %v, want %v", got, want)
	}

	if got, want := VersionsOf(48), []string{"1.21.1", "1.21"}; !slices.Equal(got, want) {
		t.Errorf("VersionsOf(48) = %v, want %v", got, want)
	}

	if got := VersionsOf(3); got != nil {
		t.Errorf("VersionsOf(3) = %v, want none", got)
	}

	if !IsRelease("1.20.2") || IsRelease("48") {
		t.Error("IsRelease misclassified")
	}
}

func TestParseOverlay(t *testing.T) {
	tests := []struct {
		dir  string
		want Formats
	}{
		{"1_20_2", Formats{18, 18}},
		{"1_20_3-1_20_5", Formats{26, 41}},
		{"1_21-future", Formats{48, Future}},
		{"48", Formats{48, 48}},
		{"15-26", Formats{15, 26}},
	}

	for _, tt := range tests {
		got, err := ParseOverlay(tt.dir)
		if err != nil || got != tt.want {
			t.Errorf("ParseOverlay(%q) = %v, %v; want %v", tt.dir, got, err, tt.want)
		}
	}

	for _, dir := range []string{"extra", "ov_48", "1_99-2_0", "0"} {
		if _, err := ParseOverlay(dir); !errors.Is(err, ErrUnregisteredOverlay) {
			t.Errorf("ParseOverlay(%q) error = %v, want %v", dir, err, ErrUnregisteredOverlay)
		}
	}
}

func TestReadManifest(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		format    int
		supported Formats
		hasRange  bool
		wantErr   error
	}{
		{"plain", `{"pack": {"pack_format": 48, "description": "x"}}`, 48, Formats{}, false, nil},
		{"object range", `{"pack": {"pack_format": 48, "supported_formats": {"min_inclusive": 41, "max_inclusive": 61}}}`, 48, Formats{41, 61}, true, nil},
		{"list range", `{"pack": {"pack_format": 26, "supported_formats": [18, 26]}}`, 26, Formats{18, 26}, true, nil},
		{"not json", `pack_format = 48`, 0, Formats{}, false, ErrInvalidManifest},
		{"no pack", `{"overlays": {}}`, 0, Formats{}, false, ErrInvalidManifest},
		{"string format", `{"pack": {"pack_format": "48"}}`, 0, Formats{}, false, ErrInvalidManifest},
		{"float format", `{"pack": {"pack_format": 4.5}}`, 0, Formats{}, false, ErrInvalidManifest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadManifest(strings.NewReader(tt.doc))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if m.Format() != tt.format {
				t.Errorf("Format() = %d, want %d", m.Format(), tt.format)
			}

			if f, ok := m.Supported(); ok != tt.hasRange || f != tt.supported {
				t.Errorf("Supported() = %v, %v", f, ok)
			}
		})
	}
}

func TestManifest_Overlays(t *testing.T) {
	m, err := ReadManifest(strings.NewReader(`{
		"pack": {"pack_format": 48},
		"overlays": {"entries": [{"formats": 61, "directory": "late"}]}
	}`))
	if err != nil {
		t.Fatal(err)
	}

	m.PrependOverlay("1_20_2", Formats{18, 18})
	m.PrependOverlay("1_20_3-1_20_5", Formats{26, 41})

	var dirs []string
	for _, o := range m.Overlays() {
		dirs = append(dirs, o.Directory)
	}

	if want := []string{"1_20_3-1_20_5", "1_20_2", "late"}; !slices.Equal(dirs, want) {
		t.Errorf("overlays = %v, want %v", dirs, want)
	}

	if !m.HasOverlay("late") || m.HasOverlay("other") {
		t.Error("HasOverlay misreported")
	}

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	want := `{
    "overlays": {
        "entries": [
            {
                "directory": "1_20_3-1_20_5",
                "formats": {
                    "max_inclusive": 41,
                    "min_inclusive": 26
                }
            },
            {
                "directory": "1_20_2",
                "formats": 18
            },
            {
                "directory": "late",
                "formats": 61
            }
        ]
    },
    "pack": {
        "pack_format": 48
    }
}`

	if got := buf.String(); got != want {
		t.Errorf("Encode =\n%s\nwant\n%s", got, want)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadManifest(dir); !errors.Is(err, ErrMissingManifest) {
		t.Fatalf("error = %v, want %v", err, ErrMissingManifest)
	}

	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(`{"pack": {"pack_format": 15}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}

	m.SetFormat(48)
	m.SetSupported(Formats{45, 61})

	if err := m.Save(dir); err != nil {
		t.Fatal(err)
	}

	again, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx := NewContext(again, true)
	if ctx.Format != 48 || ctx.Supported == nil || *ctx.Supported != (Formats{45, 61}) || !ctx.KeepSource {
		t.Errorf("context = %+v", ctx)
	}

	if ctx.Function() != "function" || ctx.Source() != "source" {
		t.Errorf("folders = %q, %q", ctx.Function(), ctx.Source())
	}
}

func TestContext_Supports(t *testing.T) {
	ranged := Context{Format: 48, Supported: &Formats{45, 57}}
	single := Context{Format: 48}

	tests := []struct {
		name string
		ctx  Context
		f    Formats
		want bool
	}{
		{"inside", ranged, Formats{48, 48}, true},
		{"lower bound", ranged, Formats{45, 45}, true},
		{"above", ranged, Formats{61, 61}, false},
		{"overlapping", ranged, Formats{57, 9001}, true},
		{"enclosing", ranged, Formats{10, 100}, true},
		{"below", ranged, Formats{10, 44}, false},
		{"target only", single, Formats{48, 48}, true},
		{"not target", single, Formats{57, 57}, false},
		{"range over target", single, Formats{45, 61}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.Overlaps(tt.f); got != tt.want {
				t.Errorf("Overlaps(%v) = %v, want %v", tt.f, got, tt.want)
			}

			if tt.f.Single() {
				if got := tt.ctx.Supports(tt.f.Min); got != tt.want {
					t.Errorf("Supports(%d) = %v, want %v", tt.f.Min, got, tt.want)
				}
			}
		})
	}
}

func TestOverlay_Range(t *testing.T) {
	m, err := ReadManifest(strings.NewReader(`{"pack": {"pack_format": 48}, "overlays": {"entries": [` +
		`{"directory": "a", "formats": {"min_inclusive": 48, "max_inclusive": 57}}, ` +
		`{"directory": "b", "formats": [45, 61]}, ` +
		`{"directory": "c", "formats": 61}, ` +
		`{"directory": "d", "formats": "x"}]}}`))
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]Formats{"a": {48, 57}, "b": {45, 61}, "c": {61, 61}}

	for _, o := range m.Overlays() {
		f, ok := o.Range()
		if w, known := want[o.Directory]; ok != known || f != w {
			t.Errorf("%s Range() = %v, %v", o.Directory, f, ok)
		}
	}
}
