package pack

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestManifest_Retarget(t *testing.T) {
	const (
		plain  = `{"pack": {"pack_format": 48, "description": "x"}}`
		ranged = `{"pack": {"pack_format": 48, "supported_formats": [41, 57]}}`
	)

	tests := []struct {
		name           string
		doc            string
		target, lo, hi string
		want           Range
		wantErr        error
	}{
		{"target only", plain, "57", "", "", Range{57, 57, 57}, nil},
		{"release name", plain, "1.21.4", "", "", Range{61, 61, 61}, nil},
		{"keep declared", ranged, "", "", "61", Range{48, 41, 61}, nil},
		{"min above target", plain, "", "50", "", Range{48, 48, 48}, nil},
		{"max below target", ranged, "", "", "30", Range{48, 41, 48}, nil},
		{"lower target", ranged, "30", "", "", Range{30, 30, 57}, nil},
		{"unknown version", plain, "1.99", "", "", Range{}, ErrUnknownVersion},
		{"bad min", plain, "", "x", "", Range{}, ErrUnknownVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ReadManifest(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatal(err)
			}

			got, err := m.Retarget(tt.target, tt.lo, tt.hi)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Retarget() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Retarget() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("Retarget() = %+v, want %+v", got, tt.want)
			}

			if r, _ := RangeOf(m); r != tt.want {
				t.Errorf("RangeOf() after Retarget = %+v, want %+v", r, tt.want)
			}
		})
	}
}

func TestManifest_RetargetEncode(t *testing.T) {
	m, err := ReadManifest(strings.NewReader(`{"pack": {"pack_format": 48, "description": "x"}}`))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Retarget("", "41", ""); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		t.Fatal(err)
	}

	want := `{
    "pack": {
        "description": "x",
        "pack_format": 48,
        "supported_formats": {
            "max_inclusive": 48,
            "min_inclusive": 41
        }
    }
}`
	if buf.String() != want {
		t.Errorf("Encode() = %s, want %s", buf.String(), want)
	}
}

func TestLatest(t *testing.T) {
	v, f := Latest()
	if v != "1.21.6" || f != 80 {
		t.Errorf("Latest() = %q, %d", v, f)
	}
}
