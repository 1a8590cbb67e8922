package pack

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"fortio.org/safecast"

	"github.com/ardnew/packscript/lang"
)

// ManifestName is the file name of the pack manifest.
const ManifestName = "pack.mcmeta"

// Overlay is one entry of overlays.entries.
type Overlay struct {
	Directory string
	Formats   any
}

// Range returns the formats of o, given as a range object, a pair or a
// single format.
func (o Overlay) Range() (Formats, bool) { return formatsOf(o.Formats) }

// Manifest is a decoded pack.mcmeta. Unknown keys are preserved when the
// manifest is written back.
type Manifest struct {
	doc map[string]any
}

// LoadManifest reads the manifest in dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestName)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMissingManifest.With(slog.String("path", path))
		}

		return nil, ErrInvalidManifest.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	m, err := ReadManifest(f)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("path", path))
	}

	return m, nil
}

// ReadManifest decodes a manifest. The document must be an object with a
// "pack" object whose pack_format is an integer.
func ReadManifest(r io.Reader) (*Manifest, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, ErrInvalidManifest.Wrap(err)
	}

	m := &Manifest{doc: doc}

	if _, ok := doc["pack"].(map[string]any); !ok {
		return nil, ErrInvalidManifest.With(slog.String("reason", `missing "pack" object`))
	}

	if _, err := m.formatErr(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manifest) pack() map[string]any {
	p, _ := m.doc["pack"].(map[string]any)

	return p
}

func (m *Manifest) formatErr() (int, error) {
	n, ok := toInt(m.pack()["pack_format"])
	if !ok {
		return 0, ErrInvalidManifest.With(slog.String("reason", "pack_format is not an integer"))
	}

	return n, nil
}

// Format returns pack.pack_format.
func (m *Manifest) Format() int {
	n, _ := m.formatErr()

	return n
}

// SetFormat replaces pack.pack_format.
func (m *Manifest) SetFormat(f int) { m.pack()["pack_format"] = f }

// Supported returns pack.supported_formats, given either as
// {min_inclusive, max_inclusive} or as [min, max].
func (m *Manifest) Supported() (Formats, bool) {
	return formatsOf(m.pack()["supported_formats"])
}

// SetSupported replaces pack.supported_formats with an object range.
func (m *Manifest) SetSupported(f Formats) {
	m.pack()["supported_formats"] = map[string]any{"min_inclusive": f.Min, "max_inclusive": f.Max}
}

// Overlays returns overlays.entries in manifest order. Entries without a
// directory are skipped.
func (m *Manifest) Overlays() []Overlay {
	o, _ := m.doc["overlays"].(map[string]any)
	entries, _ := o["entries"].([]any)

	out := make([]Overlay, 0, len(entries))

	for _, e := range entries {
		entry, _ := e.(map[string]any)
		if dir, ok := entry["directory"].(string); ok {
			out = append(out, Overlay{Directory: dir, Formats: entry["formats"]})
		}
	}

	return out
}

// HasOverlay reports whether dir is registered in overlays.entries.
func (m *Manifest) HasOverlay(dir string) bool {
	for _, o := range m.Overlays() {
		if o.Directory == dir {
			return true
		}
	}

	return false
}

// PrependOverlay inserts an entry at the front of overlays.entries, creating
// the list if needed.
func (m *Manifest) PrependOverlay(dir string, f Formats) {
	o, ok := m.doc["overlays"].(map[string]any)
	if !ok {
		o = map[string]any{}
		m.doc["overlays"] = o
	}

	entries, _ := o["entries"].([]any)
	o["entries"] = append([]any{map[string]any{"formats": f.Value(), "directory": dir}}, entries...)
}

// Encode writes the manifest as JSON indented by four spaces.
func (m *Manifest) Encode(w io.Writer) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	if err := enc.Encode(m.doc); err != nil {
		return ErrInvalidManifest.Wrap(err)
	}

	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))

	return err
}

// Save writes the manifest into dir.
func (m *Manifest) Save(dir string) error {
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, ManifestName), buf.Bytes(), 0o644)
}

func formatsOf(v any) (Formats, bool) {
	switch x := v.(type) {
	case map[string]any:
		lo, ok1 := toInt(x["min_inclusive"])
		hi, ok2 := toInt(x["max_inclusive"])

		return Formats{Min: lo, Max: hi}, ok1 && ok2

	case []any:
		if len(x) != 2 {
			return Formats{}, false
		}

		lo, ok1 := toInt(x[0])
		hi, ok2 := toInt(x[1])

		return Formats{Min: lo, Max: hi}, ok1 && ok2
	}

	if n, ok := toInt(v); ok {
		return Formats{Min: n, Max: n}, true
	}

	return Formats{}, false
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false
		}

		i, err := safecast.Conv[int](n)

		return i, err == nil
	}

	return 0, false
}
