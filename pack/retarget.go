package pack

import "cmp"

// Range is the target pack format of a manifest and its supported bounds.
// Min and Max are zero when the manifest declares no supported formats.
type Range struct {
	Target, Min, Max int
}

// RangeOf returns the formats declared by m.
func RangeOf(m *Manifest) (Range, error) {
	t, err := m.formatErr()
	if err != nil {
		return Range{}, err
	}

	r := Range{Target: t}
	if f, ok := m.Supported(); ok {
		r.Min, r.Max = f.Min, f.Max
	}

	return r, nil
}

// Retarget updates the target and supported formats of m. Each argument is a
// release name or pack format; an empty argument keeps the declared value.
// The supported range always contains the target: min is lowered and max is
// raised to it when needed.
func (m *Manifest) Retarget(target, lo, hi string) (Range, error) {
	r, err := RangeOf(m)
	if err != nil {
		return Range{}, err
	}

	parse := func(s string, def int) (int, error) {
		if s == "" {
			return def, nil
		}

		return VersionOrFormat(s)
	}

	if r.Target, err = parse(target, r.Target); err != nil {
		return Range{}, err
	}

	if r.Min, err = parse(lo, r.Min); err != nil {
		return Range{}, err
	}

	if r.Max, err = parse(hi, r.Max); err != nil {
		return Range{}, err
	}

	r.Min = min(cmp.Or(r.Min, r.Target), r.Target)
	r.Max = max(cmp.Or(r.Max, r.Target), r.Target)

	m.SetFormat(r.Target)
	m.SetSupported(Formats{Min: r.Min, Max: r.Max})

	return r, nil
}
