package pack

// Context carries what a compilation pass needs to know about the pack.
type Context struct {
	// Format is the target pack format.
	Format int
	// Supported is the declared supported range, if any.
	Supported *Formats
	// Overlays lists the overlay directories compiled after the base pack.
	Overlays []Overlay
	// KeepSource retains script directories in the output.
	KeepSource bool
}

// NewContext returns the build context described by m. Overlays registered
// in m later are not seen by the context.
func NewContext(m *Manifest, keepSource bool) Context {
	c := Context{Format: m.Format(), Overlays: m.Overlays(), KeepSource: keepSource}

	if f, ok := m.Supported(); ok {
		c.Supported = &f
	}

	return c
}

// Supports reports whether the declared supported range, or the target
// format when none is declared, includes f.
func (c Context) Supports(f int) bool { return c.Overlaps(Formats{Min: f, Max: f}) }

// Overlaps reports whether any format of f is supported.
func (c Context) Overlaps(f Formats) bool {
	lo, hi := c.Format, c.Format
	if c.Supported != nil {
		lo, hi = c.Supported.Min, c.Supported.Max
	}

	return f.Min <= hi && lo <= f.Max
}

// Function returns the directory name of generated functions.
func (c Context) Function() string { return Folder("function", c.Format) }

// Source returns the directory name of script sources.
func (c Context) Source() string { return Folder("source", c.Format) }
