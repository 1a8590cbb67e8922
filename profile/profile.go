package profile

// Tag is the build tag that enables profiling.
const Tag = `pprof`

// Session is a running profile.
type Session interface{ Stop() }

// Profiler describes a profiling session.
type Profiler struct {
	// Mode is one of [Modes]. An empty Mode disables profiling.
	Mode string
	// Path is the directory receiving the profile.
	Path string
	// Quiet suppresses the profiler's own log output.
	Quiet bool
}

// Start begins profiling and returns the running session. Start and Stop are
// always safe to call.
func (p Profiler) Start() Session {
	if p.Mode == "" {
		return nop{}
	}

	return start(p)
}

type nop struct{}

func (nop) Stop() {}
