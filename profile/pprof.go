//go:build pprof

package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"

	_ "net/http/pprof" // register HTTP handlers
)

// Modes returns the supported profiling modes.
var Modes = sync.OnceValue(
	func() []string {
		return slices.Sorted(maps.Keys(mode))
	},
)

var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// option adds a setting to the options passed to [profile.Start].
type option func([]func(*profile.Profile)) []func(*profile.Profile)

func withMode(m string) option {
	return func(o []func(*profile.Profile)) []func(*profile.Profile) {
		if fn, ok := mode[m]; ok {
			o = append(o, fn)
		}

		return o
	}
}

func withPath(p string) option {
	return func(o []func(*profile.Profile)) []func(*profile.Profile) {
		if p != "" {
			o = append(o, profile.ProfilePath(p))
		}

		return o
	}
}

func withQuiet(v bool) option {
	return func(o []func(*profile.Profile)) []func(*profile.Profile) {
		if v {
			o = append(o, profile.Quiet)
		}

		return o
	}
}

func start(p Profiler) Session {
	o := withMode(p.Mode)(nil)
	if len(o) == 0 {
		return nop{}
	}

	for _, opt := range []option{withPath(p.Path), withQuiet(p.Quiet)} {
		o = opt(o)
	}

	return profile.Start(o...)
}
