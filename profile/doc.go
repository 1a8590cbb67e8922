// Package profile runs optional pprof sessions around a packscript command.
//
// Profiling support is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a session
// whose Stop does nothing.
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread and trace. Each session writes its profile into [Profiler.Path]:
//
//	s := profile.Profiler{Mode: "cpu", Path: "/tmp/packscript"}.Start()
//	defer s.Stop()
//
// The resulting file is read with go tool pprof.
package profile
