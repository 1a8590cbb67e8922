// Package cli contains the command line interface for packscript.
//
// # Usage
//
//	packscript compile -i mypack -o build/mypack.zip
//	packscript pack-format -i mypack --target 1.21.4 --min 48
//	packscript repl --namespace demo
//
// compile is the default command, so the first line may omit it.
//
// # Configuration
//
// Flag values are read, in order of precedence, from the command line,
// packscript.toml in the working directory, and config.yaml or config.json
// in the user configuration directory. A table named after a command holds
// that command's flags:
//
//	log-level = "debug"
//
//	[compile]
//	output = "build/pack.zip"
//	lib = ["../shared"]
//
// The config command writes the global flags given on its command line to
// one of these files.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o packscript .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
