// Package log is the structured logger used by every packscript component.
//
// It wraps [log/slog] with functional options applied at creation time and a
// process-wide default logger that the CLI reconfigures while parsing flags:
//
//	log.Config(log.WithLevel(log.LevelDebug), log.WithFormat(log.FormatText))
//	log.Info("compiled", slog.String("file", "main.dps"))
//
// Attributes are passed as [slog.Attr] values only. Errors implementing
// [slog.LogValuer] (such as compiler errors) expand into a group carrying
// their file and line context.
//
// Levels are [LevelTrace], [LevelDebug], [LevelInfo], [LevelWarn] and
// [LevelError]. Output formats are [FormatJSON] (default) and [FormatText];
// both have a colorized variant enabled by [WithPretty].
package log
