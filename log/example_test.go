package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/packscript/log"
)

func Example_textFormat() {
	logger := log.Make(os.Stdout, log.WithFormat(log.FormatText), log.WithTimeLayout("none"))
	logger.Info("wrote function", slog.String("path", "data/demo/function/main.mcfunction"))
	// Output: level=INFO msg="wrote function" path=data/demo/function/main.mcfunction
}

func Example_levels() {
	logger := log.Make(os.Stdout, log.WithLevel(log.LevelWarn), log.WithTimeLayout("none"))

	logger.Info("skipped")
	logger.Warn("overlay missing", slog.String("directory", "ov_48"))
	// Output: {"level":"WARN","msg":"overlay missing","directory":"ov_48"}
}
