package cmd

import "github.com/ardnew/packscript/lang"

// Sentinel errors.
var (
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
)
