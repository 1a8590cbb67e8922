package repl

import "github.com/ardnew/packscript/lang"

// Sentinel errors.
var (
	ErrOutOfBounds     = lang.NewError("index out of range")
	ErrEditDeclined    = lang.NewError("decline edit")
	ErrUnknownFunction = lang.NewError("unknown function")
)
