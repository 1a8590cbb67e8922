package compiler

import "github.com/ardnew/packscript/lang"

// Predefined errors (sentinel values).
var (
	ErrSyntax             = lang.NewError("command ends with ':' or ';' but contains no function")
	ErrDefinitionSyntax   = lang.NewError("invalid function definition")
	ErrDuplicateName      = lang.NewError("duplicate function name")
	ErrLegacyLayout       = lang.NewError(`legacy "sources" folder detected, rename it to "source"`)
	ErrContentType        = lang.NewError("resource content must be an object, list, string or bytes")
	ErrSerialize          = lang.NewError("cannot serialize resource")
	ErrResourceNotFound   = lang.NewError("resource not found")
	ErrSameOutput         = lang.NewError("input and output directories must not be the same")
	ErrOutputName         = lang.NewError("output must name a file or directory")
	ErrMissingModMetadata = lang.NewError(`jar output needs "fabric.mod.json", "mods.toml" or "neoforge.mods.toml"`)
	ErrIncludeNotFound    = lang.NewError("include not found")
	ErrRead               = lang.NewError("cannot read input")
	ErrWrite              = lang.NewError("cannot write output")
)
