package pack

import "github.com/ardnew/packscript/lang"

// Predefined errors (sentinel values).
var (
	ErrMissingManifest     = lang.NewError("no pack.mcmeta found")
	ErrInvalidManifest     = lang.NewError("invalid pack.mcmeta file")
	ErrUnknownVersion      = lang.NewError("not a recognized version or pack format")
	ErrUnregisteredOverlay = lang.NewError("unregistered overlay")
)
