//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// version is the raw content of the VERSION file embedded at build time.
//
//go:embed VERSION
var version string

// Version is the semantic version of the packscript module. It appears in the
// header of every generated function file and in the version subcommand.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text, generated file headers,
	// and default config paths.
	Name = "packscript"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Datapack script compiler"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}

// Header returns the comment line written at the top of every generated
// function file.
func Header() string {
	return "# Generated by " + Name + " " + Version + " by " + Author[0].Name
}
