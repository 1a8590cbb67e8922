// Package cmd implements the packscript subcommands.
package cmd

// LibEnv is the environment variable holding the default include search
// path.
const LibEnv = "PACKSCRIPT_LIB"

// ProjectConfig is the name of the project-local configuration file read from
// the working directory.
const ProjectConfig = "packscript.toml"

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// PathSepIdentifier is the kong variable identifier containing the
	// separator of directory lists.
	PathSepIdentifier = "pathSep"

	// LibEnvIdentifier is the kong variable identifier containing the name of
	// the environment variable read by --lib.
	LibEnvIdentifier = "libEnv"
)
