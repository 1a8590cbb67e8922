// Package pack models the pack manifest (pack.mcmeta) and the pack format
// numbers that decide the directory layout of a compiled pack.
//
// A pack format is an integer issued with each Minecraft release. From
// format [ModernLayout] on, generated functions live under "function", and
// from format [ModernSource] on scripts live under "source"; older formats
// use the plural names. [Folder] applies that rule, and [VersionOrFormat]
// translates release names such as "1.21.4" into formats.
package pack
