// Package lang is the scripting engine that executes the non-command lines of
// a packscript source file.
//
// Source text reaches the engine as a sequence of [Line] records. Each record
// is either passthrough text, parsed here into a statement, or a statement
// the compiler built already ([NewEmit], [NewFunction], [NewCreate]). [Parse]
// arranges the records into a tree of blocks by indentation, the same way a
// block opener ending in ':' owns the deeper-indented lines that follow it.
//
// # Statements
//
//	# comment
//	pass
//	name = expr            (also +=, -=, *=, /=)
//	name[key] = expr
//	if expr: / elif expr: / else:
//	for x in expr: / for k, v in expr:
//	while expr:
//	break / continue
//	capture name:
//	include expr
//	expr
//
// Every expression is an expr-lang program compiled once when the statement
// is parsed and run each time the statement executes, against the variables
// of the running [Machine]. Command templates ([Template]) follow the same
// rule, so a command inside a loop renders fresh values on every iteration.
//
// # Host
//
// The engine never writes output itself. Emitted lines, function scopes,
// captures, resources and includes are delegated to a [Host], which the
// compiler implements once per compilation pass.
package lang
