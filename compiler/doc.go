// Package compiler turns packscript sources into a data pack.
//
// A compilation reads the input pack, runs every script through the
// [github.com/ardnew/packscript/lang] engine and writes the generated
// functions and resources into a temporary tree that replaces the output
// only when the whole compilation succeeds.
//
// Each source line is classified first (see [Classify]):
//
//	/say hi                    command, emitted into the current function
//	/execute run function f:   command opening the function f for the
//	                           indented lines below it
//	/function g;               command switching the current function to g
//	create loot_table x -> {}  resource creation
//	anything else              engine statement
//
// Commands may interpolate expressions with ${{ expr }} or $name. Their
// values are computed each time the command executes, so a command in a loop
// renders once per iteration.
package compiler
