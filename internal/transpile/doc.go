/*
Package transpile rewrites global-mode sketch code into instance-mode code.

# Overview

Creative-coding sketches are written in "global mode": lifecycle hooks
(setup, draw) are bare function declarations and library calls
(createCanvas, background) are bare identifiers. Running several sketches
inside one shared execution context requires "instance mode", where every
library reference is qualified through a single instance handle.

The transpiler performs two passes over a parsed syntax tree:

 1. Renaming: top-level user declarations get a one-character prefix so
    they cannot collide with the library's global namespace. Object
    literal shorthand is expanded first so property keys stay intact.
 2. Global rewrite: recognized library calls and constants become
    property accesses on the instance handle, and top-level lifecycle
    declarations are hoisted into assignments on that handle.

Output is produced by position-anchored edits against the original text,
which preserves the user's line structure for later error mapping.

# Usage

	tr := transpile.New(transpile.DefaultSymbols(), logger)
	out, err := tr.Transpile(source)
	var serr *transpile.SyntaxError
	if errors.As(err, &serr) {
		// surface serr.Line / serr.Detail to the user
	}
*/
package transpile
