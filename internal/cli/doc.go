// Package cli wires the cobra command tree. Every command runs the same
// pipeline: ProfileStore load, merge, validate, install — stopping at
// whichever stage the command needs. Collision and validation reports go
// to stderr; the install manifest goes to stdout.
package cli
