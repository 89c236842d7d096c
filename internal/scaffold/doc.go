// Package scaffold generates new profile skeletons from embedded
// templates. It powers the "profilekit init" command, producing the
// expected directory structure (settings.json, profile.yaml, example
// agent, command, and hook) so a new profile loads cleanly from the
// start.
package scaffold
