// Package profile loads named configuration profiles from the profiles
// root. A profile is a directory containing a settings.json document, an
// agents/ directory of instruction payloads, a commands/ directory of
// command templates, and a hooks/ directory of scripts referenced by the
// settings document. Loading is a pure read: the same directory contents
// always produce the same Profile value.
package profile
