// Package install materializes a merged bundle into a target directory
// with all-or-nothing apply semantics. The bundle is first written to a
// staging directory, then committed file-by-file with backups of every
// file it replaces; any failure during commit rolls the target back to
// its exact pre-install state. A manifest of managed files is written
// alongside the bundle so later runs know what they may overwrite or
// remove, and so uninstall can remove exactly what was installed.
package install
