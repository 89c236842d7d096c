// Package merge combines loaded profiles into a single bundle. Profiles
// are processed in the given order; on identifier collisions the later
// profile wins and a Collision record is produced. Permission lists merge
// by union so composition can never shrink a deny surface.
package merge
