// Package platform provides cross-platform filesystem operations for
// permission management. On Unix systems it uses chmod directly; on
// Windows, where Unix permission bits do not exist, the operations
// degrade to no-ops or existence checks.
package platform
