// Package permission parses and evaluates the permission rule patterns
// declared in a profile's settings document. A rule is either a bare tool
// name ("Read"), a tool with an argument glob ("Bash(rm:*)"), or the
// wildcard "*". Deny rules always take precedence over allow rules.
package permission
