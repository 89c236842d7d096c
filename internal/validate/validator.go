// Package validate checks a merged bundle for structural consistency
// before install. Fatal issues block installation; warnings are surfaced
// but do not block.
package validate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/profilekit-labs/profilekit/internal/merge"
	"github.com/profilekit-labs/profilekit/internal/permission"
	"github.com/profilekit-labs/profilekit/internal/platform"
)

// Severity classifies an Issue.
type Severity string

const (
	// SeverityError blocks installation.
	SeverityError Severity = "error"
	// SeverityWarning is surfaced but does not block.
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Severity Severity
	Category string // "hook", "command", "permission", "env"
	Subject  string // the entity the issue is about
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s %q: %s", i.Severity, i.Category, i.Subject, i.Message)
}

// Result groups the findings of one validation pass.
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

// OK reports whether the bundle may be installed.
func (r *Result) OK() bool { return len(r.Errors) == 0 }

// placeholderRe matches {{name}} references inside command templates.
var placeholderRe = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_-]*)\}\}`)

// Validate runs every check against the bundle and returns the collected
// findings. It never fails outright; callers inspect the Result.
func Validate(b *merge.Bundle) *Result {
	r := &Result{}
	checkHooks(b, r)
	checkCommands(b, r)
	checkPermissions(b, r)
	checkEnv(b, r)
	return r
}

// checkHooks verifies every hook script exists and is executable, and
// warns about ambiguous ordering: identical trigger+matcher pairs with
// different priorities.
func checkHooks(b *merge.Bundle, r *Result) {
	priorities := make(map[string]int)

	for _, h := range b.Hooks {
		if !safeScriptPath(h.Command) {
			r.Errors = append(r.Errors, Issue{
				Severity: SeverityError,
				Category: "hook",
				Subject:  h.Key(),
				Message:  fmt.Sprintf("script path %s must be a relative path inside the profile", h.Command),
			})
			continue
		}

		script := h.Command
		if h.SourceDir != "" {
			script = filepath.Join(h.SourceDir, h.Command)
		}

		if !platform.IsExecutable(script) {
			r.Errors = append(r.Errors, Issue{
				Severity: SeverityError,
				Category: "hook",
				Subject:  h.Key(),
				Message:  fmt.Sprintf("script %s is missing or not executable", h.Command),
			})
		}

		if prior, ok := priorities[h.Key()]; ok && prior != h.Priority {
			r.Warnings = append(r.Warnings, Issue{
				Severity: SeverityWarning,
				Category: "hook",
				Subject:  h.Key(),
				Message: fmt.Sprintf("registered twice with different priorities (%d and %d); ordering is ambiguous",
					prior, h.Priority),
			})
		}
		priorities[h.Key()] = h.Priority
	}
}

// safeScriptPath reports whether a hook command is a clean relative path,
// so both the profile-side script lookup and the install-side copy stay
// inside their directories.
func safeScriptPath(cmd string) bool {
	p := filepath.ToSlash(cmd)
	if p == "" || strings.HasPrefix(p, "/") || filepath.VolumeName(cmd) != "" {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// checkCommands verifies every template placeholder names a declared arg.
func checkCommands(b *merge.Bundle, r *Result) {
	for _, c := range b.Commands {
		declared := make(map[string]bool, len(c.Args))
		for _, a := range c.Args {
			declared[a] = true
		}

		for _, m := range placeholderRe.FindAllStringSubmatch(c.Payload, -1) {
			name := m[1]
			if !declared[name] {
				r.Errors = append(r.Errors, Issue{
					Severity: SeverityError,
					Category: "command",
					Subject:  c.Name,
					Message:  fmt.Sprintf("template references undeclared placeholder {{%s}}", name),
				})
			}
		}
	}
}

// checkPermissions re-parses every pattern in the merged lists. Load-time
// validation already covers store-loaded profiles; this catches bundles
// assembled by other callers.
func checkPermissions(b *merge.Bundle, r *Result) {
	for _, p := range b.Settings.Permissions.Allow {
		if _, err := permission.Parse(p); err != nil {
			r.Errors = append(r.Errors, Issue{
				Severity: SeverityError,
				Category: "permission",
				Subject:  p,
				Message:  err.Error(),
			})
		}
	}
	for _, p := range b.Settings.Permissions.Deny {
		if _, err := permission.Parse(p); err != nil {
			r.Errors = append(r.Errors, Issue{
				Severity: SeverityError,
				Category: "permission",
				Subject:  p,
				Message:  err.Error(),
			})
		}
	}
}

// checkEnv flags empty placeholders as fatal and declarations nothing in
// the bundle references as warnings.
func checkEnv(b *merge.Bundle, r *Result) {
	keys := make([]string, 0, len(b.Settings.Env))
	for key := range b.Settings.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		decl := b.Settings.Env[key]
		if strings.TrimSpace(decl.Placeholder) == "" {
			r.Errors = append(r.Errors, Issue{
				Severity: SeverityError,
				Category: "env",
				Subject:  key,
				Message:  "placeholder value is empty",
			})
			continue
		}

		if !envReferenced(b, key) {
			r.Warnings = append(r.Warnings, Issue{
				Severity: SeverityWarning,
				Category: "env",
				Subject:  key,
				Message:  "declared but not referenced by any agent or command",
			})
		}
	}
}

// envReferenced reports whether any payload mentions the variable as $KEY
// or ${KEY}.
func envReferenced(b *merge.Bundle, key string) bool {
	needles := []string{"$" + key, "${" + key + "}"}
	for _, a := range b.Agents {
		for _, n := range needles {
			if strings.Contains(a.Payload, n) {
				return true
			}
		}
	}
	for _, c := range b.Commands {
		for _, n := range needles {
			if strings.Contains(c.Payload, n) {
				return true
			}
		}
	}
	return false
}
