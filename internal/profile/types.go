package profile

import (
	"github.com/profilekit-labs/profilekit/internal/permission"
)

// Hook trigger constants. The settings schema rejects any trigger outside
// this set.
const (
	TriggerBeforeWrite  = "before-write"
	TriggerAfterWrite   = "after-write"
	TriggerBeforeEdit   = "before-edit"
	TriggerAfterEdit    = "after-edit"
	TriggerBeforeExec   = "before-exec"
	TriggerAfterExec    = "after-exec"
	TriggerSessionStart = "session-start"
	TriggerSessionEnd   = "session-end"
)

// ValidTriggers contains all valid hook trigger values, in canonical order.
var ValidTriggers = []string{
	TriggerBeforeWrite,
	TriggerAfterWrite,
	TriggerBeforeEdit,
	TriggerAfterEdit,
	TriggerBeforeExec,
	TriggerAfterExec,
	TriggerSessionStart,
	TriggerSessionEnd,
}

// Profile is a fully loaded configuration profile. It is immutable once
// loaded; merging produces new values instead of mutating these.
type Profile struct {
	// Name is the profile directory name, unique within the profiles root.
	Name string
	// Dir is the path of the profile directory.
	Dir string
	// Meta holds optional profile.yaml metadata (zero value when absent).
	Meta Meta
	// Settings is the parsed settings.json document.
	Settings *Settings
	// Rules is the permission rule set parsed from Settings.Permissions.
	Rules permission.RuleSet
	// Agents, Commands, and Hooks preserve declaration order.
	Agents   []Agent
	Commands []Command
	Hooks    []Hook
}

// Meta is the optional profile.yaml metadata document.
type Meta struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Version     string `yaml:"version,omitempty"`
	// MinTool is a semver constraint the running tool version must satisfy
	// (e.g. ">=0.3.0").
	MinTool string `yaml:"min_tool,omitempty"`
}

// Agent is an opaque named instruction payload. The payload text is never
// interpreted by this tool.
type Agent struct {
	// Name is unique within a profile.
	Name string
	// Specialization is the optional declared specialization tag.
	Specialization string
	// Description is optional frontmatter metadata.
	Description string
	// Payload is the instruction text with frontmatter stripped.
	Payload string
	// FileName is the payload file name inside agents/.
	FileName string
}

// Command is a named invocation template.
type Command struct {
	// Name is unique within a profile.
	Name string
	// Args lists the declared placeholder names the template may reference.
	Args []string
	// Description is optional frontmatter metadata.
	Description string
	// Payload is the template text with frontmatter stripped.
	Payload string
	// FileName is the payload file name inside commands/.
	FileName string
}

// Hook binds a trigger event to a matcher pattern and a script.
type Hook struct {
	// Trigger is one of ValidTriggers.
	Trigger string
	// Matcher is a glob or type filter applied by the consuming assistant.
	Matcher string
	// Command is the script path relative to the profile directory.
	Command string
	// Priority orders hooks within a trigger; lower runs first. Hooks
	// without an explicit priority keep declaration order.
	Priority int
	// Position is the declaration index within the trigger's list.
	Position int
	// SourceDir is the profile directory the script path resolves against.
	SourceDir string
}

// Key returns the identity used for collision detection during merge:
// two hooks collide when they share a trigger and matcher.
func (h Hook) Key() string {
	return h.Trigger + "/" + h.Matcher
}
