package profile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/profilekit-labs/profilekit/internal/permission"
)

//go:embed schema/settings.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// Settings is the parsed settings.json document of a profile.
type Settings struct {
	Permissions Permissions           `json:"permissions"`
	Env         map[string]EnvDecl    `json:"env"`
	Hooks       map[string][]HookDecl `json:"hooks"`
}

// Permissions holds the ordered allow and deny pattern lists.
type Permissions struct {
	Allow []string `json:"allow"`
	Deny  []string `json:"deny"`
}

// EnvDecl declares an environment variable the consuming project must
// provide. Only the declaration shape is handled here; real values are
// never read.
type EnvDecl struct {
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
}

// HookDecl is one trigger entry in the settings hooks mapping.
type HookDecl struct {
	Matcher  string `json:"matcher"`
	Command  string `json:"command"`
	Priority int    `json:"priority"`
}

// SchemaIssue is a single settings schema violation.
type SchemaIssue struct {
	Path    string // instance location, e.g. "/permissions/allow/0"
	Message string // human-readable error message
	Keyword string // schema keyword that failed
}

// MalformedSettingsError reports a settings document that violates the
// schema or contains an unparseable permission pattern. It carries the
// offending key paths for diagnosis.
type MalformedSettingsError struct {
	File   string
	Issues []SchemaIssue
}

func (e *MalformedSettingsError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("malformed settings in %s", e.File)
	}
	first := e.Issues[0]
	msg := fmt.Sprintf("malformed settings in %s: %s", e.File, first.Message)
	if first.Path != "" {
		msg = fmt.Sprintf("malformed settings in %s: %s at %s", e.File, first.Message, first.Path)
	}
	if len(e.Issues) > 1 {
		msg += fmt.Sprintf(" (and %d more issues)", len(e.Issues)-1)
	}
	return msg
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("settings.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("settings.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// ParseSettings validates raw settings.json bytes against the embedded
// schema and returns the typed document. Schema violations and malformed
// permission patterns produce a *MalformedSettingsError; the error return
// is also used for schema compilation failures.
func ParseSettings(data []byte, file string) (*Settings, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedSettingsError{
			File:   file,
			Issues: []SchemaIssue{{Message: fmt.Sprintf("invalid JSON: %v", err)}},
		}
	}

	if err := schema.Validate(inst); err != nil {
		validationErr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, fmt.Errorf("unexpected validation error type: %w", err)
		}
		return nil, &MalformedSettingsError{
			File:   file,
			Issues: extractIssues(validationErr),
		}
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding settings %s: %w", file, err)
	}

	if issue := checkPatterns(&s); issue != nil {
		return nil, &MalformedSettingsError{File: file, Issues: []SchemaIssue{*issue}}
	}

	return &s, nil
}

// checkPatterns parses every permission pattern and returns the first
// malformed one as a SchemaIssue with its list position.
func checkPatterns(s *Settings) *SchemaIssue {
	for i, p := range s.Permissions.Allow {
		if _, err := permission.Parse(p); err != nil {
			return &SchemaIssue{
				Path:    fmt.Sprintf("/permissions/allow/%d", i),
				Message: err.Error(),
				Keyword: "pattern",
			}
		}
	}
	for i, p := range s.Permissions.Deny {
		if _, err := permission.Parse(p); err != nil {
			return &SchemaIssue{
				Path:    fmt.Sprintf("/permissions/deny/%d", i),
				Message: err.Error(),
				Keyword: "pattern",
			}
		}
	}
	return nil
}

// extractIssues walks the ValidationError tree and returns leaf-level
// issues with specific property information, deduplicated.
func extractIssues(ve *jsonschema.ValidationError) []SchemaIssue {
	var issues []SchemaIssue
	collectSchemaIssues(ve, &issues)

	if len(issues) == 0 {
		return []SchemaIssue{{Message: ve.Error()}}
	}
	return deduplicateIssues(issues)
}

// collectSchemaIssues recursively walks the error tree to find leaf errors.
func collectSchemaIssues(ve *jsonschema.ValidationError, issues *[]SchemaIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword := ""
		if ve.ErrorKind != nil {
			kwPath := ve.ErrorKind.KeywordPath()
			if len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
		}

		msg := ""
		if ve.ErrorKind != nil {
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Skip generic container errors that aren't informative.
		if keyword == "oneOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, SchemaIssue{
			Path:    path,
			Message: msg,
			Keyword: keyword,
		})
		return
	}

	for _, cause := range ve.Causes {
		collectSchemaIssues(cause, issues)
	}
}

// deduplicateIssues removes duplicate issues (same path + keyword + message).
func deduplicateIssues(issues []SchemaIssue) []SchemaIssue {
	seen := make(map[string]bool)
	var result []SchemaIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}
