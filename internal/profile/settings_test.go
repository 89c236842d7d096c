package profile

import (
	"errors"
	"strings"
	"testing"
)

func TestParseSettingsValid(t *testing.T) {
	data := []byte(`{
		"permissions": {
			"allow": ["Read", "Bash(git:*)"],
			"deny": ["Bash(rm:*)"]
		},
		"env": {
			"API_KEY": {"placeholder": "your-api-key", "required": true},
			"REGION": {"placeholder": "us-east-1"}
		},
		"hooks": {
			"before-write": [
				{"matcher": "*.go", "command": "hooks/fmt.sh"},
				{"matcher": "*.md", "command": "hooks/lint-docs.sh", "priority": 5}
			]
		}
	}`)

	s, err := ParseSettings(data, "test/settings.json")
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}

	if len(s.Permissions.Allow) != 2 || len(s.Permissions.Deny) != 1 {
		t.Errorf("permissions = %+v, want 2 allow / 1 deny", s.Permissions)
	}
	if !s.Env["API_KEY"].Required {
		t.Error("API_KEY should be required")
	}
	if s.Env["REGION"].Required {
		t.Error("REGION should not be required")
	}
	if len(s.Hooks["before-write"]) != 2 {
		t.Fatalf("hooks = %+v, want 2 before-write entries", s.Hooks)
	}
	if s.Hooks["before-write"][1].Priority != 5 {
		t.Errorf("priority = %d, want 5", s.Hooks["before-write"][1].Priority)
	}
}

func TestParseSettingsEmptyDocument(t *testing.T) {
	s, err := ParseSettings([]byte(`{}`), "test/settings.json")
	if err != nil {
		t.Fatalf("ParseSettings on empty object: %v", err)
	}
	if len(s.Permissions.Allow) != 0 || len(s.Env) != 0 || len(s.Hooks) != 0 {
		t.Errorf("expected zero-value settings, got %+v", s)
	}
}

func TestParseSettingsRejects(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantPath string
	}{
		{
			name:     "unknown top-level key",
			data:     `{"permisions": {}}`,
			wantPath: "",
		},
		{
			name:     "wrong value type",
			data:     `{"permissions": {"allow": "Read"}}`,
			wantPath: "/permissions/allow",
		},
		{
			name:     "unknown hook trigger",
			data:     `{"hooks": {"on-save": []}}`,
			wantPath: "/hooks",
		},
		{
			name:     "hook entry missing command",
			data:     `{"hooks": {"before-write": [{"matcher": "*.go"}]}}`,
			wantPath: "/hooks/before-write/0",
		},
		{
			name:     "env missing placeholder",
			data:     `{"env": {"KEY": {"required": true}}}`,
			wantPath: "/env/KEY",
		},
		{
			name:     "malformed allow pattern",
			data:     `{"permissions": {"allow": ["Bash(rm:*"]}}`,
			wantPath: "/permissions/allow/0",
		},
		{
			name:     "malformed deny pattern",
			data:     `{"permissions": {"deny": [""]}}`,
			wantPath: "/permissions/deny/0",
		},
		{
			name:     "invalid JSON",
			data:     `{"permissions":`,
			wantPath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings([]byte(tt.data), "test/settings.json")
			if err == nil {
				t.Fatal("expected error")
			}

			var malformed *MalformedSettingsError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected *MalformedSettingsError, got %T: %v", err, err)
			}
			if tt.wantPath == "" {
				return
			}
			found := false
			for _, issue := range malformed.Issues {
				if strings.HasPrefix(issue.Path, tt.wantPath) {
					found = true
				}
			}
			if !found {
				t.Errorf("no issue at path %q in %+v", tt.wantPath, malformed.Issues)
			}
		})
	}
}
