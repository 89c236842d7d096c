//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	ProfilesRoot string // directory scanned for profiles
	ProjectDir   string // a mock project directory holding the install target
}

// setupTestEnv creates isolated temp directories so every run is sandboxed.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		ProfilesRoot: t.TempDir(),
		ProjectDir:   t.TempDir(),
	}
}

// setupProfiles writes two realistic profiles under the profiles root:
// "base" with two agents, a command, a hook, and permissions, and
// "golang" which overrides one of base's agents and adds its own hook.
func setupProfiles(t *testing.T, root string) {
	t.Helper()

	writeFile(t, filepath.Join(root, "base", "settings.json"), `{
  "permissions": {
    "allow": ["Read", "Edit(*.md)"],
    "deny": ["Bash(rm:*)"]
  },
  "env": {
    "API_KEY": {"placeholder": "your-key-here", "required": true}
  },
  "hooks": {
    "before-write": [
      {"matcher": "*", "command": "hooks/check.sh"}
    ]
  }
}`)
	writeFile(t, filepath.Join(root, "base", "profile.yaml"),
		"description: Base profile\nversion: 1.0.0\n")
	writeFile(t, filepath.Join(root, "base", "agents", "reviewer.md"),
		"---\nname: reviewer\nspecialization: review\n---\nReview changes. Key is $API_KEY.\n")
	writeFile(t, filepath.Join(root, "base", "agents", "writer.md"),
		"---\nname: writer\n---\nWrite docs.\n")
	writeFile(t, filepath.Join(root, "base", "commands", "deploy.md"),
		"---\nargs: [env]\n---\nDeploy to {{env}}.\n")
	writeScript(t, filepath.Join(root, "base", "hooks", "check.sh"),
		"#!/bin/sh\nexit 0\n")

	writeFile(t, filepath.Join(root, "golang", "settings.json"), `{
  "permissions": {
    "allow": ["Read", "Bash(go:*)"]
  },
  "hooks": {
    "before-write": [
      {"matcher": "*.go", "command": "hooks/gofmt.sh"}
    ]
  }
}`)
	writeFile(t, filepath.Join(root, "golang", "profile.yaml"),
		"description: Go profile\nversion: 2.0.0\n")
	writeFile(t, filepath.Join(root, "golang", "agents", "reviewer.md"),
		"---\nname: reviewer\nspecialization: go-review\n---\nReview Go changes. Key is $API_KEY.\n")
	writeScript(t, filepath.Join(root, "golang", "hooks", "gofmt.sh"),
		"#!/bin/sh\ngofmt -w \"$1\"\n")
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// writeScript is writeFile with the execute bit set.
func writeScript(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
