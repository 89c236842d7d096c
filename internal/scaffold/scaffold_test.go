package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/profilekit-labs/profilekit/internal/profile"
)

func TestNewData(t *testing.T) {
	d := NewData("backend")
	if d.Name != "backend" {
		t.Errorf("Name = %q, want %q", d.Name, "backend")
	}
	if d.Version != "0.1.0" {
		t.Errorf("Version = %q, want 0.1.0", d.Version)
	}
	if !strings.Contains(d.Description, "backend") {
		t.Errorf("Description = %q, want the profile name in it", d.Description)
	}
	if d.Year == 0 {
		t.Error("Year should not be zero")
	}
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "backend")

	result, err := Generate(NewData("backend"), outDir)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Warnings) > 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	for _, want := range []string{
		"settings.json",
		"profile.yaml",
		"agents/assistant.md",
		"commands/greet.md",
		"hooks/format.sh",
	} {
		found := false
		for _, f := range result.Files {
			if f == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Files missing %q: %v", want, result.Files)
		}
		if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(want))); err != nil {
			t.Errorf("%s not written: %v", want, err)
		}
	}

	// Template variables must be expanded in profile.yaml.
	meta, err := os.ReadFile(filepath.Join(outDir, "profile.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(meta), "backend") {
		t.Errorf("profile.yaml not templated: %s", meta)
	}

	// Command placeholders survive verbatim.
	cmd, err := os.ReadFile(filepath.Join(outDir, "commands", "greet.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(cmd), "{{name}}") {
		t.Errorf("command placeholder was mangled: %s", cmd)
	}

	// Hook scripts come out executable.
	info, err := os.Stat(filepath.Join(outDir, "hooks", "format.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0111 == 0 {
		t.Error("hook script is not executable")
	}

	// The skeleton is a loadable profile.
	p, err := profile.NewStore(root).Load("backend")
	if err != nil {
		t.Fatalf("generated profile does not load: %v", err)
	}
	if len(p.Agents) != 1 || len(p.Commands) != 1 || len(p.Hooks) != 1 {
		t.Errorf("skeleton contents = %d agents, %d commands, %d hooks",
			len(p.Agents), len(p.Commands), len(p.Hooks))
	}
}

func TestGenerateRefusesNonEmptyDir(t *testing.T) {
	outDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(outDir, "keep.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Generate(NewData("p"), outDir); err == nil {
		t.Fatal("expected error for non-empty output directory")
	}
	if _, err := os.Stat(filepath.Join(outDir, "keep.txt")); err != nil {
		t.Errorf("existing file disturbed: %v", err)
	}
}
