package install

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/profilekit-labs/profilekit/internal/merge"
	"github.com/profilekit-labs/profilekit/internal/profile"
)

// fileEntry is one file of the rendered bundle layout.
type fileEntry struct {
	data []byte
	mode os.FileMode
}

// renderBundle flattens a bundle into the target file layout: settings.json
// at the root, one file per agent and command named after its identifier,
// and the hook scripts copied under their declared relative paths.
func renderBundle(b *merge.Bundle) (map[string]fileEntry, error) {
	files := make(map[string]fileEntry)

	settings, err := json.MarshalIndent(b.Settings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding merged settings: %w", err)
	}
	files["settings.json"] = fileEntry{data: append(settings, '\n'), mode: 0644}

	// Relative paths use forward slashes; the commit step converts them
	// to native separators.
	for _, a := range b.Agents {
		rel := "agents/" + a.Name + ".md"
		if !safeRel(rel) {
			return nil, fmt.Errorf("agent name %q would write outside the target directory", a.Name)
		}
		files[rel] = fileEntry{data: []byte(renderAgent(a)), mode: 0644}
	}

	for _, c := range b.Commands {
		rel := "commands/" + c.Name + ".md"
		if !safeRel(rel) {
			return nil, fmt.Errorf("command name %q would write outside the target directory", c.Name)
		}
		files[rel] = fileEntry{data: []byte(renderCommand(c)), mode: 0644}
	}

	for _, h := range b.Hooks {
		rel := filepath.ToSlash(h.Command)
		if !safeRel(rel) {
			return nil, fmt.Errorf("hook script path %q would write outside the target directory", h.Command)
		}
		src := h.Command
		if h.SourceDir != "" {
			src = filepath.Join(h.SourceDir, h.Command)
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("reading hook script %s: %w", h.Command, err)
		}
		// Later hooks overwrite earlier ones on the same path, matching
		// merge precedence.
		files[rel] = fileEntry{data: data, mode: 0755}
	}

	return files, nil
}

// safeRel reports whether rel is a clean relative path that stays inside
// the target directory: no absolute paths, no volume names, and no "." or
// ".." components. Every manifest-managed path must satisfy this.
func safeRel(rel string) bool {
	if rel == "" || strings.HasPrefix(rel, "/") || filepath.VolumeName(rel) != "" {
		return false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// renderAgent reconstructs an agent payload file with its metadata as
// frontmatter. Field order is fixed so rendering is deterministic.
func renderAgent(a profile.Agent) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("name: " + a.Name + "\n")
	if a.Description != "" {
		b.WriteString("description: " + a.Description + "\n")
	}
	if a.Specialization != "" {
		b.WriteString("specialization: " + a.Specialization + "\n")
	}
	b.WriteString("---\n")
	b.WriteString(a.Payload)
	return b.String()
}

// renderCommand reconstructs a command payload file with its metadata as
// frontmatter.
func renderCommand(c profile.Command) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("name: " + c.Name + "\n")
	if c.Description != "" {
		b.WriteString("description: " + c.Description + "\n")
	}
	if len(c.Args) > 0 {
		b.WriteString("args: [" + strings.Join(c.Args, ", ") + "]\n")
	}
	b.WriteString("---\n")
	b.WriteString(c.Payload)
	return b.String()
}
