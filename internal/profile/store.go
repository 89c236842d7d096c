package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.yaml.in/yaml/v3"

	"github.com/profilekit-labs/profilekit/internal/permission"
)

// ErrNotFound is returned by Load for an unknown profile name.
var ErrNotFound = errors.New("profile not found")

// DuplicateIdentifierError reports two entries sharing an identity within
// one profile. This is never auto-resolved; the source data must be fixed.
type DuplicateIdentifierError struct {
	Category string // "agent", "command", or "hook"
	Name     string
	Profile  string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("profile %s: duplicate %s identifier %q", e.Profile, e.Category, e.Name)
}

// File and directory names of the profile layout contract.
const (
	settingsFile = "settings.json"
	metaFile     = "profile.yaml"
	agentsDir    = "agents"
	commandsDir  = "commands"
	hooksDir     = "hooks"
)

// Store enumerates and loads profiles from a root directory.
type Store struct {
	root string
}

// NewStore returns a Store reading from the given profiles root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the profiles root directory.
func (s *Store) Root() string { return s.root }

// List returns the names of all profiles under the root, sorted. A missing
// root yields an empty list rather than an error.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profiles root %s: %w", s.root, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the named profile. It fails with ErrNotFound for unknown
// names, *MalformedSettingsError for a bad settings document, and
// *DuplicateIdentifierError when two agents or commands share a name.
func (s *Store) Load(name string) (*Profile, error) {
	dir := filepath.Join(s.root, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}

	p := &Profile{Name: name, Dir: dir}

	if err := s.loadMeta(p); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, settingsFile))
	if err != nil {
		return nil, fmt.Errorf("profile %q: reading %s: %w", name, settingsFile, err)
	}
	settings, err := ParseSettings(data, filepath.Join(name, settingsFile))
	if err != nil {
		return nil, err
	}
	p.Settings = settings

	rules, err := permission.NewRuleSet(settings.Permissions.Allow, settings.Permissions.Deny)
	if err != nil {
		// Unreachable in practice: ParseSettings already checked patterns.
		return nil, fmt.Errorf("profile %q: %w", name, err)
	}
	p.Rules = rules

	if err := s.loadAgents(p); err != nil {
		return nil, err
	}
	if err := s.loadCommands(p); err != nil {
		return nil, err
	}
	hooks, err := hooksFromSettings(settings, name, dir)
	if err != nil {
		return nil, err
	}
	p.Hooks = hooks

	return p, nil
}

// loadMeta reads the optional profile.yaml metadata and validates its
// version fields.
func (s *Store) loadMeta(p *Profile) error {
	data, err := os.ReadFile(filepath.Join(p.Dir, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("profile %q: reading %s: %w", p.Name, metaFile, err)
	}

	var meta Meta
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("profile %q: parsing %s: %w", p.Name, metaFile, err)
	}

	if meta.Version != "" {
		if _, err := semver.NewVersion(meta.Version); err != nil {
			return fmt.Errorf("profile %q: invalid version %q in %s: %w", p.Name, meta.Version, metaFile, err)
		}
	}
	if meta.MinTool != "" {
		if _, err := semver.NewConstraint(meta.MinTool); err != nil {
			return fmt.Errorf("profile %q: invalid min_tool constraint %q in %s: %w", p.Name, meta.MinTool, metaFile, err)
		}
	}

	p.Meta = meta
	return nil
}

// loadAgents reads every payload file in agents/, in filename order.
func (s *Store) loadAgents(p *Profile) error {
	files, err := payloadFiles(filepath.Join(p.Dir, agentsDir))
	if err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}

	seen := make(map[string]bool)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("profile %q: reading agent %s: %w", p.Name, filepath.Base(file), err)
		}

		fm, body, err := splitFrontmatter(data)
		if err != nil {
			return fmt.Errorf("profile %q: agent %s: %w", p.Name, filepath.Base(file), err)
		}

		name := fm.Name
		if name == "" {
			name = stem(file)
		}
		if seen[name] {
			return &DuplicateIdentifierError{Category: "agent", Name: name, Profile: p.Name}
		}
		seen[name] = true

		p.Agents = append(p.Agents, Agent{
			Name:           name,
			Specialization: fm.Specialization,
			Description:    fm.Description,
			Payload:        body,
			FileName:       filepath.Base(file),
		})
	}
	return nil
}

// loadCommands reads every payload file in commands/, in filename order.
func (s *Store) loadCommands(p *Profile) error {
	files, err := payloadFiles(filepath.Join(p.Dir, commandsDir))
	if err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}

	seen := make(map[string]bool)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("profile %q: reading command %s: %w", p.Name, filepath.Base(file), err)
		}

		fm, body, err := splitFrontmatter(data)
		if err != nil {
			return fmt.Errorf("profile %q: command %s: %w", p.Name, filepath.Base(file), err)
		}

		name := fm.Name
		if name == "" {
			name = stem(file)
		}
		if seen[name] {
			return &DuplicateIdentifierError{Category: "command", Name: name, Profile: p.Name}
		}
		seen[name] = true

		p.Commands = append(p.Commands, Command{
			Name:        name,
			Args:        fm.Args,
			Description: fm.Description,
			Payload:     body,
			FileName:    filepath.Base(file),
		})
	}
	return nil
}

// hooksFromSettings flattens the settings hooks mapping into an ordered
// hook list. Triggers are visited in canonical order so reloading a
// profile always yields the same sequence. Two declarations sharing a
// trigger and matcher are a duplicate identity, like two agents sharing
// a name.
func hooksFromSettings(s *Settings, name, dir string) ([]Hook, error) {
	var hooks []Hook
	seen := make(map[string]bool)
	for _, trigger := range ValidTriggers {
		for i, decl := range s.Hooks[trigger] {
			h := Hook{
				Trigger:   trigger,
				Matcher:   decl.Matcher,
				Command:   decl.Command,
				Priority:  decl.Priority,
				Position:  i,
				SourceDir: dir,
			}
			if seen[h.Key()] {
				return nil, &DuplicateIdentifierError{Category: "hook", Name: h.Key(), Profile: name}
			}
			seen[h.Key()] = true
			hooks = append(hooks, h)
		}
	}
	return hooks, nil
}

// payloadFiles lists the regular, non-hidden files in a directory, sorted
// by name. A missing directory yields an empty list.
func payloadFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// stem returns the file name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CompatibleWith reports whether the profile's min_tool constraint accepts
// the given tool version. Development builds with unparseable versions
// (e.g. "dev") always pass.
func (p *Profile) CompatibleWith(toolVersion string) (bool, error) {
	if p.Meta.MinTool == "" {
		return true, nil
	}
	v, err := semver.NewVersion(toolVersion)
	if err != nil {
		return true, nil
	}
	c, err := semver.NewConstraint(p.Meta.MinTool)
	if err != nil {
		return false, fmt.Errorf("invalid min_tool constraint %q: %w", p.Meta.MinTool, err)
	}
	return c.Check(v), nil
}
