package merge

import (
	"fmt"
	"sort"

	"github.com/profilekit-labs/profilekit/internal/permission"
	"github.com/profilekit-labs/profilekit/internal/profile"
)

// Collision records an identifier claimed by more than one profile. The
// winning profile's entry is the one kept in the bundle. Callers must
// surface collisions, never discard them.
type Collision struct {
	Category string // "agent", "command", or "hook"
	Name     string
	Losing   string // profile that lost the entry
	Winning  string // profile whose entry was kept
}

func (c Collision) String() string {
	if c.Losing == c.Winning {
		return fmt.Sprintf("%s %q declared twice in profile %s (later declaration kept)", c.Category, c.Name, c.Winning)
	}
	return fmt.Sprintf("%s %q from profile %s overrides profile %s", c.Category, c.Name, c.Winning, c.Losing)
}

// Bundle is the immutable result of merging one or more profiles.
type Bundle struct {
	// Profiles lists the source profile names in merge order.
	Profiles []string
	// Settings is the merged settings document.
	Settings *profile.Settings
	// Rules is the effective permission rule set of the merged settings.
	Rules permission.RuleSet
	// Agents, Commands, and Hooks are the merged ordered sets.
	Agents   []profile.Agent
	Commands []profile.Command
	Hooks    []profile.Hook
	// sources maps category+name to the owning profile, for install reports.
	sources map[string]string
}

// SourceOf returns the profile that contributed the named entry, or empty.
func (b *Bundle) SourceOf(category, name string) string {
	return b.sources[category+"/"+name]
}

// Merge combines profiles in order into a single bundle. Later profiles
// win identifier collisions; every collision is reported.
func Merge(profiles ...*profile.Profile) (*Bundle, []Collision, error) {
	if len(profiles) == 0 {
		return nil, nil, fmt.Errorf("nothing to merge: no profiles given")
	}

	b := &Bundle{sources: make(map[string]string)}
	var collisions []Collision

	agentIdx := make(map[string]int)
	commandIdx := make(map[string]int)
	hookIdx := make(map[string]int)

	settings := &profile.Settings{
		Env:   make(map[string]profile.EnvDecl),
		Hooks: make(map[string][]profile.HookDecl),
	}

	for _, p := range profiles {
		b.Profiles = append(b.Profiles, p.Name)

		for _, a := range p.Agents {
			if i, ok := agentIdx[a.Name]; ok {
				collisions = append(collisions, Collision{
					Category: "agent",
					Name:     a.Name,
					Losing:   b.sources["agent/"+a.Name],
					Winning:  p.Name,
				})
				b.Agents[i] = a
			} else {
				agentIdx[a.Name] = len(b.Agents)
				b.Agents = append(b.Agents, a)
			}
			b.sources["agent/"+a.Name] = p.Name
		}

		for _, c := range p.Commands {
			if i, ok := commandIdx[c.Name]; ok {
				collisions = append(collisions, Collision{
					Category: "command",
					Name:     c.Name,
					Losing:   b.sources["command/"+c.Name],
					Winning:  p.Name,
				})
				b.Commands[i] = c
			} else {
				commandIdx[c.Name] = len(b.Commands)
				b.Commands = append(b.Commands, c)
			}
			b.sources["command/"+c.Name] = p.Name
		}

		for _, h := range p.Hooks {
			if i, ok := hookIdx[h.Key()]; ok {
				collisions = append(collisions, Collision{
					Category: "hook",
					Name:     h.Key(),
					Losing:   b.sources["hook/"+h.Key()],
					Winning:  p.Name,
				})
				b.Hooks[i] = h
			} else {
				hookIdx[h.Key()] = len(b.Hooks)
				b.Hooks = append(b.Hooks, h)
			}
			b.sources["hook/"+h.Key()] = p.Name
		}

		mergeSettings(settings, p.Settings)
	}

	orderHooks(b.Hooks)
	settings.Hooks = hookDecls(b.Hooks)
	b.Settings = settings

	rules, err := permission.NewRuleSet(settings.Permissions.Allow, settings.Permissions.Deny)
	if err != nil {
		// Patterns were validated at load time; a failure here means a
		// profile was constructed without going through the store.
		return nil, nil, fmt.Errorf("merged permissions: %w", err)
	}
	b.Rules = rules

	return b, collisions, nil
}

// mergeSettings folds src into dst. Permission lists union (deny is never
// shrunk by a later profile); env declarations union with later-wins on
// the placeholder and required resolving to the safer value.
func mergeSettings(dst *profile.Settings, src *profile.Settings) {
	dst.Permissions.Allow = unionPatterns(dst.Permissions.Allow, src.Permissions.Allow)
	dst.Permissions.Deny = unionPatterns(dst.Permissions.Deny, src.Permissions.Deny)

	for key, decl := range src.Env {
		if prior, ok := dst.Env[key]; ok {
			// Later placeholder wins; required resolves to required.
			decl.Required = decl.Required || prior.Required
		}
		dst.Env[key] = decl
	}
}

// unionPatterns appends the patterns of b not already present in a,
// preserving first-appearance order.
func unionPatterns(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, p := range a {
		seen[p] = true
	}
	for _, p := range b {
		if !seen[p] {
			seen[p] = true
			a = append(a, p)
		}
	}
	return a
}

// orderHooks sorts hooks by canonical trigger order, then priority. The
// sort is stable, and hooks arrive appended in profile order with each
// profile's declarations already in order, so ties keep declaration
// order across profiles.
func orderHooks(hooks []profile.Hook) {
	rank := make(map[string]int, len(profile.ValidTriggers))
	for i, trigger := range profile.ValidTriggers {
		rank[trigger] = i
	}
	sort.SliceStable(hooks, func(i, j int) bool {
		if rank[hooks[i].Trigger] != rank[hooks[j].Trigger] {
			return rank[hooks[i].Trigger] < rank[hooks[j].Trigger]
		}
		return hooks[i].Priority < hooks[j].Priority
	})
}

// hookDecls rebuilds the settings hooks mapping from the merged hook list.
func hookDecls(hooks []profile.Hook) map[string][]profile.HookDecl {
	decls := make(map[string][]profile.HookDecl)
	for _, h := range hooks {
		decls[h.Trigger] = append(decls[h.Trigger], profile.HookDecl{
			Matcher:  h.Matcher,
			Command:  h.Command,
			Priority: h.Priority,
		})
	}
	return decls
}
