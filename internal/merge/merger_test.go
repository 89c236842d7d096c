package merge

import (
	"fmt"
	"strings"
	"testing"

	"github.com/profilekit-labs/profilekit/internal/permission"
	"github.com/profilekit-labs/profilekit/internal/profile"
)

// makeProfile builds an in-memory profile with the given agent names.
func makeProfile(name string, agentNames []string, settings *profile.Settings) *profile.Profile {
	if settings == nil {
		settings = &profile.Settings{}
	}
	p := &profile.Profile{Name: name, Settings: settings}
	for _, n := range agentNames {
		p.Agents = append(p.Agents, profile.Agent{Name: n, Payload: "payload of " + n, FileName: n + ".md"})
	}
	for _, trigger := range profile.ValidTriggers {
		for i, decl := range settings.Hooks[trigger] {
			p.Hooks = append(p.Hooks, profile.Hook{
				Trigger:  trigger,
				Matcher:  decl.Matcher,
				Command:  decl.Command,
				Priority: decl.Priority,
				Position: i,
			})
		}
	}
	return p
}

func TestMergeDisjointProfiles(t *testing.T) {
	// 15 agents in one profile, 11 in the other, no overlap.
	var aNames, bNames []string
	for i := 1; i <= 15; i++ {
		aNames = append(aNames, fmt.Sprintf("a%d", i))
	}
	for i := 1; i <= 11; i++ {
		bNames = append(bNames, fmt.Sprintf("b%d", i))
	}

	a := makeProfile("memory-mcp-server", aNames, nil)
	b := makeProfile("nextjs-15", bNames, nil)

	bundle, collisions, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(collisions) != 0 {
		t.Errorf("collisions = %v, want none", collisions)
	}
	if len(bundle.Agents) != 26 {
		t.Errorf("agents = %d, want 26", len(bundle.Agents))
	}
	if bundle.SourceOf("agent", "a3") != "memory-mcp-server" {
		t.Errorf("SourceOf(a3) = %q", bundle.SourceOf("agent", "a3"))
	}
}

func TestMergeCollisionLaterWins(t *testing.T) {
	a := makeProfile("base", []string{"shared", "only-a"}, nil)
	b := makeProfile("overlay", []string{"shared"}, nil)
	b.Agents[0].Payload = "overlay version"

	bundle, collisions, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if len(collisions) != 1 {
		t.Fatalf("collisions = %v, want exactly one", collisions)
	}
	c := collisions[0]
	if c.Category != "agent" || c.Name != "shared" || c.Losing != "base" || c.Winning != "overlay" {
		t.Errorf("collision = %+v", c)
	}

	var found bool
	for _, agent := range bundle.Agents {
		if agent.Name == "shared" {
			found = true
			if agent.Payload != "overlay version" {
				t.Errorf("merged entry = %q, want the later profile's", agent.Payload)
			}
		}
	}
	if !found {
		t.Fatal("shared agent missing from bundle")
	}
	if len(bundle.Agents) != 2 {
		t.Errorf("agents = %d, want 2", len(bundle.Agents))
	}
}

func TestMergeDenyWinsOverAllow(t *testing.T) {
	a := makeProfile("strict", nil, &profile.Settings{
		Permissions: profile.Permissions{Deny: []string{"Bash(rm:*)"}},
	})
	b := makeProfile("permissive", nil, &profile.Settings{
		Permissions: profile.Permissions{Allow: []string{"Bash(rm:*)", "Read"}},
	})

	bundle, _, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if d := bundle.Rules.Decide("Bash", "rm:-rf /"); d != permission.DecisionDeny {
		t.Errorf("effective decision = %s, want deny regardless of merge order", d)
	}
	// Same check with the profiles reversed.
	bundle, _, err = Merge(b, a)
	if err != nil {
		t.Fatalf("Merge reversed: %v", err)
	}
	if d := bundle.Rules.Decide("Bash", "rm:-rf /"); d != permission.DecisionDeny {
		t.Errorf("effective decision = %s, want deny regardless of merge order", d)
	}
}

func TestMergePermissionListsUnion(t *testing.T) {
	a := makeProfile("a", nil, &profile.Settings{
		Permissions: profile.Permissions{Allow: []string{"Read", "Edit(src/*)"}, Deny: []string{"Bash(rm:*)"}},
	})
	b := makeProfile("b", nil, &profile.Settings{
		Permissions: profile.Permissions{Allow: []string{"Read", "Write"}, Deny: []string{"Bash(sudo:*)"}},
	})

	bundle, _, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	allow := bundle.Settings.Permissions.Allow
	if len(allow) != 3 {
		t.Errorf("allow = %v, want deduplicated union of 3", allow)
	}
	deny := bundle.Settings.Permissions.Deny
	if len(deny) != 2 {
		t.Errorf("deny = %v, want union of 2", deny)
	}
}

func TestMergeEnvRequiredIsSticky(t *testing.T) {
	a := makeProfile("a", nil, &profile.Settings{
		Env: map[string]profile.EnvDecl{
			"API_KEY": {Placeholder: "old", Required: true},
		},
	})
	b := makeProfile("b", nil, &profile.Settings{
		Env: map[string]profile.EnvDecl{
			"API_KEY": {Placeholder: "new", Required: false},
			"REGION":  {Placeholder: "us-east-1"},
		},
	})

	bundle, _, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	decl := bundle.Settings.Env["API_KEY"]
	if decl.Placeholder != "new" {
		t.Errorf("placeholder = %q, want later profile's", decl.Placeholder)
	}
	if !decl.Required {
		t.Error("required flag must not be loosened by a later profile")
	}
	if len(bundle.Settings.Env) != 2 {
		t.Errorf("env = %v, want union of 2", bundle.Settings.Env)
	}
}

func TestMergeHookCollisionAndOrdering(t *testing.T) {
	a := makeProfile("a", nil, &profile.Settings{
		Hooks: map[string][]profile.HookDecl{
			profile.TriggerBeforeWrite: {
				{Matcher: "*.go", Command: "hooks/fmt-a.sh"},
				{Matcher: "*.md", Command: "hooks/docs.sh", Priority: 10},
			},
		},
	})
	b := makeProfile("b", nil, &profile.Settings{
		Hooks: map[string][]profile.HookDecl{
			profile.TriggerBeforeWrite: {
				{Matcher: "*.go", Command: "hooks/fmt-b.sh"},
			},
			profile.TriggerSessionStart: {
				{Matcher: "*", Command: "hooks/hello.sh"},
			},
		},
	})

	bundle, collisions, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if len(collisions) != 1 {
		t.Fatalf("collisions = %v, want one hook collision", collisions)
	}
	if collisions[0].Category != "hook" || collisions[0].Name != "before-write/*.go" {
		t.Errorf("collision = %+v", collisions[0])
	}

	if len(bundle.Hooks) != 3 {
		t.Fatalf("hooks = %d, want 3", len(bundle.Hooks))
	}
	// *.go entry replaced by b's; priority 0 sorts before priority 10.
	if bundle.Hooks[0].Command != "hooks/fmt-b.sh" {
		t.Errorf("hooks[0] = %+v, want b's fmt hook first", bundle.Hooks[0])
	}
	if bundle.Hooks[1].Command != "hooks/docs.sh" {
		t.Errorf("hooks[1] = %+v, want priority-10 docs hook second", bundle.Hooks[1])
	}
	if bundle.Hooks[2].Trigger != profile.TriggerSessionStart {
		t.Errorf("hooks[2] = %+v, want session-start last", bundle.Hooks[2])
	}
}

func TestMergeHookDeclarationOrderAcrossProfiles(t *testing.T) {
	// All hooks share a trigger and the default priority; the merged
	// order must follow profile order, then declaration order.
	a := makeProfile("a", nil, &profile.Settings{
		Hooks: map[string][]profile.HookDecl{
			profile.TriggerBeforeWrite: {
				{Matcher: "*.go", Command: "hooks/a-go.sh"},
				{Matcher: "*.md", Command: "hooks/a-md.sh"},
			},
		},
	})
	b := makeProfile("b", nil, &profile.Settings{
		Hooks: map[string][]profile.HookDecl{
			profile.TriggerBeforeWrite: {
				{Matcher: "*.py", Command: "hooks/b-py.sh"},
			},
		},
	})

	bundle, collisions, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(collisions) != 0 {
		t.Errorf("collisions = %v, want none", collisions)
	}

	want := []string{"hooks/a-go.sh", "hooks/a-md.sh", "hooks/b-py.sh"}
	if len(bundle.Hooks) != len(want) {
		t.Fatalf("hooks = %d, want %d", len(bundle.Hooks), len(want))
	}
	for i, cmd := range want {
		if bundle.Hooks[i].Command != cmd {
			t.Errorf("hooks[%d] = %s, want %s", i, bundle.Hooks[i].Command, cmd)
		}
	}
}

func TestMergeSameProfileHookDuplicateReport(t *testing.T) {
	a := makeProfile("a", nil, &profile.Settings{
		Hooks: map[string][]profile.HookDecl{
			profile.TriggerBeforeWrite: {
				{Matcher: "*", Command: "hooks/one.sh"},
				{Matcher: "*", Command: "hooks/two.sh"},
			},
		},
	})

	bundle, collisions, err := Merge(a)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(collisions) != 1 {
		t.Fatalf("collisions = %v, want one", collisions)
	}
	got := collisions[0].String()
	if !strings.Contains(got, `declared twice in profile a`) {
		t.Errorf("collision report = %q, want the duplicate-declaration wording", got)
	}
	if len(bundle.Hooks) != 1 || bundle.Hooks[0].Command != "hooks/two.sh" {
		t.Errorf("hooks = %+v, want only the later declaration", bundle.Hooks)
	}
}

func TestMergeNoProfiles(t *testing.T) {
	if _, _, err := Merge(); err == nil {
		t.Fatal("expected error for empty merge")
	}
}
