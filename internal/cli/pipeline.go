package cli

import (
	"fmt"
	"io"

	"github.com/profilekit-labs/profilekit/internal/merge"
	"github.com/profilekit-labs/profilekit/internal/profile"
	"github.com/profilekit-labs/profilekit/internal/validate"
)

// loadAndMerge loads every named profile in order and merges them.
// Profiles incompatible with the running tool version are rejected.
func loadAndMerge(names []string) (*merge.Bundle, []merge.Collision, error) {
	store := profile.NewStore(profilesRoot())

	profiles := make([]*profile.Profile, 0, len(names))
	for _, name := range names {
		p, err := store.Load(name)
		if err != nil {
			return nil, nil, err
		}

		ok, err := p.CompatibleWith(buildVersion)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, fmt.Errorf("profile %q requires tool version %s (running %s)",
				name, p.Meta.MinTool, buildVersion)
		}

		profiles = append(profiles, p)
	}

	return merge.Merge(profiles...)
}

// printCollisions writes every collision report to w. Collisions are
// informational and never silently dropped.
func printCollisions(w io.Writer, collisions []merge.Collision) {
	for _, c := range collisions {
		fmt.Fprintf(w, "collision: %s\n", c)
	}
}

// printIssues writes validation findings to w, warnings first so fatal
// errors end up closest to the exit message.
func printIssues(w io.Writer, r *validate.Result) {
	for _, issue := range r.Warnings {
		fmt.Fprintln(w, issue)
	}
	for _, issue := range r.Errors {
		fmt.Fprintln(w, issue)
	}
}
