package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/profilekit-labs/profilekit/internal/profile"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <profile>",
	Short: "Show a profile's agents, commands, hooks, and settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	p, err := profile.NewStore(profilesRoot()).Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile: %s\n", p.Name)
	if p.Meta.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", p.Meta.Description)
	}
	if p.Meta.Version != "" {
		fmt.Fprintf(out, "Version: %s\n", p.Meta.Version)
	}

	if len(p.Agents) > 0 {
		fmt.Fprintf(out, "\nAgents (%d):\n", len(p.Agents))
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, a := range p.Agents {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", a.Name, a.Specialization, a.Description)
		}
		w.Flush()
	}

	if len(p.Commands) > 0 {
		fmt.Fprintf(out, "\nCommands (%d):\n", len(p.Commands))
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, c := range p.Commands {
			fmt.Fprintf(w, "  %s\t(%s)\t%s\n", c.Name, strings.Join(c.Args, ", "), c.Description)
		}
		w.Flush()
	}

	if len(p.Hooks) > 0 {
		fmt.Fprintf(out, "\nHooks (%d):\n", len(p.Hooks))
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, h := range p.Hooks {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", h.Trigger, h.Matcher, h.Command)
		}
		w.Flush()
	}

	s := p.Settings
	fmt.Fprintf(out, "\nPermissions: %d allow, %d deny\n", len(s.Permissions.Allow), len(s.Permissions.Deny))
	if len(s.Env) > 0 {
		fmt.Fprintf(out, "Environment variables: %d declared\n", len(s.Env))
	}

	return nil
}
