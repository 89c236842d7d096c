package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/profilekit-labs/profilekit/internal/profile"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	Long:  `List every profile found under the profiles root.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents one profile for display.
type listEntry struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
	Agents      int    `json:"agents"`
	Commands    int    `json:"commands"`
	Hooks       int    `json:"hooks"`
}

func runList(cmd *cobra.Command, args []string) error {
	store := profile.NewStore(profilesRoot())

	names, err := store.List()
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles found.")
		return nil
	}

	var entries []listEntry
	for _, name := range names {
		p, err := store.Load(name)
		if err != nil {
			return err
		}
		entries = append(entries, listEntry{
			Name:        name,
			Version:     p.Meta.Version,
			Description: p.Meta.Description,
			Agents:      len(p.Agents),
			Commands:    len(p.Commands),
			Hooks:       len(p.Hooks),
		})
	}

	if listJSON {
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling profile list: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tAGENTS\tCOMMANDS\tHOOKS\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n", e.Name, e.Version, e.Agents, e.Commands, e.Hooks, e.Description)
	}
	return w.Flush()
}
