package cli

import (
	"fmt"
	"path/filepath"

	"github.com/profilekit-labs/profilekit/internal/scaffold"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a new profile skeleton",
	Long: `Create a new profile directory under the profiles root with a starter
settings.json, metadata, and one example agent, command, and hook.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	name := args[0]
	outDir := filepath.Join(profilesRoot(), name)

	result, err := scaffold.Generate(scaffold.NewData(name), outDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created profile %q in %s\n", name, result.OutputDir)
	for _, f := range result.Files {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", f)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return nil
}
