package cli

import (
	"fmt"

	"github.com/profilekit-labs/profilekit/internal/validate"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <profile>...",
	Short: "Load, merge, and validate profiles without installing",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	bundle, collisions, err := loadAndMerge(args)
	if err != nil {
		return err
	}

	printCollisions(cmd.ErrOrStderr(), collisions)

	result := validate.Validate(bundle)
	printIssues(cmd.ErrOrStderr(), result)

	if !result.OK() {
		return fmt.Errorf("validation failed with %d error(s)", len(result.Errors))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK: %d agents, %d commands, %d hooks",
		len(bundle.Agents), len(bundle.Commands), len(bundle.Hooks))
	if len(result.Warnings) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), " (%d warning(s))", len(result.Warnings))
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
