package cli

import (
	"fmt"
	"path/filepath"

	"github.com/profilekit-labs/profilekit/internal/branding"
	"github.com/profilekit-labs/profilekit/internal/install"
	"github.com/profilekit-labs/profilekit/internal/validate"
	"github.com/spf13/cobra"
)

var (
	installTarget string
	installDryRun bool
)

var installCmd = &cobra.Command{
	Use:   "install <profile>...",
	Short: "Merge profiles and install the bundle into a project",
	Long: `Load the named profiles in order, merge them (later profiles win name
collisions), validate the result, and install it into the target
directory. The install is all-or-nothing: on failure the target is left
exactly as it was.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installTarget, "target", "",
		"Target directory (default: ./"+branding.TargetDir()+")")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false,
		"Validate and report without writing anything")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	target := installTarget
	if target == "" {
		target = filepath.Join(".", branding.TargetDir())
	}

	bundle, collisions, err := loadAndMerge(args)
	if err != nil {
		return err
	}

	printCollisions(cmd.ErrOrStderr(), collisions)

	result := validate.Validate(bundle)
	printIssues(cmd.ErrOrStderr(), result)
	if !result.OK() {
		return fmt.Errorf("validation failed with %d error(s); nothing installed", len(result.Errors))
	}

	if installDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Dry run: would install %d agents, %d commands, %d hooks to %s\n",
			len(bundle.Agents), len(bundle.Commands), len(bundle.Hooks), target)
		return nil
	}

	manifest, err := install.Install(bundle, target)
	if err != nil {
		return fmt.Errorf("install failed, target unchanged: %w", err)
	}

	out, err := manifest.Encode()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
