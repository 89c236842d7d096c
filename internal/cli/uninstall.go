package cli

import (
	"fmt"
	"path/filepath"

	"github.com/profilekit-labs/profilekit/internal/branding"
	"github.com/profilekit-labs/profilekit/internal/install"
	"github.com/spf13/cobra"
)

var uninstallTarget string

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove an installed bundle from a project",
	Long:  `Remove every file listed in the target's install manifest. Files not written by a prior install are left untouched.`,
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().StringVar(&uninstallTarget, "target", "",
		"Target directory (default: ./"+branding.TargetDir()+")")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	target := uninstallTarget
	if target == "" {
		target = filepath.Join(".", branding.TargetDir())
	}

	removed, err := install.Uninstall(target)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing installed in", target)
		return nil
	}

	for _, rel := range removed {
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", rel)
	}
	return nil
}
