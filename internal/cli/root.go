package cli

import (
	"github.com/profilekit-labs/profilekit/internal/branding"
	"github.com/profilekit-labs/profilekit/internal/config"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	flagProfilesRoot string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` loads named configuration profiles (agents, commands, hooks,
settings), merges them into a single bundle, validates the result, and
installs it into a project's assistant configuration directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProfilesRoot, "profiles-root", "",
		"Directory containing profiles (default: $"+branding.EnvVar("PROFILES")+" or ~/"+branding.HomeDir()+"/profiles)")
}

// profilesRoot resolves the profiles root: flag, then env/config/default.
func profilesRoot() string {
	if flagProfilesRoot != "" {
		return flagProfilesRoot
	}
	return config.ProfilesRoot()
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
