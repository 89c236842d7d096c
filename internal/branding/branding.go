// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package before building; Go's
// //go:embed bakes it into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName      string `yaml:"cli_name"`
	DisplayName  string `yaml:"display_name"`
	Description  string `yaml:"description"`
	HomeDir      string `yaml:"home_dir"`
	EnvPrefix    string `yaml:"env_prefix"`
	GoModule     string `yaml:"go_module"`
	TargetDir    string `yaml:"target_dir"`
	ManifestName string `yaml:"manifest_name"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:      "profilekit",
			DisplayName:  "ProfileKit",
			Description:  "Profile installer for AI assistant configurations",
			HomeDir:      ".profilekit",
			EnvPrefix:    "PROFILEKIT",
			GoModule:     "github.com/profilekit-labs/profilekit",
			TargetDir:    ".assistant",
			ManifestName: ".install-manifest.yaml",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "profilekit").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "ProfileKit").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".profilekit").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "PROFILEKIT").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Used by release scripts, not at runtime.
func GoModule() string { load(); return defaults.GoModule }

// TargetDir returns the default assistant config directory name inside a
// project (e.g., ".assistant").
func TargetDir() string { load(); return defaults.TargetDir }

// ManifestName returns the install manifest filename written into the
// target directory (e.g., ".install-manifest.yaml").
func ManifestName() string { load(); return defaults.ManifestName }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("PROFILES")
// → "PROFILEKIT_PROFILES".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
