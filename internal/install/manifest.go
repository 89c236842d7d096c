package install

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/profilekit-labs/profilekit/internal/branding"
)

// ManagedFile is one file the installer wrote, identified by its path
// relative to the target directory and its content hash.
type ManagedFile struct {
	Path   string `yaml:"path"`
	SHA256 string `yaml:"sha256"`
}

// Manifest records everything a prior install run wrote into a target
// directory. It deliberately carries no timestamps so that reinstalling
// an identical bundle reproduces a byte-identical manifest.
type Manifest struct {
	// Profiles lists the source profile names in merge order.
	Profiles []string `yaml:"profiles"`
	// Files lists every managed file, sorted by path.
	Files []ManagedFile `yaml:"files"`
}

// ManifestPath returns the manifest location inside a target directory.
func ManifestPath(targetDir string) string {
	return filepath.Join(targetDir, branding.ManifestName())
}

// LoadManifest reads the manifest from a target directory. A missing
// manifest yields an empty one: the target has no managed files yet.
func LoadManifest(targetDir string) (*Manifest, error) {
	data, err := os.ReadFile(ManifestPath(targetDir))
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("reading install manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing install manifest: %w", err)
	}
	return &m, nil
}

// Managed reports whether the manifest lists the given relative path.
func (m *Manifest) Managed(rel string) bool {
	for _, f := range m.Files {
		if f.Path == rel {
			return true
		}
	}
	return false
}

// Encode renders the manifest as YAML with files sorted by path.
func (m *Manifest) Encode() ([]byte, error) {
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding install manifest: %w", err)
	}
	return data, nil
}

// hashBytes returns the hex SHA-256 of data.
func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
