package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/profilekit-labs/profilekit/internal/profile"
)

//go:embed templates
var templateFS embed.FS

// Data holds the variables available to skeleton templates.
type Data struct {
	Name        string // profile directory name
	Description string
	Version     string // semver, e.g. "0.1.0"
	Year        int
}

// Result holds the outcome of one skeleton generation.
type Result struct {
	OutputDir string
	Files     []string
	Warnings  []string
}

// NewData creates template data for a profile with derived defaults.
func NewData(name string) *Data {
	return &Data{
		Name:        name,
		Description: fmt.Sprintf("Profile: %s", name),
		Version:     "0.1.0",
		Year:        time.Now().Year(),
	}
}

// Generate writes a profile skeleton into outputDir. Files ending in
// .tmpl are executed as Go templates against data; everything else is
// copied verbatim, so command payloads can carry {{arg}} placeholders
// without fighting text/template.
func Generate(data *Data, outputDir string) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	existing, err := os.ReadDir(outputDir)
	if err == nil && len(existing) > 0 {
		return nil, fmt.Errorf("output directory %s is not empty; remove existing files first", outputDir)
	}

	result := &Result{OutputDir: outputDir}

	err = fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		raw, err := fs.ReadFile(templateFS, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}

		rel := strings.TrimPrefix(p, "templates/")
		out := raw

		if strings.HasSuffix(rel, ".tmpl") {
			rel = strings.TrimSuffix(rel, ".tmpl")
			tmpl, err := template.New(path.Base(p)).Parse(string(raw))
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", p, err)
			}
			var buf bytes.Buffer
			if err := tmpl.Execute(&buf, data); err != nil {
				return fmt.Errorf("executing template %s: %w", p, err)
			}
			out = buf.Bytes()
		}

		dst := filepath.Join(outputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
		}

		mode := os.FileMode(0644)
		if strings.HasSuffix(rel, ".sh") {
			mode = 0755
		}
		if err := os.WriteFile(dst, out, mode); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}

		result.Files = append(result.Files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Load the generated profile so a broken skeleton is reported at
	// creation time rather than on first use.
	store := profile.NewStore(filepath.Dir(outputDir))
	if _, err := store.Load(filepath.Base(outputDir)); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("generated profile does not load cleanly: %v", err))
	}

	return result, nil
}
