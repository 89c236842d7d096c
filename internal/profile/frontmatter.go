package profile

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// frontmatter holds the optional YAML metadata block at the top of an
// agent or command payload file.
type frontmatter struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	Specialization string   `yaml:"specialization"`
	Args           []string `yaml:"args"`
}

const frontmatterDelim = "---"

// splitFrontmatter separates an optional leading YAML frontmatter block
// from the payload body. Files without a frontmatter block return a zero
// frontmatter and the full content as body.
func splitFrontmatter(data []byte) (frontmatter, string, error) {
	var fm frontmatter
	content := string(data)

	if !strings.HasPrefix(content, frontmatterDelim+"\n") && content != frontmatterDelim {
		return fm, content, nil
	}

	rest := strings.TrimPrefix(content, frontmatterDelim+"\n")
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return fm, "", fmt.Errorf("unterminated frontmatter block")
	}

	block := rest[:end]
	body := rest[end+len("\n"+frontmatterDelim):]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return fm, "", fmt.Errorf("parsing frontmatter: %w", err)
	}

	return fm, body, nil
}
