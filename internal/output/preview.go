package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simonhull/forge/internal/generator"
)

// Format selects how a dry-run preview is printed.
type Format string

const (
	// FormatText prints a styled file tree.
	FormatText Format = "text"

	// FormatYAML prints the result as YAML.
	FormatYAML Format = "yaml"

	// FormatJSON prints the result as indented JSON.
	FormatJSON Format = "json"
)

// ValidFormats returns the accepted --format values.
func ValidFormats() []string {
	return []string{string(FormatText), string(FormatYAML), string(FormatJSON)}
}

// ParseFormat parses a --format value. An empty string means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "tree":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format '%s' (valid: %s)", s, strings.Join(ValidFormats(), ", "))
	}
}

// WritePreview prints res to w in the given format.
func WritePreview(w io.Writer, res *generator.Result, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding preview: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encoding preview: %w", err)
		}
		return nil
	default:
		_, err := io.WriteString(w, RenderPreview(res))
		return err
	}
}

// RenderPreview renders res as a file tree followed by the selected
// features and the dependencies go.mod will require.
func RenderPreview(res *generator.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s\n\n", infoStyle.Render("Project type:"), res.Archetype)
	sb.WriteString(RenderTree(res.Root, res.Paths, res.Directories))

	features := "none"
	if len(res.Features) > 0 {
		features = strings.Join(res.Features, ", ")
	}
	fmt.Fprintf(&sb, "\n%s %s\n", infoStyle.Render("Features:"), features)

	if len(res.Dependencies) > 0 {
		sb.WriteString(infoStyle.Render("Dependencies:") + "\n")
		for _, d := range res.Dependencies {
			sb.WriteString(stepStyle.Render("   "+d.String()) + "\n")
		}
	}

	fmt.Fprintf(&sb, "\n%d files, %d directories", len(res.Paths), len(res.Directories))
	if res.TargetExists {
		sb.WriteString(" (target already exists)")
	}
	sb.WriteString("\n")
	return sb.String()
}
