// Package templates provides embedded starter configuration files for
// omnisend init.
package templates

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed *.yaml
var templateFS embed.FS

// Template represents a starter configuration.
type Template struct {
	ID          string
	Description string
	Filename    string
}

// AvailableTemplates returns all available starter templates.
var AvailableTemplates = []Template{
	{
		ID:          "default",
		Description: "Every setting at its built-in default",
		Filename:    "default.yaml",
	},
	{
		ID:          "local-dev",
		Description: "Debug logging, short timeouts, CoAP PUT allowed, sandbox addresses",
		Filename:    "local-dev.yaml",
	},
	{
		ID:          "service",
		Description: "JSON logs and an API bound on all interfaces",
		Filename:    "service.yaml",
	},
}

// Get returns the template content by ID.
func Get(id string) ([]byte, error) {
	for _, t := range AvailableTemplates {
		if strings.EqualFold(t.ID, id) {
			return templateFS.ReadFile(t.Filename)
		}
	}
	return nil, fmt.Errorf("unknown template: %s", id)
}

// List returns all template IDs sorted alphabetically.
func List() []string {
	ids := make([]string, len(AvailableTemplates))
	for i, t := range AvailableTemplates {
		ids[i] = t.ID
	}
	sort.Strings(ids)
	return ids
}

// FormatList returns a formatted string listing all available templates.
func FormatList() string {
	var sb strings.Builder
	sb.WriteString("Available templates:\n\n")

	maxLen := 0
	for _, t := range AvailableTemplates {
		if len(t.ID) > maxLen {
			maxLen = len(t.ID)
		}
	}

	for _, t := range AvailableTemplates {
		fmt.Fprintf(&sb, "  %-*s  %s\n", maxLen, t.ID, t.Description)
	}

	sb.WriteString("\nUsage:\n")
	sb.WriteString("  omnisend init --template <name>\n")
	sb.WriteString("  omnisend init -t local-dev -o .omnisend.yaml\n")

	return sb.String()
}

// Exists checks if a template ID exists.
func Exists(id string) bool {
	for _, t := range AvailableTemplates {
		if strings.EqualFold(t.ID, id) {
			return true
		}
	}
	return false
}
