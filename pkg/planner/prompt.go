// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/single_pass.yaml
var defaultSinglePassPrompt string

//go:embed prompts/initiatives.yaml
var defaultInitiativesPrompt string

//go:embed prompts/capabilities.yaml
var defaultCapabilitiesPrompt string

// PromptSection is a named section of a rendered prompt. Name becomes a
// markdown heading ("task" -> "# TASK"). Text may contain {key}
// placeholders substituted from the data map. Append names a data key
// whose value is appended after Text inside a code fence; when that value
// is empty the whole section is omitted.
type PromptSection struct {
	Name   string `yaml:"name"`
	Text   string `yaml:"text"`
	Append string `yaml:"append"`
}

// PromptDef is an ordered list of prompt sections.
type PromptDef struct {
	Sections []PromptSection `yaml:"sections"`
}

// parsePromptDef parses a YAML document into a PromptDef.
func parsePromptDef(yamlContent string) (PromptDef, error) {
	var def PromptDef
	if err := yaml.Unmarshal([]byte(yamlContent), &def); err != nil {
		return PromptDef{}, fmt.Errorf("parsing prompt definition: %w", err)
	}
	if len(def.Sections) == 0 {
		return PromptDef{}, fmt.Errorf("prompt definition has no sections")
	}
	return def, nil
}

// renderPrompt assembles a prompt from a PromptDef and a data map.
// Substitution applies only to Text, not to appended values, so appended
// document content containing brace patterns is never rewritten.
func renderPrompt(def PromptDef, data map[string]string) string {
	var buf strings.Builder
	first := true
	for _, sec := range def.Sections {
		if sec.Append != "" && data[sec.Append] == "" {
			continue
		}
		if !first {
			buf.WriteString("\n")
		}
		first = false

		buf.WriteString("# " + strings.ToUpper(strings.ReplaceAll(sec.Name, "_", " ")))
		buf.WriteString("\n\n")

		if sec.Text != "" {
			text := sec.Text
			for k, v := range data {
				text = strings.ReplaceAll(text, "{"+k+"}", v)
			}
			buf.WriteString(text)
			if !strings.HasSuffix(text, "\n") {
				buf.WriteByte('\n')
			}
		}

		if sec.Append != "" {
			val := data[sec.Append]
			buf.WriteString("\n```\n")
			buf.WriteString(val)
			if !strings.HasSuffix(val, "\n") {
				buf.WriteByte('\n')
			}
			buf.WriteString("```\n")
		}
	}
	return buf.String()
}

// documentData returns the placeholder/append data shared by all
// decomposition prompts.
func documentData(doc Document) map[string]string {
	return map[string]string{
		"title":       doc.Title,
		"description": doc.Description,
		"tech_stack":  strings.Join(doc.TechStack, ", "),
		"document":    doc.RawText,
	}
}
