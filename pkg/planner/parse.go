// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import "strings"

// Document is a parsed requirements document, consumed as prompt input.
type Document struct {
	Title       string
	Description string
	RawText     string
	TechStack   []string
	// Path is the source file reference recorded in snapshots.
	Path string
}

// ParseDocument extracts the title, leading description, and tech stack
// from a markdown requirements document. The title is the first H1; the
// description is the first paragraph after it; the tech stack is the
// bullet list under a heading containing "tech stack" (case-insensitive).
func ParseDocument(raw string) Document {
	doc := Document{RawText: raw}

	lines := strings.Split(raw, "\n")
	inTechStack := false
	descDone := false
	var desc []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "#") {
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			inTechStack = strings.Contains(strings.ToLower(heading), "tech stack")
			if doc.Title == "" && strings.HasPrefix(trimmed, "# ") {
				doc.Title = heading
				continue
			}
			if doc.Title != "" && len(desc) > 0 {
				descDone = true
			}
			continue
		}

		if inTechStack {
			if item, ok := bulletItem(trimmed); ok {
				doc.TechStack = append(doc.TechStack, item)
			}
			continue
		}

		if doc.Title != "" && !descDone {
			if trimmed == "" {
				if len(desc) > 0 {
					descDone = true
				}
				continue
			}
			desc = append(desc, trimmed)
		}
	}

	doc.Description = strings.Join(desc, " ")
	return doc
}

// bulletItem strips a markdown list marker, returning ok=false for
// non-list lines.
func bulletItem(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}
