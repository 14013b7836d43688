// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"fmt"
	"strings"
)

// Issue bodies are a deterministic rendering of each entity. Section
// ordering is part of the external contract: downstream tooling parses
// these bodies, so the order must not change.

// parentLabelPrefix is the prefix for fallback parent labels. The full
// label names the parent's issue number (e.g. "child-of-42").
const parentLabelPrefix = "child-of-"

// parentLabel returns the fallback label for children of parent.
func parentLabel(parent ItemHandle) string {
	return fmt.Sprintf("%s%d", parentLabelPrefix, parent.Number)
}

// parentReference returns the text line prepended to a child's body when
// the native parent link is unavailable.
func parentReference(parent ItemHandle) string {
	return fmt.Sprintf("Parent: #%d", parent.Number)
}

// renderInitiativeBody renders an Initiative issue body:
// objective, description, success metrics, metadata footer.
func renderInitiativeBody(ini Initiative) string {
	var sb strings.Builder
	section(&sb, "Objective", ini.Objective)
	section(&sb, "Description", ini.Description)
	bulletSection(&sb, "Success Metrics", ini.SuccessMetrics)
	footer(&sb, map[string]string{
		"id":       ini.ID,
		"priority": fmt.Sprintf("%d", ini.Priority),
	}, "id", "priority")
	return sb.String()
}

// renderCapabilityBody renders a Capability issue body: contract,
// acceptance criteria, edge constraints, checklist, metadata footer.
func renderCapabilityBody(cap Capability) string {
	var sb strings.Builder
	section(&sb, "Description", cap.Description)
	section(&sb, "Input/Output Contract", cap.InputOutputContract)
	bulletSection(&sb, "Acceptance Criteria", cap.AcceptanceCriteria)
	bulletSection(&sb, "Edge Constraints", cap.EdgeConstraints)
	if len(cap.Checklist) > 0 {
		sb.WriteString("## Checklist\n\n")
		for _, item := range cap.Checklist {
			sb.WriteString("- [ ] " + item.Title)
			if item.Description != "" {
				sb.WriteString(" — " + item.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	section(&sb, "Context", cap.AIContext)
	footer(&sb, map[string]string{
		"id":              cap.ID,
		"priority":        fmt.Sprintf("%d", cap.Priority),
		"complexity":      cap.Complexity,
		"estimated_hours": fmt.Sprintf("%d", cap.EstimatedHours),
	}, "id", "priority", "complexity", "estimated_hours")
	return sb.String()
}

// renderDeliverableBody renders a Deliverable issue body: description,
// completion criteria, review-gate notice, metadata footer.
func renderDeliverableBody(del Deliverable) string {
	var sb strings.Builder
	section(&sb, "Description", del.Description)
	bulletSection(&sb, "Completion Criteria", del.CompletionCriteria)
	if del.RequiresReviewGate {
		sb.WriteString("## Review Gate\n\nThis deliverable requires review before its dependents may start.\n\n")
	}
	footer(&sb, map[string]string{"id": del.ID}, "id")
	return sb.String()
}

func section(sb *strings.Builder, heading, text string) {
	if text == "" {
		return
	}
	sb.WriteString("## " + heading + "\n\n" + text + "\n\n")
}

func bulletSection(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("## " + heading + "\n\n")
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
	sb.WriteString("\n")
}

// footer writes the fixed metadata footer. keys fixes the field order so
// the rendering stays deterministic.
func footer(sb *strings.Builder, fields map[string]string, keys ...string) {
	sb.WriteString("---\n")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s: %s\n", k, fields[k]))
	}
}
