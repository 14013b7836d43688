// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"fmt"
	"regexp"
	"strings"
)

// Complexity values accepted on a Capability.
const (
	ComplexitySmall  = "small"
	ComplexityMedium = "medium"
	ComplexityLarge  = "large"
)

// Symbolic id formats. Ids are generation-time identifiers with no meaning
// to GitHub; the resolver maps them to issue numbers during materialization.
var (
	initiativeIDRe  = regexp.MustCompile(`^initiative-\d+$`)
	capabilityIDRe  = regexp.MustCompile(`^capability-\d+-\d+$`)
	deliverableIDRe = regexp.MustCompile(`^deliverable-\d+-\d+-\d+$`)
)

// Initiative is a top-level rationale-bearing entity ("why").
type Initiative struct {
	ID             string       `yaml:"id"`
	Title          string       `yaml:"title"`
	Description    string       `yaml:"description"`
	Objective      string       `yaml:"objective"`
	SuccessMetrics []string     `yaml:"success_metrics"`
	Priority       int          `yaml:"priority"`
	Capabilities   []Capability `yaml:"capabilities"`
}

// Capability is a scoped feature/contract entity ("what") owned by an
// Initiative. It expands into Deliverables or carries a checklist, never
// both.
type Capability struct {
	ID                    string          `yaml:"id"`
	ParentInitiativeID    string          `yaml:"parent_initiative_id"`
	Title                 string          `yaml:"title"`
	Description           string          `yaml:"description"`
	InputOutputContract   string          `yaml:"input_output_contract"`
	AcceptanceCriteria    []string        `yaml:"acceptance_criteria"`
	EdgeConstraints       []string        `yaml:"edge_constraints"`
	Priority              int             `yaml:"priority"`
	Complexity            string          `yaml:"complexity"`
	EstimatedHours        int             `yaml:"estimated_hours"`
	Dependencies          []string        `yaml:"dependencies"`
	AIContext             string          `yaml:"ai_context"`
	Labels                []string        `yaml:"labels"`
	ExpandsToDeliverables bool            `yaml:"expands_to_deliverables"`
	Deliverables          []Deliverable   `yaml:"deliverables"`
	Checklist             []ChecklistItem `yaml:"checklist"`
}

// Deliverable is a sub-unit of a Capability that needs its own sequencing
// or a review gate.
type Deliverable struct {
	ID                 string   `yaml:"id"`
	ParentCapabilityID string   `yaml:"parent_capability_id"`
	Title              string   `yaml:"title"`
	Description        string   `yaml:"description"`
	CompletionCriteria []string `yaml:"completion_criteria"`
	Dependencies       []string `yaml:"dependencies"`
	RequiresReviewGate bool     `yaml:"requires_review_gate"`
}

// ChecklistItem is rendered as text inside its owning Capability's issue
// body; it is never tracked as a separate issue.
type ChecklistItem struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
}

// Hierarchy is the validated three-level decomposition of one requirements
// document. Entities are immutable once the orchestrator returns them.
type Hierarchy struct {
	Initiatives []Initiative `yaml:"initiatives"`
}

// CapabilityCount returns the total number of capabilities across all
// initiatives.
func (h *Hierarchy) CapabilityCount() int {
	n := 0
	for _, ini := range h.Initiatives {
		n += len(ini.Capabilities)
	}
	return n
}

// DeliverableCount returns the total number of deliverables across all
// capabilities.
func (h *Hierarchy) DeliverableCount() int {
	n := 0
	for _, ini := range h.Initiatives {
		for _, cap := range ini.Capabilities {
			n += len(cap.Deliverables)
		}
	}
	return n
}

// Validate checks the hierarchy against the structural schema. On failure
// it returns an ErrSchemaInvalid error whose message lists every violation
// found, so a single round-trip surfaces all problems.
//
// requireCapabilities is false during staged phase 1, where initiative
// summaries legitimately have no capabilities yet.
func (h *Hierarchy) Validate(requireCapabilities bool) error {
	var problems []string
	seenInitiative := map[string]bool{}

	for i, ini := range h.Initiatives {
		where := fmt.Sprintf("initiative[%d]", i)
		if ini.ID != "" {
			where = ini.ID
		}
		problems = append(problems, validateInitiative(where, ini, requireCapabilities)...)
		if seenInitiative[ini.ID] {
			problems = append(problems, fmt.Sprintf("%s: duplicate initiative id", where))
		}
		seenInitiative[ini.ID] = true

		seenCap := map[string]bool{}
		for _, cap := range ini.Capabilities {
			problems = append(problems, validateCapability(cap)...)
			if seenCap[cap.ID] {
				problems = append(problems, fmt.Sprintf("%s: duplicate capability id within %s", cap.ID, where))
			}
			seenCap[cap.ID] = true

			seenDel := map[string]bool{}
			for _, del := range cap.Deliverables {
				problems = append(problems, validateDeliverable(del)...)
				if seenDel[del.ID] {
					problems = append(problems, fmt.Sprintf("%s: duplicate deliverable id within %s", del.ID, cap.ID))
				}
				seenDel[del.ID] = true
			}
		}
	}

	if len(h.Initiatives) == 0 {
		problems = append(problems, "hierarchy has no initiatives")
	}
	if len(problems) > 0 {
		return planErrorf(ErrSchemaInvalid, "%s", strings.Join(problems, "; "))
	}
	return nil
}

func validateInitiative(where string, ini Initiative, requireCapabilities bool) []string {
	var problems []string
	if !initiativeIDRe.MatchString(ini.ID) {
		problems = append(problems, fmt.Sprintf("%s: id %q does not match initiative-<n>", where, ini.ID))
	}
	if ini.Title == "" {
		problems = append(problems, where+": missing title")
	}
	if ini.Objective == "" {
		problems = append(problems, where+": missing objective")
	}
	if len(ini.SuccessMetrics) == 0 {
		problems = append(problems, where+": no success metrics")
	}
	if ini.Priority < 1 || ini.Priority > 5 {
		problems = append(problems, fmt.Sprintf("%s: priority %d outside 1-5", where, ini.Priority))
	}
	if requireCapabilities && len(ini.Capabilities) == 0 {
		problems = append(problems, where+": no capabilities")
	}
	return problems
}

func validateCapability(cap Capability) []string {
	var problems []string
	where := cap.ID
	if where == "" {
		where = "capability " + cap.Title
	}
	if !capabilityIDRe.MatchString(cap.ID) {
		problems = append(problems, fmt.Sprintf("%s: id %q does not match capability-<n>-<m>", where, cap.ID))
	}
	if cap.Title == "" {
		problems = append(problems, where+": missing title")
	}
	if cap.Priority < 1 || cap.Priority > 5 {
		problems = append(problems, fmt.Sprintf("%s: priority %d outside 1-5", where, cap.Priority))
	}
	switch cap.Complexity {
	case ComplexitySmall, ComplexityMedium, ComplexityLarge:
	default:
		problems = append(problems, fmt.Sprintf("%s: complexity %q not one of small/medium/large", where, cap.Complexity))
	}
	if cap.EstimatedHours < 0 || cap.EstimatedHours > 40 {
		problems = append(problems, fmt.Sprintf("%s: estimated hours %d outside 0-40", where, cap.EstimatedHours))
	}
	if cap.ExpandsToDeliverables && len(cap.Deliverables) == 0 {
		problems = append(problems, where+": expands_to_deliverables set but no deliverables")
	}
	if !cap.ExpandsToDeliverables && len(cap.Deliverables) > 0 {
		problems = append(problems, where+": deliverables present without expands_to_deliverables")
	}
	return problems
}

func validateDeliverable(del Deliverable) []string {
	var problems []string
	where := del.ID
	if where == "" {
		where = "deliverable " + del.Title
	}
	if !deliverableIDRe.MatchString(del.ID) {
		problems = append(problems, fmt.Sprintf("%s: id %q does not match deliverable-<n>-<m>-<k>", where, del.ID))
	}
	if del.Title == "" {
		problems = append(problems, where+": missing title")
	}
	if len(del.CompletionCriteria) == 0 {
		problems = append(problems, where+": no completion criteria")
	}
	return problems
}
