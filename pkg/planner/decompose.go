// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Planner drives decomposition of a requirements document into a
// Hierarchy. It owns partial-failure bookkeeping for staged mode and the
// diagnostic snapshots written on failure.
type Planner struct {
	cfg Config
	gen Generator
	obs Observer
}

// New returns a Planner. A nil observer is replaced with NopObserver.
func New(cfg Config, gen Generator, obs Observer) *Planner {
	cfg.applyDefaults()
	if obs == nil {
		obs = NopObserver{}
	}
	return &Planner{cfg: cfg, gen: gen, obs: obs}
}

// StagedReport describes the outcome of a staged decomposition beyond
// the hierarchy itself.
type StagedReport struct {
	Succeeded    int
	Failures     []InitiativeFailure
	SnapshotPath string
}

// DecomposeSinglePass issues one generation request covering the full
// hierarchy. Truncation is reported as ErrGenerationTruncated so the
// caller can suggest staged mode; it is never coerced into a partial
// hierarchy.
func (p *Planner) DecomposeSinglePass(doc Document) (*Hierarchy, error) {
	setPhase("decompose")
	defer clearPhase()

	prompt, err := p.buildDocumentPrompt(doc, p.cfg.SinglePassPrompt, defaultSinglePassPrompt)
	if err != nil {
		return nil, fmt.Errorf("single-pass prompt: %w", err)
	}

	var h Hierarchy
	if err := p.generateInto(prompt, "single-pass", &h); err != nil {
		return nil, err
	}
	if err := h.Validate(true); err != nil {
		return nil, err
	}
	logf("single-pass: %d initiative(s), %d capability(ies), %d deliverable(s)",
		len(h.Initiatives), h.CapabilityCount(), h.DeliverableCount())
	return &h, nil
}

// DecomposeStaged runs the two-phase decomposition: initiative summaries
// first, then per-initiative capabilities. Phase-2 failures are absorbed
// per initiative; the fold produces (successes, failures) and the run
// only fails outright when phase 1 fails or every initiative failed.
func (p *Planner) DecomposeStaged(doc Document) (*Hierarchy, *StagedReport, error) {
	setPhase("decompose")
	defer clearPhase()

	summaries, err := p.generateInitiativeSummaries(doc)
	if err != nil {
		return nil, nil, err
	}
	logf("staged: phase 1 produced %d initiative summar(ies)", len(summaries))

	allIDs := make([]string, 0, len(summaries))
	for _, ini := range summaries {
		allIDs = append(allIDs, ini.ID)
	}

	// Continue-on-error fold over the summaries: a single initiative's
	// failure must never abort the run.
	var successes []Initiative
	var failures []InitiativeFailure
	for _, summary := range summaries {
		caps, capErr := p.generateCapabilities(doc, summary, allIDs)
		if capErr != nil {
			p.obs.InitiativeFailed(summary.ID, summary.Title, capErr)
			failures = append(failures, InitiativeFailure{
				InitiativeID:    summary.ID,
				InitiativeTitle: summary.Title,
				Error:           capErr.Error(),
			})
			continue
		}
		full := summary
		full.Capabilities = caps
		successes = append(successes, full)
	}

	report := &StagedReport{Succeeded: len(successes), Failures: failures}

	if len(successes) == 0 {
		path, snapErr := writeAllFailedSnapshot(p.cfg.ScratchDir, doc, summaries, failures)
		if snapErr != nil {
			logf("staged: all-failed snapshot warning: %v", snapErr)
		}
		report.SnapshotPath = path
		return nil, report, planErrorf(ErrAllInitiativesFailed, "%d initiative(s) failed", len(failures))
	}

	h := &Hierarchy{Initiatives: successes}
	if len(failures) > 0 {
		path, snapErr := writePartialSnapshot(p.cfg.ScratchDir, doc, h, failures)
		if snapErr != nil {
			logf("staged: partial snapshot warning: %v", snapErr)
		}
		report.SnapshotPath = path
	}
	logf("staged: %d succeeded, %d failed", len(successes), len(failures))
	return h, report, nil
}

// generateInitiativeSummaries runs staged phase 1. Any failure here fails
// the whole run: nothing downstream exists yet.
func (p *Planner) generateInitiativeSummaries(doc Document) ([]Initiative, error) {
	prompt, err := p.buildDocumentPrompt(doc, p.cfg.InitiativesPrompt, defaultInitiativesPrompt)
	if err != nil {
		return nil, fmt.Errorf("initiatives prompt: %w", err)
	}

	var h Hierarchy
	if err := p.generateInto(prompt, "initiatives", &h); err != nil {
		return nil, err
	}
	if err := h.Validate(false); err != nil {
		return nil, err
	}
	return h.Initiatives, nil
}

// BuildPrompt returns the prompt a decomposition would send to the model,
// without invoking it: the phase-1 initiatives prompt for staged mode,
// the full-hierarchy prompt otherwise. Useful for inspection and for
// tuning prompt overrides.
func (p *Planner) BuildPrompt(doc Document, staged bool) (string, error) {
	if staged {
		return p.buildDocumentPrompt(doc, p.cfg.InitiativesPrompt, defaultInitiativesPrompt)
	}
	return p.buildDocumentPrompt(doc, p.cfg.SinglePassPrompt, defaultSinglePassPrompt)
}

// buildDocumentPrompt renders a document-level prompt from an override or
// the embedded default.
func (p *Planner) buildDocumentPrompt(doc Document, override, fallback string) (string, error) {
	def, err := parsePromptDef(orDefault(override, fallback))
	if err != nil {
		return "", err
	}
	data := documentData(doc)
	data["max_initiatives"] = fmt.Sprintf("%d", p.cfg.MaxInitiatives)
	return renderPrompt(def, data), nil
}

// capabilityList is the wire shape of a phase-2 response.
type capabilityList struct {
	Capabilities []Capability `yaml:"capabilities"`
}

// generateCapabilities runs one phase-2 request for a single initiative.
// The prompt carries the full document, this initiative's summary, and
// every initiative id so dependencies may cross initiatives.
func (p *Planner) generateCapabilities(doc Document, summary Initiative, allIDs []string) ([]Capability, error) {
	def, err := parsePromptDef(orDefault(p.cfg.CapabilitiesPrompt, defaultCapabilitiesPrompt))
	if err != nil {
		return nil, fmt.Errorf("capabilities prompt: %w", err)
	}

	summaryYAML, err := yaml.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshaling initiative summary: %w", err)
	}

	data := documentData(doc)
	data["initiative_id"] = summary.ID
	data["initiative_title"] = summary.Title
	data["initiative_n"] = strings.TrimPrefix(summary.ID, "initiative-")
	data["initiative_objective"] = summary.Objective
	data["initiative_summary"] = string(summaryYAML)
	data["all_initiative_ids"] = strings.Join(allIDs, "\n")
	prompt := renderPrompt(def, data)

	var list capabilityList
	if err := p.generateInto(prompt, summary.ID, &list); err != nil {
		return nil, err
	}
	if len(list.Capabilities) == 0 {
		return nil, planErrorf(ErrSchemaInvalid, "%s: no capabilities generated", summary.ID)
	}

	// Validate the expanded initiative as a one-initiative hierarchy so the
	// capability and deliverable rules apply unchanged.
	candidate := summary
	candidate.Capabilities = list.Capabilities
	probe := Hierarchy{Initiatives: []Initiative{candidate}}
	if err := probe.Validate(true); err != nil {
		return nil, err
	}
	for i := range list.Capabilities {
		if list.Capabilities[i].ParentInitiativeID == "" {
			list.Capabilities[i].ParentInitiativeID = summary.ID
		}
	}
	return list.Capabilities, nil
}

// generateInto runs one generation request, saves history artifacts, and
// unmarshals the extracted YAML block into out. Truncation maps to
// ErrGenerationTruncated, unparseable output to ErrMalformedOutput.
func (p *Planner) generateInto(prompt, label string, out any) error {
	ts := time.Now().Format("2006-01-02-15-04-05")
	p.saveHistory(ts, label+"-prompt.md", []byte(prompt))

	res, err := p.gen.Generate(prompt)
	if err != nil {
		return fmt.Errorf("generation request %s: %w", label, err)
	}
	p.saveHistory(ts, label+"-output.md", []byte(res.Text))

	if res.Truncated {
		return planErrorf(ErrGenerationTruncated, "%s stopped at %d output tokens", label, res.OutputTokens)
	}
	block, err := extractYAMLBlock(res.Text)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal([]byte(block), out); err != nil {
		return planErrorf(ErrMalformedOutput, "%s: %v", label, err)
	}
	return nil
}

// saveHistory writes a generation artifact under {scratch}/history.
// Best-effort: history is diagnostics, never a failure source.
func (p *Planner) saveHistory(ts, name string, data []byte) {
	dir := filepath.Join(p.cfg.ScratchDir, "history")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logf("saveHistory: %v", err)
		return
	}
	path := filepath.Join(dir, ts+"-"+name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logf("saveHistory: %v", err)
	}
}

// orDefault returns val if non-empty, otherwise fallback.
func orDefault(val, fallback string) string {
	if val == "" {
		return fallback
	}
	return val
}
