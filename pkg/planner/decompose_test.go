// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// fakeGenerator scripts generation responses by call index.
type fakeGenerator struct {
	calls int
	fn    func(call int, prompt string) (GenerateResult, error)
}

func (g *fakeGenerator) Generate(prompt string) (GenerateResult, error) {
	call := g.calls
	g.calls++
	return g.fn(call, prompt)
}

func fenced(yaml string) string {
	return "Here is the plan.\n```yaml\n" + yaml + "```\n"
}

const singlePassYAML = `initiatives:
  - id: initiative-1
    title: Storage
    description: durable writes
    objective: survive restarts
    success_metrics: [no data loss]
    priority: 1
    capabilities:
      - id: capability-1-1
        title: Write-ahead log
        priority: 2
        complexity: small
        estimated_hours: 3
        expands_to_deliverables: true
        deliverables:
          - id: deliverable-1-1-1
            title: Segment writer
            completion_criteria: [rotates at 64MB]
`

// summariesYAML returns a phase-1 response with n initiative summaries
// titled One, Two, ...
func summariesYAML(n int) string {
	titles := []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"}
	out := "initiatives:\n"
	for i := 1; i <= n; i++ {
		out += fmt.Sprintf(`  - id: initiative-%d
    title: %s
    description: d
    objective: o
    success_metrics: [m]
    priority: %d
`, i, titles[i-1], 1+(i-1)%5)
	}
	return out
}

// capabilitiesYAML returns a phase-2 response for initiative n.
func capabilitiesYAML(n int) string {
	return fmt.Sprintf(`capabilities:
  - id: capability-%d-1
    title: Cap %d
    priority: 2
    complexity: medium
    estimated_hours: 5
`, n, n)
}

func newTestPlanner(t *testing.T, gen Generator) *Planner {
	t.Helper()
	return New(Config{ScratchDir: t.TempDir(), PauseMS: 1}, gen, nil)
}

func scratchGlob(t *testing.T, p *Planner, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(p.cfg.ScratchDir, pattern))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestDecomposeSinglePass(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{fn: func(int, string) (GenerateResult, error) {
		return GenerateResult{Text: fenced(singlePassYAML)}, nil
	}}
	p := newTestPlanner(t, gen)

	h, err := p.DecomposeSinglePass(Document{Title: "Storage", RawText: "# Storage"})
	if err != nil {
		t.Fatalf("DecomposeSinglePass() error: %v", err)
	}
	if len(h.Initiatives) != 1 || h.CapabilityCount() != 1 || h.DeliverableCount() != 1 {
		t.Errorf("hierarchy shape = (%d, %d, %d), want (1, 1, 1)",
			len(h.Initiatives), h.CapabilityCount(), h.DeliverableCount())
	}
}

func TestDecomposeSinglePass_Truncated(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{fn: func(int, string) (GenerateResult, error) {
		return GenerateResult{Text: fenced(singlePassYAML), Truncated: true, OutputTokens: 4096}, nil
	}}
	p := newTestPlanner(t, gen)

	_, err := p.DecomposeSinglePass(Document{RawText: "doc"})
	if !errors.Is(err, ErrGenerationTruncated) {
		t.Fatalf("err = %v, want ErrGenerationTruncated", err)
	}
}

func TestDecomposeSinglePass_Malformed(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{fn: func(int, string) (GenerateResult, error) {
		return GenerateResult{Text: "no fenced block here"}, nil
	}}
	p := newTestPlanner(t, gen)

	_, err := p.DecomposeSinglePass(Document{RawText: "doc"})
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("err = %v, want ErrMalformedOutput", err)
	}
}

func TestDecomposeSinglePass_SchemaInvalid(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{fn: func(int, string) (GenerateResult, error) {
		return GenerateResult{Text: fenced("initiatives:\n  - id: initiative-1\n    title: T\n    priority: 9\n")}, nil
	}}
	p := newTestPlanner(t, gen)

	_, err := p.DecomposeSinglePass(Document{RawText: "doc"})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("err = %v, want ErrSchemaInvalid", err)
	}
}

func TestDecomposeStaged_AllSucceed(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{fn: func(call int, prompt string) (GenerateResult, error) {
		if call == 0 {
			return GenerateResult{Text: fenced(summariesYAML(3))}, nil
		}
		return GenerateResult{Text: fenced(capabilitiesYAML(call))}, nil
	}}
	p := newTestPlanner(t, gen)

	h, report, err := p.DecomposeStaged(Document{Title: "Doc", RawText: "# Doc"})
	if err != nil {
		t.Fatalf("DecomposeStaged() error: %v", err)
	}
	if len(h.Initiatives) != 3 || h.CapabilityCount() != 3 {
		t.Errorf("hierarchy shape = (%d, %d), want (3, 3)", len(h.Initiatives), h.CapabilityCount())
	}
	if len(report.Failures) != 0 {
		t.Errorf("Failures = %v, want none", report.Failures)
	}
	if snaps := scratchGlob(t, p, "decompose-*.json"); len(snaps) != 0 {
		t.Errorf("snapshot written on full success: %v", snaps)
	}
}

func TestDecomposeStaged_PartialFailure(t *testing.T) {
	t.Parallel()
	// 5 initiatives; capability generation for Two and Four fails.
	gen := &fakeGenerator{fn: func(call int, prompt string) (GenerateResult, error) {
		switch call {
		case 0:
			return GenerateResult{Text: fenced(summariesYAML(5))}, nil
		case 2, 4: // initiative-2 and initiative-4
			return GenerateResult{}, errors.New("backend exploded")
		default:
			return GenerateResult{Text: fenced(capabilitiesYAML(call))}, nil
		}
	}}
	p := newTestPlanner(t, gen)

	h, report, err := p.DecomposeStaged(Document{Title: "Doc", RawText: "# Doc", Path: "docs/spec.md"})
	if err != nil {
		t.Fatalf("DecomposeStaged() error: %v", err)
	}
	if len(h.Initiatives) != 3 {
		t.Fatalf("got %d initiatives, want 3", len(h.Initiatives))
	}
	for _, ini := range h.Initiatives {
		if ini.ID == "initiative-2" || ini.ID == "initiative-4" {
			t.Errorf("failed initiative %s present in hierarchy", ini.ID)
		}
	}
	if report.Succeeded != 3 || len(report.Failures) != 2 {
		t.Fatalf("report = %+v, want 3 succeeded / 2 failed", report)
	}

	// The partial snapshot lists the failures with titles and errors.
	data, readErr := os.ReadFile(report.SnapshotPath)
	if readErr != nil {
		t.Fatalf("reading snapshot: %v", readErr)
	}
	var snap struct {
		SourceDocument string              `json:"source_document"`
		RunID          string              `json:"run_id"`
		Hierarchy      *Hierarchy          `json:"hierarchy"`
		Failures       []InitiativeFailure `json:"failures"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	if snap.SourceDocument != "docs/spec.md" {
		t.Errorf("SourceDocument = %q", snap.SourceDocument)
	}
	if snap.RunID == "" {
		t.Error("snapshot has no run id")
	}
	if len(snap.Hierarchy.Initiatives) != 3 {
		t.Errorf("snapshot hierarchy has %d initiatives, want 3", len(snap.Hierarchy.Initiatives))
	}
	wantTitles := map[string]string{"initiative-2": "Two", "initiative-4": "Four"}
	for _, f := range snap.Failures {
		if wantTitles[f.InitiativeID] != f.InitiativeTitle {
			t.Errorf("failure %s has title %q", f.InitiativeID, f.InitiativeTitle)
		}
		if f.Error == "" {
			t.Errorf("failure %s has no error message", f.InitiativeID)
		}
	}
}

func TestDecomposeStaged_AllFail(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{fn: func(call int, prompt string) (GenerateResult, error) {
		if call == 0 {
			return GenerateResult{Text: fenced(summariesYAML(2))}, nil
		}
		return GenerateResult{}, errors.New("backend exploded")
	}}
	p := newTestPlanner(t, gen)

	_, report, err := p.DecomposeStaged(Document{RawText: "doc"})
	if !errors.Is(err, ErrAllInitiativesFailed) {
		t.Fatalf("err = %v, want ErrAllInitiativesFailed", err)
	}
	if report == nil || report.SnapshotPath == "" {
		t.Fatal("no all-failed snapshot recorded")
	}
	data, readErr := os.ReadFile(report.SnapshotPath)
	if readErr != nil {
		t.Fatalf("reading snapshot: %v", readErr)
	}
	var snap struct {
		Overview []Initiative        `json:"initiative_overview"`
		Failures []InitiativeFailure `json:"failures"`
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	if len(snap.Overview) != 2 || len(snap.Failures) != 2 {
		t.Errorf("snapshot shape = (%d overview, %d failures), want (2, 2)",
			len(snap.Overview), len(snap.Failures))
	}
}

func TestDecomposeStaged_Phase1FailureIsFatal(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{fn: func(int, string) (GenerateResult, error) {
		return GenerateResult{Truncated: true}, nil
	}}
	p := newTestPlanner(t, gen)

	_, _, err := p.DecomposeStaged(Document{RawText: "doc"})
	if !errors.Is(err, ErrGenerationTruncated) {
		t.Fatalf("err = %v, want ErrGenerationTruncated", err)
	}
	if gen.calls != 1 {
		t.Errorf("phase 2 ran after phase 1 failure (%d calls)", gen.calls)
	}
}

// Observer wiring: staged failures surface through InitiativeFailed.
type recordingObserver struct {
	NopObserver
	failed []string
}

func (o *recordingObserver) InitiativeFailed(id, title string, cause error) {
	o.failed = append(o.failed, id)
}

func TestDecomposeStaged_ObserverSeesFailures(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{fn: func(call int, prompt string) (GenerateResult, error) {
		if call == 0 {
			return GenerateResult{Text: fenced(summariesYAML(2))}, nil
		}
		if call == 1 {
			return GenerateResult{}, errors.New("boom")
		}
		return GenerateResult{Text: fenced(capabilitiesYAML(call))}, nil
	}}
	obs := &recordingObserver{}
	p := New(Config{ScratchDir: t.TempDir(), PauseMS: 1}, gen, obs)

	if _, _, err := p.DecomposeStaged(Document{RawText: "doc"}); err != nil {
		t.Fatalf("DecomposeStaged() error: %v", err)
	}
	if len(obs.failed) != 1 || obs.failed[0] != "initiative-1" {
		t.Errorf("observer failures = %v, want [initiative-1]", obs.failed)
	}
}
