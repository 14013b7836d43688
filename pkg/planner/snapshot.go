// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// InitiativeFailure records one initiative whose capability generation
// failed during staged phase 2.
type InitiativeFailure struct {
	InitiativeID    string `json:"initiative_id"`
	InitiativeTitle string `json:"initiative_title"`
	Error           string `json:"error"`
}

// allFailedSnapshot is written when staged phase 2 produces zero usable
// initiatives, so the phase-1 overview and the failures survive for
// offline inspection.
type allFailedSnapshot struct {
	Timestamp      string              `json:"timestamp"`
	SourceDocument string              `json:"source_document"`
	RunID          string              `json:"run_id"`
	Overview       []Initiative        `json:"initiative_overview"`
	Failures       []InitiativeFailure `json:"failures"`
}

// partialSnapshot is written when some but not all initiatives succeeded,
// so a caller can resume or manually complete the missing ones.
type partialSnapshot struct {
	Timestamp      string              `json:"timestamp"`
	SourceDocument string              `json:"source_document"`
	RunID          string              `json:"run_id"`
	Hierarchy      *Hierarchy          `json:"hierarchy"`
	Failures       []InitiativeFailure `json:"failures"`
}

// writeAllFailedSnapshot persists the all-failed diagnostic and returns
// its path.
func writeAllFailedSnapshot(scratchDir string, doc Document, overview []Initiative, failures []InitiativeFailure) (string, error) {
	snap := allFailedSnapshot{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		SourceDocument: doc.Path,
		RunID:          uuid.NewString(),
		Overview:       overview,
		Failures:       failures,
	}
	return writeSnapshot(scratchDir, "decompose-failed", &snap)
}

// writePartialSnapshot persists the partial-success diagnostic and
// returns its path.
func writePartialSnapshot(scratchDir string, doc Document, h *Hierarchy, failures []InitiativeFailure) (string, error) {
	snap := partialSnapshot{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		SourceDocument: doc.Path,
		RunID:          uuid.NewString(),
		Hierarchy:      h,
		Failures:       failures,
	}
	return writeSnapshot(scratchDir, "decompose-partial", &snap)
}

// writeSnapshot marshals v to JSON and writes it under scratchDir with a
// timestamped name.
func writeSnapshot(scratchDir, kind string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling %s snapshot: %w", kind, err)
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}
	path := filepath.Join(scratchDir, fmt.Sprintf("%s-%s.json", kind, time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s snapshot: %w", kind, err)
	}
	logf("wrote %s snapshot to %s", kind, path)
	return path, nil
}
