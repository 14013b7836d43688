// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match with errors.Is; the kind determines the
// recovery path (switch to staged mode, inspect a snapshot, abort).
var (
	// ErrGenerationTruncated means the model stopped because it hit its
	// output-size limit. The remedy is staged mode or a larger limit.
	ErrGenerationTruncated = errors.New("generation truncated by output limit")

	// ErrMalformedOutput means the model's response carried no parseable
	// hierarchy (no YAML block, or the block failed to unmarshal).
	ErrMalformedOutput = errors.New("generation output not parseable")

	// ErrSchemaInvalid means the parsed hierarchy failed structural
	// validation (missing fields, bad enums, empty required lists).
	ErrSchemaInvalid = errors.New("generated hierarchy failed validation")

	// ErrAllInitiativesFailed means staged phase 2 produced zero usable
	// initiatives. A diagnostic snapshot is written before this is returned.
	ErrAllInitiativesFailed = errors.New("no initiative survived staged decomposition")

	// ErrMaterializationFatal means an Initiative-level issue failed to
	// create. Nothing can anchor beneath it, so the run aborts.
	ErrMaterializationFatal = errors.New("initiative issue creation failed")
)

// PlanError wraps an error kind with call-site detail.
type PlanError struct {
	Kind error
	Msg  string
}

func (e *PlanError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *PlanError) Unwrap() error { return e.Kind }

func planErrorf(kind error, format string, args ...any) error {
	return &PlanError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
