// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

// Kind selects one of the resolver's three mappings.
type Kind string

const (
	KindInitiative  Kind = "initiative"
	KindCapability  Kind = "capability"
	KindDeliverable Kind = "deliverable"
)

// Resolver maps symbolic entity ids to the issue handles GitHub assigned
// when each entity was created. Mappings are append-only and grow in
// creation order; an absent entry means "not yet materialized" and callers
// must skip, not fail. Not safe for concurrent use; the materializer is
// the single writer for the duration of a run.
type Resolver struct {
	initiatives  map[string]ItemHandle
	capabilities map[string]ItemHandle
	deliverables map[string]ItemHandle
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		initiatives:  make(map[string]ItemHandle),
		capabilities: make(map[string]ItemHandle),
		deliverables: make(map[string]ItemHandle),
	}
}

// Register records the handle assigned to a symbolic id. Later
// registrations for the same id overwrite; the materializer never does
// this within a run.
func (r *Resolver) Register(kind Kind, symbolicID string, handle ItemHandle) {
	r.byKind(kind)[symbolicID] = handle
}

// Lookup returns the handle for a symbolic id, with ok=false when the
// entity has not been materialized.
func (r *Resolver) Lookup(kind Kind, symbolicID string) (ItemHandle, bool) {
	h, ok := r.byKind(kind)[symbolicID]
	return h, ok
}

// Len returns the number of registered handles for a kind.
func (r *Resolver) Len(kind Kind) int {
	return len(r.byKind(kind))
}

func (r *Resolver) byKind(kind Kind) map[string]ItemHandle {
	switch kind {
	case KindInitiative:
		return r.initiatives
	case KindCapability:
		return r.capabilities
	default:
		return r.deliverables
	}
}
