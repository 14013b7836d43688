// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"fmt"
	"strings"
	"time"
)

// Linker finalizes cross-entity dependency edges after all items exist.
// Everything here is best-effort: an edge that cannot be resolved is
// dropped silently, and a failed blocking link still leaves a textual
// comment on the dependent item.
type Linker struct {
	tracker  Tracker
	resolver *Resolver
	obs      Observer
	pause    time.Duration
}

// NewLinker wires a linker. A nil observer is replaced with NopObserver.
func NewLinker(cfg Config, tr Tracker, r *Resolver, obs Observer) *Linker {
	cfg.applyDefaults()
	if obs == nil {
		obs = NopObserver{}
	}
	return &Linker{tracker: tr, resolver: r, obs: obs, pause: cfg.Pause()}
}

// LinkDependencies walks every capability and deliverable with declared
// dependencies and attempts a native blocking link per resolvable edge
// (dependency blocks dependent). One summary comment per dependent item
// is posted after all of its edges were attempted; its wording tells
// readers whether usable relationship edges exist or only the text hint.
func (l *Linker) LinkDependencies(h *Hierarchy) {
	setPhase("link")
	defer clearPhase()

	for _, ini := range h.Initiatives {
		for _, cap := range ini.Capabilities {
			l.linkItem(KindCapability, cap.ID, cap.Dependencies)
			for _, del := range cap.Deliverables {
				l.linkItem(KindDeliverable, del.ID, del.Dependencies)
			}
		}
	}
}

// linkItem resolves and links one item's dependency list. Edges whose
// dependent or dependency is absent from the resolver referenced
// something never materialized and are dropped.
func (l *Linker) linkItem(kind Kind, symbolicID string, deps []string) {
	if len(deps) == 0 {
		return
	}
	dependent, ok := l.resolver.Lookup(kind, symbolicID)
	if !ok {
		logf("%s %s not materialized, dropping %d edge(s)", kind, symbolicID, len(deps))
		return
	}

	var resolved []ItemHandle
	anyNative := false
	for _, depID := range deps {
		blocker, ok := l.resolver.Lookup(kind, depID)
		if !ok {
			logf("%s: dependency %s not materialized, dropping edge", symbolicID, depID)
			continue
		}
		resolved = append(resolved, blocker)

		err := l.tracker.CreateBlockingLink(blocker, dependent)
		l.pauseBetweenCalls()
		if err != nil {
			logf("%s: blocking link #%d -> #%d failed: %v", symbolicID, blocker.Number, dependent.Number, err)
		} else {
			anyNative = true
		}
		l.obs.DependencyLinked(blocker, dependent, err == nil)
	}

	if len(resolved) == 0 {
		return
	}
	if err := l.tracker.AddComment(dependent, dependencyComment(resolved, anyNative)); err != nil {
		logf("%s: dependency comment on #%d failed: %v", symbolicID, dependent.Number, err)
	}
	l.pauseBetweenCalls()
}

// dependencyComment renders the per-item dependency summary. The wording
// distinguishes a plain text hint from edges that were also recorded as
// blocking relationships.
func dependencyComment(blockers []ItemHandle, anyNative bool) string {
	refs := make([]string, 0, len(blockers))
	for _, b := range blockers {
		refs = append(refs, fmt.Sprintf("#%d", b.Number))
	}
	if anyNative {
		return fmt.Sprintf("Depends on %s (also linked as blocking relationships).", strings.Join(refs, ", "))
	}
	return fmt.Sprintf("Depends on %s.", strings.Join(refs, ", "))
}

func (l *Linker) pauseBetweenCalls() {
	if l.pause > 0 {
		time.Sleep(l.pause)
	}
}
