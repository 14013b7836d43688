// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"fmt"
	"strings"
	"testing"
)

func newTestLinker(tr Tracker, r *Resolver) *Linker {
	return NewLinker(Config{PauseMS: 1}, tr, r, nil)
}

// dependencyHierarchy: capability-1-2 depends on capability-1-1, and
// deliverable-1-2-1 depends on deliverable-1-1-1.
func dependencyHierarchy() *Hierarchy {
	h := testHierarchy(1, 2, 1)
	h.Initiatives[0].Capabilities[1].Dependencies = []string{"capability-1-1"}
	h.Initiatives[0].Capabilities[1].Deliverables[0].Dependencies = []string{"deliverable-1-1-1"}
	return h
}

func TestLinkDependencies_NativeEdges(t *testing.T) {
	t.Parallel()
	tr := newFakeTracker()
	r := NewResolver()
	h := dependencyHierarchy()
	if _, err := newTestMaterializer(tr, r).Materialize(h); err != nil {
		t.Fatal(err)
	}

	newTestLinker(tr, r).LinkDependencies(h)

	if len(tr.blockLinks) != 2 {
		t.Fatalf("blocking links = %d, want 2", len(tr.blockLinks))
	}
	capBlocker, _ := r.Lookup(KindCapability, "capability-1-1")
	capDependent, _ := r.Lookup(KindCapability, "capability-1-2")
	if got := tr.blockLinks[0]; got != [2]int{capBlocker.Number, capDependent.Number} {
		t.Errorf("capability edge = %v, want blocker #%d -> blocked #%d", got, capBlocker.Number, capDependent.Number)
	}

	// One comment per dependent, with the native wording.
	comments := tr.comments[capDependent.Number]
	if len(comments) != 1 {
		t.Fatalf("dependent has %d comments, want 1", len(comments))
	}
	want := fmt.Sprintf("Depends on #%d (also linked as blocking relationships).", capBlocker.Number)
	if comments[0] != want {
		t.Errorf("comment = %q, want %q", comments[0], want)
	}
}

func TestLinkDependencies_CommentOnlyWhenLinksFail(t *testing.T) {
	t.Parallel()
	tr := newFakeTracker()
	r := NewResolver()
	h := dependencyHierarchy()
	if _, err := newTestMaterializer(tr, r).Materialize(h); err != nil {
		t.Fatal(err)
	}
	tr.failBlockLinks = true

	newTestLinker(tr, r).LinkDependencies(h)

	if len(tr.blockLinks) != 0 {
		t.Errorf("blocking links recorded despite failure toggle: %v", tr.blockLinks)
	}
	capDependent, _ := r.Lookup(KindCapability, "capability-1-2")
	comments := tr.comments[capDependent.Number]
	if len(comments) != 1 {
		t.Fatalf("dependent has %d comments, want 1", len(comments))
	}
	if strings.Contains(comments[0], "blocking relationships") {
		t.Errorf("comment %q claims native edges that were never created", comments[0])
	}
	if !strings.HasPrefix(comments[0], "Depends on #") {
		t.Errorf("comment = %q, want plain dependency hint", comments[0])
	}
}

func TestLinkDependencies_DropsUnresolvableEdges(t *testing.T) {
	t.Parallel()
	tr := newFakeTracker()
	r := NewResolver()
	h := dependencyHierarchy()
	// A dependency on a capability that was never materialized.
	h.Initiatives[0].Capabilities[1].Dependencies = append(
		h.Initiatives[0].Capabilities[1].Dependencies, "capability-9-9")
	if _, err := newTestMaterializer(tr, r).Materialize(h); err != nil {
		t.Fatal(err)
	}

	newTestLinker(tr, r).LinkDependencies(h)

	// The resolvable edge survives; the phantom one leaves no trace.
	if len(tr.blockLinks) != 2 {
		t.Errorf("blocking links = %d, want 2", len(tr.blockLinks))
	}
	capDependent, _ := r.Lookup(KindCapability, "capability-1-2")
	if got := tr.comments[capDependent.Number]; len(got) != 1 || strings.Contains(got[0], "capability-9-9") {
		t.Errorf("comment = %v, phantom dependency must not appear", got)
	}
}

func TestLinkDependencies_SkipsUnmaterializedDependent(t *testing.T) {
	t.Parallel()
	tr := newFakeTracker()
	r := NewResolver()
	h := dependencyHierarchy()
	if _, err := newTestMaterializer(tr, r).Materialize(h); err != nil {
		t.Fatal(err)
	}
	// Simulate a dependent that never got an item: remove it from the
	// resolver's view by using a fresh resolver with only the blocker.
	blocker, _ := r.Lookup(KindCapability, "capability-1-1")
	partial := NewResolver()
	partial.Register(KindCapability, "capability-1-1", blocker)

	before := len(tr.blockLinks)
	newTestLinker(tr, partial).LinkDependencies(h)
	if len(tr.blockLinks) != before {
		t.Errorf("edges created for a dependent with no item: %v", tr.blockLinks[before:])
	}
}

func TestLinkDependencies_NoDependenciesNoComments(t *testing.T) {
	t.Parallel()
	tr := newFakeTracker()
	r := NewResolver()
	h := testHierarchy(1, 2, 1)
	if _, err := newTestMaterializer(tr, r).Materialize(h); err != nil {
		t.Fatal(err)
	}

	newTestLinker(tr, r).LinkDependencies(h)

	if len(tr.blockLinks) != 0 {
		t.Errorf("blocking links = %v, want none", tr.blockLinks)
	}
	for n, cs := range tr.comments {
		if len(cs) != 0 {
			t.Errorf("item #%d got comments %v without declared dependencies", n, cs)
		}
	}
}

func TestDependencyComment(t *testing.T) {
	t.Parallel()
	blockers := []ItemHandle{{Number: 4}, {Number: 9}}
	if got := dependencyComment(blockers, true); got != "Depends on #4, #9 (also linked as blocking relationships)." {
		t.Errorf("native comment = %q", got)
	}
	if got := dependencyComment(blockers, false); got != "Depends on #4, #9." {
		t.Errorf("fallback comment = %q", got)
	}
}
