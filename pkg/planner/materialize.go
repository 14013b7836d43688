// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"time"
)

// Materializer creates tracked items for a Hierarchy in strict dependency
// order: every parent's handle is registered in the resolver before any of
// its children are created. All tracker calls are sequential, and every
// call is followed by a fixed pause to respect GitHub's rate limiting.
type Materializer struct {
	tracker    Tracker
	resolver   *Resolver
	obs        Observer
	pause      time.Duration
	labelColor string
}

// NewMaterializer wires a materializer. A nil observer is replaced with
// NopObserver.
func NewMaterializer(cfg Config, tr Tracker, r *Resolver, obs Observer) *Materializer {
	cfg.applyDefaults()
	if obs == nil {
		obs = NopObserver{}
	}
	return &Materializer{
		tracker:    tr,
		resolver:   r,
		obs:        obs,
		pause:      cfg.Pause(),
		labelColor: cfg.ParentLabelColor,
	}
}

// Materialize executes the three creation passes: initiatives, then
// capabilities, then deliverables. An initiative creation failure is
// fatal (nothing can anchor beneath it); every relationship failure
// degrades to the label/body fallback and the run continues.
func (m *Materializer) Materialize(h *Hierarchy) ([]CreatedItem, error) {
	setPhase("materialize")
	defer clearPhase()

	var created []CreatedItem

	// Pass 1: initiatives.
	for _, ini := range h.Initiatives {
		body := renderInitiativeBody(ini)
		handle, err := m.tracker.CreateItem(ini.Title, body, []string{string(KindInitiative)})
		m.pauseBetweenCalls()
		if err != nil {
			return created, planErrorf(ErrMaterializationFatal, "initiative %q: %v", ini.Title, err)
		}
		item := CreatedItem{Kind: KindInitiative, SymbolicID: ini.ID, Title: ini.Title, Handle: handle, Body: body}
		m.resolver.Register(KindInitiative, ini.ID, handle)
		m.obs.ItemCreated(item)
		created = append(created, item)
	}

	// Pass 2: capabilities, in initiative order then declared order.
	for _, ini := range h.Initiatives {
		parent, _ := m.resolver.Lookup(KindInitiative, ini.ID)
		for _, cap := range ini.Capabilities {
			body := renderCapabilityBody(cap)
			labels := append([]string{string(KindCapability)}, cap.Labels...)
			handle, err := m.tracker.CreateItem(cap.Title, body, labels)
			m.pauseBetweenCalls()
			if err != nil {
				logf("capability %s %q: create failed, skipping: %v", cap.ID, cap.Title, err)
				continue
			}
			item := CreatedItem{Kind: KindCapability, SymbolicID: cap.ID, Title: cap.Title, Handle: handle, Body: body}
			m.resolver.Register(KindCapability, cap.ID, handle)
			m.obs.ItemCreated(item)
			created = append(created, item)
			m.linkChild(parent, item)
		}
	}

	// Pass 3: deliverables of expanding capabilities.
	for _, ini := range h.Initiatives {
		for _, cap := range ini.Capabilities {
			if !cap.ExpandsToDeliverables {
				continue
			}
			parent, ok := m.resolver.Lookup(KindCapability, cap.ID)
			if !ok {
				// Capability never materialized; its deliverables have no anchor.
				logf("capability %s absent from resolver, skipping %d deliverable(s)", cap.ID, len(cap.Deliverables))
				continue
			}
			for _, del := range cap.Deliverables {
				body := renderDeliverableBody(del)
				handle, err := m.tracker.CreateItem(del.Title, body, []string{string(KindDeliverable)})
				m.pauseBetweenCalls()
				if err != nil {
					logf("deliverable %s %q: create failed, skipping: %v", del.ID, del.Title, err)
					continue
				}
				item := CreatedItem{Kind: KindDeliverable, SymbolicID: del.ID, Title: del.Title, Handle: handle, Body: body}
				m.resolver.Register(KindDeliverable, del.ID, handle)
				m.obs.ItemCreated(item)
				created = append(created, item)
				m.linkChild(parent, item)
			}
		}
	}

	logf("materialized %d item(s)", len(created))
	return created, nil
}

// linkChild establishes the parent-child relationship for one created
// child. The native link is attempted first; on any failure all three
// fallback steps run unconditionally, each best-effort:
//
//  1. ensure the child-of-<parent> label exists on the repo
//  2. attach that label to the child
//  3. prepend a "Parent: #<n>" reference to the child's body
//
// The child stays discoverable via label and text even when the tracker
// has no native hierarchy or the credentials lack permission for it.
func (m *Materializer) linkChild(parent ItemHandle, child CreatedItem) {
	nativeErr := m.tracker.CreateParentChildLink(parent, child.Handle)
	m.pauseBetweenCalls()
	if nativeErr == nil {
		return
	}

	label := parentLabel(parent)
	if err := m.tracker.EnsureLabel(label, m.labelColor, "Children of issue #"+label[len(parentLabelPrefix):]); err != nil {
		logf("fallback: ensure label %q: %v", label, err)
	}
	m.pauseBetweenCalls()

	if err := m.tracker.AddLabel(child.Handle, label); err != nil {
		logf("fallback: add label %q to #%d: %v", label, child.Handle.Number, err)
	}
	m.pauseBetweenCalls()

	if err := m.tracker.UpdateItemBody(child.Handle, parentReference(parent)+"\n\n"+child.Body); err != nil {
		logf("fallback: update body of #%d: %v", child.Handle.Number, err)
	}
	m.pauseBetweenCalls()

	m.obs.RelationshipFellBack(parent, child.Handle, nativeErr)
}

func (m *Materializer) pauseBetweenCalls() {
	if m.pause > 0 {
		time.Sleep(m.pause)
	}
}
