// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

// Observer receives the core's observable events. The core never writes
// progress output itself; presentation layers (the CLI, tests) inject an
// observer instead.
type Observer interface {
	// ItemCreated fires after an item is created and registered.
	ItemCreated(item CreatedItem)

	// RelationshipFellBack fires when a native parent-child link failed
	// and the label/body fallback was applied.
	RelationshipFellBack(parent, child ItemHandle, cause error)

	// InitiativeFailed fires when staged phase 2 could not generate
	// capabilities for one initiative. The run continues.
	InitiativeFailed(initiativeID, title string, cause error)

	// DependencyLinked fires per resolved dependency edge; native reports
	// whether the tracker accepted the blocking relationship.
	DependencyLinked(blocker, blocked ItemHandle, native bool)
}

// LogObserver logs every event through logf. It is the default observer
// wired by the CLI.
type LogObserver struct{}

func (LogObserver) ItemCreated(item CreatedItem) {
	logf("created %s %s as #%d %q", item.Kind, item.SymbolicID, item.Handle.Number, item.Title)
}

func (LogObserver) RelationshipFellBack(parent, child ItemHandle, cause error) {
	logf("native parent link #%d -> #%d failed, used label fallback: %v", parent.Number, child.Number, cause)
}

func (LogObserver) InitiativeFailed(initiativeID, title string, cause error) {
	logf("initiative %s %q failed: %v", initiativeID, title, cause)
}

func (LogObserver) DependencyLinked(blocker, blocked ItemHandle, native bool) {
	logf("dependency #%d blocks #%d (native=%v)", blocker.Number, blocked.Number, native)
}

// NopObserver discards all events. Used as the default when callers pass
// a nil observer.
type NopObserver struct{}

func (NopObserver) ItemCreated(CreatedItem)                             {}
func (NopObserver) RelationshipFellBack(ItemHandle, ItemHandle, error)  {}
func (NopObserver) InitiativeFailed(string, string, error)              {}
func (NopObserver) DependencyLinked(ItemHandle, ItemHandle, bool)       {}
