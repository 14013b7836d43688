// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

// ItemHandle identifies a tracked item on the external system. For the
// GitHub implementation Number is the issue number and URL the issue URL.
type ItemHandle struct {
	Number int
	URL    string
}

// Tracker is the issue-tracker client consumed by the materializer and
// the dependency linker. Every method is an independent remote call that
// can fail on its own; failure policy (fatal vs best-effort) belongs to
// the caller, not the client.
type Tracker interface {
	// CreateItem creates a tracked item and returns its handle.
	CreateItem(title, body string, labels []string) (ItemHandle, error)

	// UpdateItemBody replaces an item's body.
	UpdateItemBody(h ItemHandle, body string) error

	// AddLabel attaches an existing label to an item.
	AddLabel(h ItemHandle, label string) error

	// EnsureLabel creates a label on the repository if absent. An
	// "already exists" response is success.
	EnsureLabel(name, color, description string) error

	// CreateParentChildLink establishes the tracker's native hierarchical
	// relationship between two items.
	CreateParentChildLink(parent, child ItemHandle) error

	// CreateBlockingLink records that blocker blocks blocked, using the
	// tracker's native dependency relationship.
	CreateBlockingLink(blocker, blocked ItemHandle) error

	// AddComment appends a comment to an item.
	AddComment(h ItemHandle, text string) error
}

// CreatedItem records one item produced during materialization, with the
// body it was created with (the fallback protocol needs it to prepend the
// parent reference).
type CreatedItem struct {
	Kind       Kind
	SymbolicID string
	Title      string
	Handle     ItemHandle
	Body       string
}
