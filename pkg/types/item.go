// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the handbook-sync pipeline.
package types

// Item is one entry of a remote handbook collection. Items are immutable
// once fetched.
type Item struct {
	ID int64 `json:"id" yaml:"id"`

	// Parent is the ID of the parent item; 0 marks a top-level item.
	Parent int64 `json:"parent" yaml:"parent"`

	// Link is the absolute public URL of the item.
	Link string `json:"link" yaml:"link"`

	Slug string `json:"slug" yaml:"slug"`

	// Title is the rendered (HTML) title.
	Title string `json:"title" yaml:"title"`

	// Content is the rendered HTML body.
	Content string `json:"content" yaml:"content"`
}

// IsRoot reports whether the item has no parent.
func (i Item) IsRoot() bool {
	return i.Parent == 0
}

// Outcome is the result of materializing one document on disk.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeSkipped Outcome = "skipped"
)
