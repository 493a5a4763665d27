// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve maps collection items to relative output paths.
package resolve

import (
	"path"
	"strings"

	"github.com/pdiddy/handbook-sync/pkg/types"
)

// IndexName is the resolved path of an item whose link equals the root path.
const IndexName = "index"

// Entry pairs an item with its resolved path (slash-separated, no extension).
type Entry struct {
	Item types.Item
	Path string
}

// Dir returns the directory part of the entry's path, or "" when the file
// lives directly under the output directory.
func (e Entry) Dir() string {
	i := strings.LastIndex(e.Path, "/")
	if i < 0 {
		return ""
	}
	return e.Path[:i]
}

// Collision lists the IDs of items that resolved to the same path, in
// collection order.
type Collision struct {
	Path    string  `json:"path" yaml:"path"`
	ItemIDs []int64 `json:"item_ids" yaml:"item_ids"`
}

// Result is the outcome of resolving a collection.
type Result struct {
	// RootPath is the link prefix stripped from every item.
	RootPath string
	// FromRootItem is false when RootPath came from the fallback.
	FromRootItem bool
	Entries      []Entry
	Collisions   []Collision
}

// RootPath scans items in received order and derives the root prefix from
// the first item with no parent: its link, cut just after its own
// "/<slug>/" segment. The result depends on the order items were received
// in. When no item qualifies, fallback is returned and ok is false.
func RootPath(items []types.Item, fallback string) (root string, ok bool) {
	for _, item := range items {
		if !item.IsRoot() {
			continue
		}
		return rootFromItem(item), true
	}
	return fallback, false
}

func rootFromItem(item types.Item) string {
	link := item.Link
	if item.Slug != "" {
		seg := "/" + item.Slug + "/"
		if i := strings.LastIndex(link, seg); i >= 0 {
			return link[:i+len(seg)]
		}
	}
	if !strings.HasSuffix(link, "/") {
		link += "/"
	}
	return link
}

// RelativePath strips root from the item's link. A link outside root, or one
// that would escape the output directory, falls back to the slug; an empty
// remainder becomes IndexName.
func RelativePath(item types.Item, root string) string {
	if !strings.HasPrefix(item.Link, root) {
		return orIndex(item.Slug)
	}
	rel := strings.TrimSuffix(strings.TrimPrefix(item.Link, root), "/")
	if rel == "" {
		return IndexName
	}
	rel = path.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") {
		return orIndex(item.Slug)
	}
	return rel
}

func orIndex(p string) string {
	p = strings.Trim(p, "/")
	if p == "" || p == "." || p == ".." {
		return IndexName
	}
	return p
}

// Resolve determines the root path and maps every item to an Entry, in
// collection order. Items sharing a path are reported in Collisions but are
// all kept; the later item wins on disk.
func Resolve(items []types.Item, fallbackRoot string) Result {
	root, ok := RootPath(items, fallbackRoot)

	res := Result{
		RootPath:     root,
		FromRootItem: ok,
		Entries:      make([]Entry, len(items)),
	}

	byPath := make(map[string][]int64, len(items))
	var order []string
	for i, item := range items {
		p := RelativePath(item, root)
		res.Entries[i] = Entry{Item: item, Path: p}
		if _, seen := byPath[p]; !seen {
			order = append(order, p)
		}
		byPath[p] = append(byPath[p], item.ID)
	}

	for _, p := range order {
		if ids := byPath[p]; len(ids) > 1 {
			res.Collisions = append(res.Collisions, Collision{Path: p, ItemIDs: ids})
		}
	}
	return res
}
