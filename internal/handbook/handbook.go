// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package handbook runs the incremental markdown sync of one handbook:
// fetch all items, resolve their paths, render, and materialize.
package handbook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/handbook-sync/internal/fetch"
	"github.com/pdiddy/handbook-sync/internal/materialize"
	"github.com/pdiddy/handbook-sync/internal/render"
	"github.com/pdiddy/handbook-sync/internal/resolve"
	"github.com/pdiddy/handbook-sync/pkg/types"
)

// ErrEmptyCollection is re-exported so callers need not import fetch.
var ErrEmptyCollection = fetch.ErrEmptyCollection

// Fetcher retrieves every item of a collection.
type Fetcher interface {
	FetchAll(ctx context.Context, endpoint string) ([]types.Item, error)
}

// Recorder receives run and per-file events. *state.Store implements it.
type Recorder interface {
	BeginRun(ctx context.Context, endpoint, outputDir string, startedAt time.Time) (int64, error)
	RecordFile(ctx context.Context, runID int64, outputDir, path string, item types.Item, doc string, outcome types.Outcome, at time.Time) error
	FinishRun(ctx context.Context, runID int64, created, updated, skipped int, at time.Time) error
}

// FileResult is the outcome for one item.
type FileResult struct {
	ItemID  int64         `json:"item_id" yaml:"item_id"`
	Path    string        `json:"path" yaml:"path"`
	Outcome types.Outcome `json:"outcome" yaml:"outcome"`
}

// Result summarizes a sync run.
type Result struct {
	Endpoint   string              `json:"endpoint" yaml:"endpoint"`
	RootPath   string              `json:"root_path" yaml:"root_path"`
	OutputDir  string              `json:"output_dir" yaml:"output_dir"`
	Created    int                 `json:"created" yaml:"created"`
	Updated    int                 `json:"updated" yaml:"updated"`
	Skipped    int                 `json:"skipped" yaml:"skipped"`
	Files      []FileResult        `json:"files" yaml:"files"`
	Collisions []resolve.Collision `json:"collisions,omitempty" yaml:"collisions,omitempty"`
}

// Total returns the number of items materialized.
func (r Result) Total() int {
	return r.Created + r.Updated + r.Skipped
}

// Changed reports whether any file was created or updated.
func (r Result) Changed() bool {
	return r.Created+r.Updated > 0
}

func (r *Result) count(o types.Outcome) {
	switch o {
	case types.OutcomeCreated:
		r.Created++
	case types.OutcomeUpdated:
		r.Updated++
	case types.OutcomeSkipped:
		r.Skipped++
	}
}

// Syncer wires the pipeline stages together.
type Syncer struct {
	Fetcher  Fetcher
	Renderer *render.Renderer
	// Recorder is optional.
	Recorder Recorder
	// Now is the clock used for recorded timestamps; nil means time.Now.
	Now func() time.Time
}

// New returns a Syncer using f and the default handbook rule set.
func New(f Fetcher) *Syncer {
	return &Syncer{
		Fetcher:  f,
		Renderer: render.New(render.DefaultRules()...),
	}
}

// Sync runs one job: optionally clear the output directory, ensure it
// exists, fetch, resolve, then render and write each item in collection
// order. Per-item status lines and warnings go to w. An empty collection
// returns ErrEmptyCollection after the output directory has been ensured;
// any other failure aborts the run.
func (s *Syncer) Sync(ctx context.Context, cfg types.SyncConfig, w io.Writer) (Result, error) {
	cfg = cfg.WithDefaults()
	endpoint := fetch.Endpoint(cfg)
	res := Result{Endpoint: endpoint, OutputDir: cfg.OutputDir}

	out := materialize.New(cfg.OutputDir)
	if cfg.Regenerate {
		if err := out.Clear(); err != nil {
			return res, err
		}
	}
	if err := out.EnsureRoot(); err != nil {
		return res, err
	}

	items, err := s.Fetcher.FetchAll(ctx, endpoint)
	if err != nil {
		if errors.Is(err, fetch.ErrEmptyCollection) {
			fmt.Fprintf(w, "warning: no items found at %s\n", endpoint)
		}
		return res, err
	}

	resolved := resolve.Resolve(items, fetch.FallbackRoot(cfg))
	res.RootPath = resolved.RootPath
	res.Collisions = resolved.Collisions
	if !resolved.FromRootItem {
		fmt.Fprintf(w, "warning: no root item found, using %s\n", resolved.RootPath)
	}
	for _, c := range resolved.Collisions {
		fmt.Fprintf(w, "warning: %d items resolve to %s (ids %v); the last one wins\n", len(c.ItemIDs), c.Path, c.ItemIDs)
	}

	var runID int64
	if s.Recorder != nil {
		runID, err = s.Recorder.BeginRun(ctx, endpoint, cfg.OutputDir, s.now())
		if err != nil {
			return res, err
		}
	}

	for _, e := range resolved.Entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		doc, err := s.Renderer.Render(e.Item.Title, e.Item.Content)
		if err != nil {
			return res, fmt.Errorf("rendering %s: %w", e.Path, err)
		}

		outcome, err := out.Write(e.Path, doc)
		if err != nil {
			return res, err
		}

		res.count(outcome)
		res.Files = append(res.Files, FileResult{ItemID: e.Item.ID, Path: e.Path, Outcome: outcome})
		printOutcome(w, outcome, out.FilePath(e.Path))

		if s.Recorder != nil {
			if err := s.Recorder.RecordFile(ctx, runID, cfg.OutputDir, e.Path, e.Item, doc, outcome, s.now()); err != nil {
				return res, err
			}
		}
	}

	if s.Recorder != nil {
		if err := s.Recorder.FinishRun(ctx, runID, res.Created, res.Updated, res.Skipped, s.now()); err != nil {
			return res, err
		}
	}

	fmt.Fprintf(w, "\nSync summary: %d created, %d updated, %d skipped (total: %d)\n",
		res.Created, res.Updated, res.Skipped, res.Total())
	return res, nil
}

func printOutcome(w io.Writer, o types.Outcome, path string) {
	switch o {
	case types.OutcomeSkipped:
		fmt.Fprintf(w, "skipped: %s (unchanged)\n", path)
	default:
		fmt.Fprintf(w, "%s: %s\n", o, path)
	}
}

func (s *Syncer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
