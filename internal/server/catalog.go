package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/engine"
	"github.com/wethinkt/go-csvview/internal/metrics"
	"github.com/wethinkt/go-csvview/internal/profile"
	"github.com/wethinkt/go-csvview/internal/registry"
	"github.com/wethinkt/go-csvview/internal/tuilog"
	"github.com/wethinkt/go-csvview/internal/view"
	"github.com/wethinkt/go-csvview/internal/watch"
)

// Catalog holds the datasets the server answers queries about. Queries are
// computed on the request goroutine against the registered store, so a
// reload never changes the rows of a request already running.
type Catalog struct {
	reg       *registry.Registry
	opts      dataset.Options
	maxUnique int
}

// NewCatalog returns an empty catalog.
func NewCatalog(opts dataset.Options, maxUnique int) *Catalog {
	return &Catalog{
		reg:       registry.New(),
		opts:      opts,
		maxUnique: maxUnique,
	}
}

// Registry exposes the underlying registry.
func (c *Catalog) Registry() *registry.Registry {
	return c.reg
}

// Load reads the file at path, registers it and computes its column profiles.
func (c *Catalog) Load(ctx context.Context, path string) (*dataset.Store, error) {
	start := time.Now()
	store, err := dataset.Load(ctx, path, c.opts)
	metrics.LoadDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DatasetsLoadedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.DatasetsLoadedTotal.WithLabelValues("ok").Inc()
	metrics.RowsSkippedTotal.Add(float64(store.Skipped))

	store = c.reg.Register(store)
	c.reg.SetProfile(store.Path, store.Generation, profile.Compute(store, c.maxUnique))
	return store, nil
}

// LoadAll loads every path, stopping at the first failure.
func (c *Catalog) LoadAll(ctx context.Context, paths []string) error {
	for _, p := range paths {
		if _, err := c.Load(ctx, p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Watch reloads datasets when w reports a change, until ctx is done or the
// watcher stops. A failed reload keeps the previous generation registered.
func (c *Catalog) Watch(ctx context.Context, w *watch.Watcher) {
	for _, id := range c.reg.Datasets() {
		if err := w.Add(id); err != nil {
			tuilog.Log.Warn("Cannot watch dataset", "path", id, "error", err)
		}
	}
	for ev := range w.Start(ctx) {
		if _, err := c.Load(ctx, ev.Path); err != nil {
			tuilog.Log.Error("Reload failed", "path", ev.Path, "error", err)
			continue
		}
		tuilog.Log.Info("Reloaded dataset", "path", ev.Path, "type", ev.EventType)
	}
}

// Datasets describes every registered dataset, ordered by path.
func (c *Catalog) Datasets() []DatasetInfo {
	ids := c.reg.Datasets()
	out := make([]DatasetInfo, 0, len(ids))
	for _, id := range ids {
		store, ok := c.reg.Store(id)
		if !ok {
			continue
		}
		out = append(out, DatasetInfo{
			Path:       store.Path,
			Name:       filepath.Base(store.Path),
			Rows:       store.Len(),
			Columns:    store.Columns,
			Skipped:    store.Skipped,
			Delimiter:  string(store.Delimiter),
			Generation: store.Generation,
		})
	}
	return out
}

// Store resolves a dataset by path.
func (c *Catalog) Store(path string) (*dataset.Store, error) {
	id := dataset.ID(path)
	store, ok := c.reg.Store(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", registry.ErrUnknownDataset, path)
	}
	return store, nil
}

// Query filters and sorts a dataset.
func (c *Catalog) Query(path string, q view.Query) (registry.Rows, error) {
	store, err := c.Store(path)
	if err != nil {
		return registry.Rows{}, err
	}
	start := time.Now()
	indices := engine.Compute(store, q)
	metrics.RecomputesTotal.Inc()
	metrics.RecomputeDurationSeconds.Observe(time.Since(start).Seconds())
	return registry.NewRows(store, indices), nil
}

// Profile returns the column profiles of a dataset.
func (c *Catalog) Profile(path string) ([]profile.Column, error) {
	store, err := c.Store(path)
	if err != nil {
		return nil, err
	}
	if cols, ok := c.reg.Profile(store.Path); ok {
		return cols, nil
	}
	cols := profile.Compute(store, c.maxUnique)
	c.reg.SetProfile(store.Path, store.Generation, cols)
	return cols, nil
}
