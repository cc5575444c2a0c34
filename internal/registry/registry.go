// Package registry owns the loaded datasets and the computed row sequence
// of every (dataset, view) pair.
//
// Results are only ever replaced wholesale. Apply refuses results whose
// snapshot no longer matches the view's current snapshot, so a slow
// computation finishing late cannot overwrite a newer one.
package registry

import (
	"errors"
	"slices"
	"sync"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/engine"
	"github.com/wethinkt/go-csvview/internal/metrics"
	"github.com/wethinkt/go-csvview/internal/profile"
	"github.com/wethinkt/go-csvview/internal/tuilog"
	"github.com/wethinkt/go-csvview/internal/view"
)

// ErrUnknownDataset is returned for dataset ids that are not registered.
var ErrUnknownDataset = errors.New("unknown dataset")

// Key identifies one cached result.
type Key struct {
	Dataset string
	View    view.ID
}

// State tells what RowsForView served.
type State int

const (
	// NotComputed means no result exists yet; the master rows were served.
	NotComputed State = iota
	// Computed means a result with at least one row was served.
	Computed
	// Empty means a result exists and it selects no rows.
	Empty
)

func (s State) String() string {
	switch s {
	case Computed:
		return "computed"
	case Empty:
		return "empty"
	default:
		return "not computed"
	}
}

// Entry is a cached result. An identity snapshot with nil Indices stands
// for every row in master order.
type Entry struct {
	Snapshot view.Snapshot
	Indices  []int
}

// Registry maps dataset ids to stores and (dataset, view) pairs to results.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	stores   map[string]*dataset.Store
	results  map[Key]Entry
	profiles map[string]profileEntry
	nextGen  uint64
}

type profileEntry struct {
	generation uint64
	columns    []profile.Column
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		stores:   make(map[string]*dataset.Store),
		results:  make(map[Key]Entry),
		profiles: make(map[string]profileEntry),
	}
}

// Register stores a copy of store under store.Path with the next generation
// and returns it. A store previously registered under the same id is
// replaced. Its cached results stay in place but no longer match any
// current snapshot; callers invalidate and recompute the affected views.
func (r *Registry) Register(store *dataset.Store) *dataset.Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextGen++
	s := store.WithGeneration(r.nextGen)
	_, replaced := r.stores[s.Path]
	r.stores[s.Path] = s
	metrics.DatasetsRegistered.Set(float64(len(r.stores)))

	tuilog.Log.Info("Registered dataset", "path", s.Path, "generation", s.Generation,
		"rows", s.Len(), "replaced", replaced)
	return s
}

// Unregister removes a dataset together with its results and profile.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.stores, id)
	delete(r.profiles, id)
	for k := range r.results {
		if k.Dataset == id {
			delete(r.results, k)
		}
	}
	metrics.DatasetsRegistered.Set(float64(len(r.stores)))
}

// Store returns the registered store for id.
func (r *Registry) Store(id string) (*dataset.Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	return s, ok
}

// Generation returns the generation of the registered store, or 0.
func (r *Registry) Generation(id string) uint64 {
	if s, ok := r.Store(id); ok {
		return s.Generation
	}
	return 0
}

// Datasets returns the registered ids in sorted order.
func (r *Registry) Datasets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Apply caches res if its snapshot equals current and the store it was
// computed from is still the registered generation. It reports whether
// the result was kept.
func (r *Registry) Apply(res engine.Result, current view.Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := res.Snapshot
	store, ok := r.stores[snap.Dataset]
	if snap != current || !ok || store.Generation != snap.Generation {
		metrics.StaleResultsTotal.Inc()
		tuilog.Log.Debug("Dropped stale result", "view", res.View, "dataset", snap.Dataset,
			"filter", snap.Filter, "current_filter", current.Filter)
		return false
	}
	r.results[Key{Dataset: snap.Dataset, View: res.View}] = Entry{Snapshot: snap, Indices: res.Indices}
	return true
}

// Put caches a result computed by the caller.
func (r *Registry) Put(key Key, snap view.Snapshot, indices []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[key] = Entry{Snapshot: snap, Indices: indices}
}

// Result returns the cached entry for (id, v).
func (r *Registry) Result(id string, v view.ID) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.results[Key{Dataset: id, View: v}]
	return e, ok
}

// Invalidate drops the cached result for (id, v).
func (r *Registry) Invalidate(id string, v view.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.results, Key{Dataset: id, View: v})
}

// InvalidateView drops every cached result of view v.
func (r *Registry) InvalidateView(v view.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.results {
		if k.View == v {
			delete(r.results, k)
		}
	}
}

// RowsForView returns the rows view v should display for dataset id.
// Without a cached result the master rows are served in file order and the
// state is NotComputed.
func (r *Registry) RowsForView(id string, v view.ID) (Rows, State) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[id]
	if !ok {
		return Rows{}, NotComputed
	}
	// Indices computed against an older generation do not address this
	// store's rows, so such an entry counts as not computed.
	e, ok := r.results[Key{Dataset: id, View: v}]
	if !ok || e.Snapshot.Generation != store.Generation {
		return Rows{store: store}, NotComputed
	}
	rows := NewRows(store, e.Indices)
	if e.Indices == nil && !e.Snapshot.Identity() {
		rows = Rows{store: store, indices: e.Indices, computed: true}
	}
	if rows.Len() == 0 {
		return rows, Empty
	}
	return rows, Computed
}

// SetProfile stores column profiles computed for generation gen of id.
// Profiles for a generation that is no longer registered are ignored.
func (r *Registry) SetProfile(id string, gen uint64, cols []profile.Column) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[id]; !ok || s.Generation != gen {
		return false
	}
	r.profiles[id] = profileEntry{generation: gen, columns: cols}
	return true
}

// Profile returns the column profiles of the registered generation of id.
func (r *Registry) Profile(id string) ([]profile.Column, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	s, registered := r.stores[id]
	if !ok || !registered || s.Generation != p.generation {
		return nil, false
	}
	return p.columns, true
}
