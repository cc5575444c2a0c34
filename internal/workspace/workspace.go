// Package workspace is the command surface the renderers drive: it owns the
// tabs, the dataset registry and the worker pool.
//
// A Workspace is not safe for concurrent use. One goroutine (the UI loop)
// issues commands and calls Poll; commands return immediately and their
// effects arrive through Poll as events.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/engine"
	"github.com/wethinkt/go-csvview/internal/profile"
	"github.com/wethinkt/go-csvview/internal/registry"
	"github.com/wethinkt/go-csvview/internal/view"
	"github.com/wethinkt/go-csvview/internal/window"
)

// ErrUnknownTab is returned for tab ids that are not open.
var ErrUnknownTab = errors.New("unknown tab")

// Options configures a Workspace.
type Options struct {
	Workers   int
	Overscan  int
	Load      dataset.Options
	MaxUnique int
}

// TabInfo is a read-only copy of a tab's configuration.
type TabInfo struct {
	ID           view.ID
	Dataset      string
	Filter       string
	FilterColumn int
	Sort         view.Sort
}

type loadResult struct {
	path    string
	seq     uint64
	store   *dataset.Store
	err     error
	elapsed time.Duration
}

type profileResult struct {
	path       string
	generation uint64
	columns    []profile.Column
}

// Workspace holds the open tabs over a set of datasets.
type Workspace struct {
	opts Options
	reg  *registry.Registry
	pool *engine.Pool

	views  map[view.ID]*view.State
	order  []view.ID
	nextID view.ID
	global string

	// loadSeq numbers loads per path; only the latest completion registers.
	loadSeq  map[string]uint64
	inFlight map[string]int
	loads    chan loadResult
	profiles chan profileResult

	ctx    context.Context
	cancel context.CancelFunc
}

// New returns an empty workspace with its worker pool running.
func New(opts Options) *Workspace {
	ctx, cancel := context.WithCancel(context.Background())
	return &Workspace{
		opts:     opts,
		reg:      registry.New(),
		pool:     engine.NewPool(opts.Workers),
		views:    make(map[view.ID]*view.State),
		nextID:   1,
		loadSeq:  make(map[string]uint64),
		inFlight: make(map[string]int),
		loads:    make(chan loadResult, 16),
		profiles: make(chan profileResult, 16),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Close cancels pending loads and stops the worker pool.
func (w *Workspace) Close() {
	w.cancel()
	w.pool.Close()
}

// Registry exposes the dataset registry for read access.
func (w *Workspace) Registry() *registry.Registry {
	return w.reg
}

// NewTab opens a tab showing dataset id (which may be empty). The tab
// starts from the column preferences of the last tab, with no filter or sort.
func (w *Workspace) NewTab(id string) view.ID {
	tabID := w.nextID
	w.nextID++

	var v *view.State
	if n := len(w.order); n > 0 {
		v = w.views[w.order[n-1]].Clone(tabID)
	} else {
		v = view.New(tabID)
	}
	if id != "" {
		v.SetDataset(id)
	}
	w.views[tabID] = v
	w.order = append(w.order, tabID)
	w.recompute(v)
	return tabID
}

// CloseTab closes a tab and drops its cached results. Datasets stay
// registered.
func (w *Workspace) CloseTab(tab view.ID) error {
	if _, err := w.view(tab); err != nil {
		return err
	}
	delete(w.views, tab)
	w.order = slices.DeleteFunc(w.order, func(id view.ID) bool { return id == tab })
	w.reg.InvalidateView(tab)
	return nil
}

// Tabs returns the open tabs in creation order.
func (w *Workspace) Tabs() []view.ID {
	return slices.Clone(w.order)
}

// Tab returns the configuration of a tab.
func (w *Workspace) Tab(tab view.ID) (TabInfo, bool) {
	v, ok := w.views[tab]
	if !ok {
		return TabInfo{}, false
	}
	return TabInfo{
		ID:           v.ID,
		Dataset:      v.Dataset,
		Filter:       v.Filter,
		FilterColumn: v.FilterColumn,
		Sort:         v.Sort,
	}, true
}

// Open points tab at the file at path and starts loading it unless it is
// already registered or loading.
func (w *Workspace) Open(path string, tab view.ID) error {
	v, err := w.view(tab)
	if err != nil {
		return err
	}
	id := dataset.ID(path)
	if _, ok := w.reg.Store(id); !ok && w.inFlight[id] == 0 {
		w.startLoad(id)
	}
	if v.SetDataset(id) {
		w.recompute(v)
	}
	return nil
}

// Reload re-reads a dataset from disk. Views on it are recomputed once the
// new generation is registered.
func (w *Workspace) Reload(path string) {
	w.startLoad(dataset.ID(path))
}

// SetDataset switches tab to an already registered dataset.
func (w *Workspace) SetDataset(tab view.ID, id string) error {
	v, err := w.view(tab)
	if err != nil {
		return err
	}
	if _, ok := w.reg.Store(id); !ok {
		return fmt.Errorf("%w: %s", registry.ErrUnknownDataset, id)
	}
	if v.SetDataset(id) {
		w.recompute(v)
	}
	return nil
}

func (w *Workspace) SetFilter(tab view.ID, text string) error {
	return w.update(tab, func(v *view.State) bool { return v.SetFilter(text) })
}

func (w *Workspace) ClearFilter(tab view.ID) error {
	return w.update(tab, (*view.State).ClearFilter)
}

// SetFilterColumn restricts the tab's filter to col (negative = all columns).
func (w *Workspace) SetFilterColumn(tab view.ID, col int) error {
	return w.update(tab, func(v *view.State) bool { return v.SetFilterColumn(col) })
}

// SetSort cycles the sort on col through ascending, descending and off.
func (w *Workspace) SetSort(tab view.ID, col int) error {
	return w.update(tab, func(v *view.State) bool { return v.CycleSort(col) })
}

// SortBy sorts tab by col in dir. A negative column clears the sort.
func (w *Workspace) SortBy(tab view.ID, col int, dir dataset.Direction) error {
	return w.update(tab, func(v *view.State) bool { return v.SetSort(col, dir) })
}

// ToggleColumn flips the visibility of col in the tab's current dataset.
func (w *Workspace) ToggleColumn(tab view.ID, col int) error {
	v, err := w.view(tab)
	if err != nil {
		return err
	}
	v.ToggleColumn(col)
	return nil
}

// SetGlobalFilter sets a term that replaces every tab's own filter while it
// is non-empty.
func (w *Workspace) SetGlobalFilter(text string) {
	if w.global == text {
		return
	}
	w.global = text
	for _, id := range w.order {
		w.recompute(w.views[id])
	}
}

// GlobalFilter returns the current global filter term.
func (w *Workspace) GlobalFilter() string {
	return w.global
}

// EffectiveFilter returns the term that currently selects the tab's rows.
func (w *Workspace) EffectiveFilter(tab view.ID) string {
	if w.global != "" {
		return w.global
	}
	if v, ok := w.views[tab]; ok {
		return v.Filter
	}
	return ""
}

// TabRows returns the tab's whole row sequence and what kind of result
// served it. A filtered or sorted tab without a result for the registered
// generation serves no rows rather than the unfiltered master rows.
func (w *Workspace) TabRows(tab view.ID) (registry.Rows, registry.State) {
	v, ok := w.views[tab]
	if !ok || v.Dataset == "" {
		return registry.Rows{}, registry.NotComputed
	}
	rows, state := w.reg.RowsForView(v.Dataset, tab)
	if state == registry.NotComputed && !v.Snapshot(w.reg.Generation(v.Dataset), w.global).Identity() {
		return registry.Rows{}, registry.NotComputed
	}
	return rows, state
}

// Rows returns positions [start, end) of the tab's current row sequence
// plus the configured overscan, and what kind of result served them.
func (w *Workspace) Rows(tab view.ID, start, end int) (window.Window, registry.State) {
	rows, state := w.TabRows(tab)
	return window.Slice(rows, start, end, w.opts.Overscan), state
}

// Computing reports whether the tab is waiting for its first result on
// the registered generation, so it has no rows to show yet.
func (w *Workspace) Computing(tab view.ID) bool {
	_, state := w.TabRows(tab)
	return state == registry.NotComputed && w.Pending(tab)
}

// Header returns the columns of the tab's dataset with the tab's
// visibility and sort annotation.
func (w *Workspace) Header(tab view.ID) []dataset.Column {
	v, ok := w.views[tab]
	if !ok {
		return nil
	}
	store, ok := w.reg.Store(v.Dataset)
	if !ok {
		return nil
	}
	v.EnsureColumns(store.Path, store.Width())
	return v.Header(store.Columns)
}

// Store returns the dataset currently shown in tab.
func (w *Workspace) Store(tab view.ID) (*dataset.Store, bool) {
	v, ok := w.views[tab]
	if !ok {
		return nil, false
	}
	return w.reg.Store(v.Dataset)
}

// Pending reports whether the tab is waiting for a computation: its cached
// result, if any, was computed from other inputs than the current ones.
func (w *Workspace) Pending(tab view.ID) bool {
	v, ok := w.views[tab]
	if !ok || v.Dataset == "" {
		return false
	}
	gen := w.reg.Generation(v.Dataset)
	if gen == 0 {
		return false
	}
	e, ok := w.reg.Result(v.Dataset, tab)
	return !ok || e.Snapshot != v.Snapshot(gen, w.global)
}

// Loading reports whether a load of path is in flight.
func (w *Workspace) Loading(path string) bool {
	return w.inFlight[dataset.ID(path)] > 0
}

// Profile returns the column profiles of a dataset once computed.
func (w *Workspace) Profile(id string) ([]profile.Column, bool) {
	return w.reg.Profile(id)
}

func (w *Workspace) view(tab view.ID) (*view.State, error) {
	v, ok := w.views[tab]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTab, tab)
	}
	return v, nil
}

func (w *Workspace) update(tab view.ID, set func(*view.State) bool) error {
	v, err := w.view(tab)
	if err != nil {
		return err
	}
	if set(v) {
		w.recompute(v)
	}
	return nil
}

// recompute brings the cached result of v up to date. Identity views are
// cached inline without indices; everything else goes to the pool.
func (w *Workspace) recompute(v *view.State) {
	store, ok := w.reg.Store(v.Dataset)
	if !ok {
		return
	}
	v.EnsureColumns(store.Path, store.Width())

	snap := v.Snapshot(store.Generation, w.global)
	if e, ok := w.reg.Result(store.Path, v.ID); ok && e.Snapshot == snap {
		return
	}
	if snap.Identity() {
		w.reg.Put(registry.Key{Dataset: store.Path, View: v.ID}, snap, nil)
		return
	}
	w.pool.Submit(engine.Request{View: v.ID, Snapshot: snap, Store: store})
}

func (w *Workspace) startLoad(id string) {
	w.loadSeq[id]++
	w.inFlight[id]++
	seq := w.loadSeq[id]
	opts := w.opts.Load

	go func() {
		start := time.Now()
		store, err := dataset.Load(w.ctx, id, opts)
		res := loadResult{path: id, seq: seq, store: store, err: err, elapsed: time.Since(start)}
		select {
		case w.loads <- res:
		case <-w.ctx.Done():
		}
	}()
}

func (w *Workspace) startProfile(store *dataset.Store) {
	maxUnique := w.opts.MaxUnique
	go func() {
		cols := profile.Compute(store, maxUnique)
		select {
		case w.profiles <- profileResult{path: store.Path, generation: store.Generation, columns: cols}:
		case <-w.ctx.Done():
		}
	}()
}
