package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/metrics"
	"github.com/wethinkt/go-csvview/internal/registry"
	"github.com/wethinkt/go-csvview/internal/view"
)

const peopleCSV = `id,name,city
1,Anna,Oslo
2,Mark,Paris
3,Bob,Berlin
4,Clara,Austin
5,Dan,Rome
`

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// harness wraps a Workspace and keeps polled events until a test asks
// for them, so events arriving in the same Poll batch are not lost.
type harness struct {
	*Workspace
	t      *testing.T
	events []Event
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	w := New(opts)
	t.Cleanup(w.Close)
	return &harness{Workspace: w, t: t}
}

func newWorkspace(t *testing.T) *harness {
	return newHarness(t, Options{Workers: 2})
}

// waitFor polls until an event satisfies match, removes it from the queue
// and returns it. Other events stay queued for later calls.
func (h *harness) waitFor(match func(Event) bool) Event {
	h.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		for i, ev := range h.events {
			if match(ev) {
				h.events = slices.Delete(h.events, i, i+1)
				return ev
			}
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out; queued events: %v", h.events)
		}
		h.events = append(h.events, h.Poll()...)
		time.Sleep(2 * time.Millisecond)
	}
}

func loaded(ev Event) bool {
	_, ok := ev.(DatasetLoaded)
	return ok
}

func applied(tab view.ID) func(Event) bool {
	return func(ev Event) bool {
		a, ok := ev.(ResultApplied)
		return ok && a.Tab == tab
	}
}

func names(t *testing.T, w *harness, tab view.ID) []string {
	t.Helper()
	win, _ := w.Rows(tab, 0, 100)
	out := make([]string, win.Len())
	for i, row := range win.Rows {
		out[i] = row[1]
	}
	return out
}

func openPeople(t *testing.T, w *harness) (view.ID, string) {
	t.Helper()
	path := writeCSV(t, "people.csv", peopleCSV)
	tab := w.NewTab("")
	if err := w.Open(path, tab); err != nil {
		t.Fatal(err)
	}
	w.waitFor(loaded)
	return tab, dataset.ID(path)
}

func TestRoundTripFilter(t *testing.T) {
	w := newWorkspace(t)
	tab, _ := openPeople(t, w)

	all := []string{"Anna", "Mark", "Bob", "Clara", "Dan"}
	if diff := cmp.Diff(all, names(t, w, tab)); diff != "" {
		t.Fatalf("initial rows mismatch (-want +got):\n%s", diff)
	}
	if _, state := w.Rows(tab, 0, 100); state != registry.Computed {
		t.Errorf("identity view should be installed on load, state %v", state)
	}

	if err := w.SetFilter(tab, "ar"); err != nil {
		t.Fatal(err)
	}
	if !w.Pending(tab) {
		t.Error("tab should be pending after a filter change")
	}
	w.waitFor(applied(tab))
	if diff := cmp.Diff([]string{"Mark", "Clara"}, names(t, w, tab)); diff != "" {
		t.Errorf("filtered rows mismatch (-want +got):\n%s", diff)
	}
	if w.Pending(tab) {
		t.Error("tab should not be pending once the result applied")
	}

	if err := w.ClearFilter(tab); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(all, names(t, w, tab)); diff != "" {
		t.Errorf("cleared rows mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyResultIsDistinguished(t *testing.T) {
	w := newWorkspace(t)
	tab, _ := openPeople(t, w)

	w.SetFilter(tab, "nothing matches this")
	w.waitFor(applied(tab))
	win, state := w.Rows(tab, 0, 10)
	if state != registry.Empty || win.Len() != 0 {
		t.Errorf("state %v len %d, want empty 0", state, win.Len())
	}
}

func TestSortCycles(t *testing.T) {
	w := newWorkspace(t)
	tab, _ := openPeople(t, w)

	w.SetSort(tab, 1)
	w.waitFor(applied(tab))
	if diff := cmp.Diff([]string{"Anna", "Bob", "Clara", "Dan", "Mark"}, names(t, w, tab)); diff != "" {
		t.Errorf("asc mismatch (-want +got):\n%s", diff)
	}
	h := w.Header(tab)
	if h[1].Sort == nil || *h[1].Sort != dataset.Ascending {
		t.Errorf("header should mark column 1 ascending: %+v", h[1])
	}

	w.SetSort(tab, 1)
	w.waitFor(applied(tab))
	if diff := cmp.Diff([]string{"Mark", "Dan", "Clara", "Bob", "Anna"}, names(t, w, tab)); diff != "" {
		t.Errorf("desc mismatch (-want +got):\n%s", diff)
	}

	w.SetSort(tab, 1) // back to file order, computed inline
	if diff := cmp.Diff([]string{"Anna", "Mark", "Bob", "Clara", "Dan"}, names(t, w, tab)); diff != "" {
		t.Errorf("unsorted mismatch (-want +got):\n%s", diff)
	}
}

func TestTabsAreIndependent(t *testing.T) {
	w := newWorkspace(t)
	first, id := openPeople(t, w)

	w.ToggleColumn(first, 2)
	second := w.NewTab(id)

	if h := w.Header(second); h[2].Visible {
		t.Error("new tab should inherit column visibility from the last tab")
	}
	w.ToggleColumn(second, 2)
	if h := w.Header(first); h[2].Visible {
		t.Error("toggling in the new tab must not affect the first")
	}

	w.SetFilter(first, "Bob")
	w.waitFor(applied(first))
	if diff := cmp.Diff([]string{"Bob"}, names(t, w, first)); diff != "" {
		t.Errorf("first tab mismatch (-want +got):\n%s", diff)
	}
	if got := names(t, w, second); len(got) != 5 {
		t.Errorf("second tab should be unfiltered, got %v", got)
	}

	if diff := cmp.Diff([]view.ID{first, second}, w.Tabs()); diff != "" {
		t.Errorf("Tabs mismatch (-want +got):\n%s", diff)
	}
	if err := w.CloseTab(first); err != nil {
		t.Fatal(err)
	}
	if _, ok := w.Registry().Result(id, first); ok {
		t.Error("closing a tab should drop its results")
	}
	if err := w.CloseTab(first); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("second close: %v, want ErrUnknownTab", err)
	}
}

func TestGlobalFilterTakesPrecedence(t *testing.T) {
	w := newWorkspace(t)
	tab, _ := openPeople(t, w)

	w.SetFilter(tab, "Bob")
	w.waitFor(applied(tab))

	w.SetGlobalFilter("ar")
	w.waitFor(applied(tab))
	if diff := cmp.Diff([]string{"Mark", "Clara"}, names(t, w, tab)); diff != "" {
		t.Errorf("global filter mismatch (-want +got):\n%s", diff)
	}
	if info, _ := w.Tab(tab); info.Filter != "Bob" {
		t.Errorf("own filter overwritten: %q", info.Filter)
	}
	if w.EffectiveFilter(tab) != "ar" {
		t.Errorf("EffectiveFilter = %q", w.EffectiveFilter(tab))
	}

	w.SetGlobalFilter("")
	w.waitFor(applied(tab))
	if diff := cmp.Diff([]string{"Bob"}, names(t, w, tab)); diff != "" {
		t.Errorf("own filter should resume (-want +got):\n%s", diff)
	}
}

func TestStaleResultIsDropped(t *testing.T) {
	w := newWorkspace(t)
	tab, _ := openPeople(t, w)

	// Both requests are in flight before either result is polled; only
	// the one matching the final filter may stick.
	w.SetFilter(tab, "a")
	w.SetFilter(tab, "ar")

	w.waitFor(applied(tab))
	w.waitFor(func(ev Event) bool {
		d, ok := ev.(ResultDropped)
		return ok && d.Tab == tab
	})
	if diff := cmp.Diff([]string{"Mark", "Clara"}, names(t, w, tab)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFailureIsReported(t *testing.T) {
	w := newWorkspace(t)
	tab := w.NewTab("")
	missing := filepath.Join(t.TempDir(), "missing.csv")
	if err := w.Open(missing, tab); err != nil {
		t.Fatal(err)
	}
	if !w.Loading(missing) {
		t.Error("load should be in flight")
	}

	failed := w.waitFor(func(ev Event) bool {
		_, ok := ev.(LoadFailed)
		return ok
	}).(LoadFailed)
	if !errors.Is(failed.Err, fs.ErrNotExist) {
		t.Errorf("Err = %v, want not-exist", failed.Err)
	}
	if len(w.Registry().Datasets()) != 0 {
		t.Error("failed dataset must not register")
	}
	if w.Loading(missing) {
		t.Error("load should no longer be in flight")
	}
	if win, state := w.Rows(tab, 0, 10); win.Len() != 0 || state != registry.NotComputed {
		t.Error("tab on a failed dataset should be empty")
	}
}

func TestReloadRecomputesViews(t *testing.T) {
	w := newWorkspace(t)
	tab, id := openPeople(t, w)
	gen := w.Registry().Generation(id)

	w.SetFilter(tab, "ar")
	w.waitFor(applied(tab))

	if err := os.WriteFile(id, []byte("id,name,city\n9,Barbara,Oslo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w.Reload(id)
	w.waitFor(loaded)
	if w.Registry().Generation(id) <= gen {
		t.Error("reload should register a new generation")
	}
	w.waitFor(applied(tab))
	if diff := cmp.Diff([]string{"Barbara"}, names(t, w, tab)); diff != "" {
		t.Errorf("rows after reload mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileReady(t *testing.T) {
	w := newHarness(t, Options{Workers: 1, MaxUnique: 3})
	path := writeCSV(t, "people.csv", peopleCSV)
	tab := w.NewTab("")
	w.Open(path, tab)

	w.waitFor(func(ev Event) bool {
		_, ok := ev.(ProfileReady)
		return ok
	})
	cols, ok := w.Profile(dataset.ID(path))
	if !ok || len(cols) != 3 {
		t.Fatalf("Profile = %v, %v", cols, ok)
	}
	if !cols[1].Truncated || len(cols[1].Unique) != 3 {
		t.Errorf("name column should be capped at 3 values: %+v", cols[1])
	}
}

func TestUnknownTabAndDataset(t *testing.T) {
	w := newWorkspace(t)
	if err := w.SetFilter(42, "x"); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("SetFilter: %v", err)
	}
	if err := w.Open("x.csv", 42); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("Open: %v", err)
	}
	tab := w.NewTab("")
	if err := w.SetDataset(tab, "/nope.csv"); !errors.Is(err, registry.ErrUnknownDataset) {
		t.Errorf("SetDataset: %v", err)
	}
	if win, _ := w.Rows(42, 0, 10); win.Len() != 0 {
		t.Error("unknown tab should serve nothing")
	}
}

func TestRowsWindowIsClamped(t *testing.T) {
	w := newHarness(t, Options{Workers: 1, Overscan: 2})
	tab, _ := openPeople(t, w)

	win, _ := w.Rows(tab, 3, 50)
	if win.Offset != 0 || win.Len() != 5 || win.Total != 5 {
		t.Errorf("Offset/Len/Total = %d/%d/%d, want 0/5/5", win.Offset, win.Len(), win.Total)
	}
	if win.Indices[4] != 4 {
		t.Errorf("last index = %d, want 4", win.Indices[4])
	}
}

func TestIdentityViewHasNoIndices(t *testing.T) {
	w := newWorkspace(t)
	tab, id := openPeople(t, w)

	e, ok := w.Registry().Result(id, tab)
	if !ok {
		t.Fatal("identity view should be cached on load")
	}
	if e.Indices != nil {
		t.Errorf("identity view holds %d indices, want none", len(e.Indices))
	}
	if w.Pending(tab) || w.Computing(tab) {
		t.Error("identity view should not wait for the pool")
	}
}

func TestFilteredTabHidesMasterRowsAfterReload(t *testing.T) {
	w := newWorkspace(t)
	tab, id := openPeople(t, w)

	w.SetFilter(tab, "ar")
	w.waitFor(applied(tab))

	if err := os.WriteFile(id, []byte("id,name,city\n9,Barbara,Oslo\n8,Zed,Rome\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w.Reload(id)
	w.waitFor(loaded)

	// The new generation is registered; until its result applies the tab
	// shows nothing, never the unfiltered rows.
	got := names(t, w, tab)
	if w.Computing(tab) {
		if len(got) != 0 {
			t.Errorf("computing tab serves %v, want no rows", got)
		}
		if _, state := w.Rows(tab, 0, 10); state != registry.NotComputed {
			t.Errorf("state = %v, want not computed", state)
		}
		w.waitFor(applied(tab))
		got = names(t, w, tab)
	}
	if diff := cmp.Diff([]string{"Barbara"}, got); diff != "" {
		t.Errorf("rows after reload mismatch (-want +got):\n%s", diff)
	}
}

func TestSupersededLoadIsNotReported(t *testing.T) {
	w := newWorkspace(t)
	path := filepath.Join(t.TempDir(), "late.csv")
	tab := w.NewTab("")
	skipped := testutil.ToFloat64(metrics.RowsSkippedTotal)

	// The first load may or may not see the file; the reload does.
	if err := w.Open(path, tab); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("id,name,city\n1,Ann,Oslo\n2,Bob\n"), 0644); err != nil {
		t.Fatal(err)
	}
	w.Reload(path)

	ev := w.waitFor(loaded).(DatasetLoaded)
	if ev.Rows != 1 || ev.Skipped != 1 {
		t.Errorf("Rows/Skipped = %d/%d, want 1/1", ev.Rows, ev.Skipped)
	}
	deadline := time.Now().Add(5 * time.Second)
	for w.Loading(path) {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the superseded load")
		}
		w.events = append(w.events, w.Poll()...)
		time.Sleep(2 * time.Millisecond)
	}
	w.events = append(w.events, w.Poll()...)

	for _, ev := range w.events {
		switch ev.(type) {
		case LoadFailed, DatasetLoaded:
			t.Errorf("superseded load reported %T", ev)
		}
	}
	if got := testutil.ToFloat64(metrics.RowsSkippedTotal) - skipped; got != 1 {
		t.Errorf("skipped rows counted %v times, want once", got)
	}
}
