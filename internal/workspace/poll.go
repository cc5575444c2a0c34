package workspace

import (
	"github.com/wethinkt/go-csvview/internal/engine"
	"github.com/wethinkt/go-csvview/internal/metrics"
	"github.com/wethinkt/go-csvview/internal/tuilog"
	"github.com/wethinkt/go-csvview/internal/view"
)

// Event reports something Poll applied.
type Event interface {
	isEvent()
}

// DatasetLoaded is sent when a dataset was read and registered.
type DatasetLoaded struct {
	Path    string
	Rows    int
	Skipped int
}

// LoadFailed is sent when a dataset could not be read. Nothing is registered.
type LoadFailed struct {
	Path string
	Err  error
}

// ResultApplied is sent when a computed result became the tab's rows.
type ResultApplied struct {
	Tab view.ID
}

// ResultDropped is sent when a result arrived for inputs the tab no longer has.
type ResultDropped struct {
	Tab view.ID
}

// ProfileReady is sent when column profiles for a dataset are available.
type ProfileReady struct {
	Path string
}

func (DatasetLoaded) isEvent() {}
func (LoadFailed) isEvent()    {}
func (ResultApplied) isEvent() {}
func (ResultDropped) isEvent() {}
func (ProfileReady) isEvent()  {}

// Poll applies every completed load, computation and profile without
// blocking and returns what happened, in the order it was applied.
func (w *Workspace) Poll() []Event {
	var events []Event
	results := w.pool.Results()
	for {
		select {
		case lr := <-w.loads:
			if ev := w.applyLoad(lr); ev != nil {
				events = append(events, ev)
			}
		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			events = append(events, w.applyResult(res))
		case pr := <-w.profiles:
			if w.reg.SetProfile(pr.path, pr.generation, pr.columns) {
				events = append(events, ProfileReady{Path: pr.path})
			}
		default:
			return events
		}
	}
}

// applyLoad registers a completed load. It returns nil for loads that a
// newer load of the same path superseded.
func (w *Workspace) applyLoad(lr loadResult) Event {
	w.inFlight[lr.path]--
	if w.inFlight[lr.path] <= 0 {
		delete(w.inFlight, lr.path)
	}
	metrics.LoadDurationSeconds.Observe(lr.elapsed.Seconds())

	// A newer load of the same path was started after this one.
	if lr.seq != w.loadSeq[lr.path] {
		metrics.DatasetsLoadedTotal.WithLabelValues("superseded").Inc()
		tuilog.Log.Debug("Discarding superseded load", "path", lr.path, "seq", lr.seq, "error", lr.err)
		return nil
	}

	if lr.err != nil {
		metrics.DatasetsLoadedTotal.WithLabelValues("error").Inc()
		tuilog.Log.Error("Failed to load dataset", "path", lr.path, "error", lr.err)
		return LoadFailed{Path: lr.path, Err: lr.err}
	}
	metrics.DatasetsLoadedTotal.WithLabelValues("ok").Inc()
	metrics.RowsSkippedTotal.Add(float64(lr.store.Skipped))

	store := w.reg.Register(lr.store)
	for _, id := range w.order {
		v := w.views[id]
		if v.Dataset != store.Path {
			continue
		}
		w.reg.Invalidate(store.Path, id)
		w.recompute(v)
	}
	w.startProfile(store)
	return DatasetLoaded{Path: store.Path, Rows: store.Len(), Skipped: store.Skipped}
}

func (w *Workspace) applyResult(res engine.Result) Event {
	var current view.Snapshot
	if v, ok := w.views[res.View]; ok {
		current = v.Snapshot(w.reg.Generation(v.Dataset), w.global)
	}
	if w.reg.Apply(res, current) {
		return ResultApplied{Tab: res.View}
	}
	return ResultDropped{Tab: res.View}
}
