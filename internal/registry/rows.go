package registry

import "github.com/wethinkt/go-csvview/internal/dataset"

// Rows is a read-only row sequence over a store: either the master rows in
// file order or a computed selection of them. The zero value is empty.
type Rows struct {
	store    *dataset.Store
	indices  []int
	computed bool
}

// NewRows returns a sequence over store. A nil indices slice selects every
// row in file order.
func NewRows(store *dataset.Store, indices []int) Rows {
	return Rows{store: store, indices: indices, computed: indices != nil}
}

// Len returns the number of rows in the sequence.
func (r Rows) Len() int {
	if r.computed {
		return len(r.indices)
	}
	return r.store.Len()
}

// Index returns the master row index of position i.
func (r Rows) Index(i int) int {
	if r.computed {
		return r.indices[i]
	}
	return i
}

// Row returns the row at position i.
func (r Rows) Row(i int) dataset.Row {
	return r.store.Rows[r.Index(i)]
}

// Store returns the underlying store, which may be nil.
func (r Rows) Store() *dataset.Store {
	return r.store
}

// Indices returns the master indices of the whole sequence.
func (r Rows) Indices() []int {
	if r.computed {
		return r.indices
	}
	out := make([]int, r.store.Len())
	for i := range out {
		out[i] = i
	}
	return out
}
