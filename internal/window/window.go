// Package window serves the slice of a row sequence a virtualized table
// has on screen, plus overscan, and marks filter matches for display.
package window

import (
	"strings"

	"github.com/wethinkt/go-csvview/internal/dataset"
)

// Source is a row sequence, such as registry.Rows.
type Source interface {
	Len() int
	Index(i int) int
	Row(i int) dataset.Row
}

// Window is a contiguous run of a Source.
type Window struct {
	// Offset is the position of Rows[0] within the source.
	Offset int
	// Total is the source length at the time of the call.
	Total int
	// Indices holds the master row index of every row.
	Indices []int
	Rows    []dataset.Row
}

// Len returns the number of rows in the window.
func (w Window) Len() int { return len(w.Rows) }

// Slice returns the rows of src needed to draw positions [start, end) with
// overscan rows on each side. The range is clamped to the current length of
// src. Near either edge the window shifts inward, so it always holds
// min(len, end-start+2*overscan) rows.
func Slice(src Source, start, end, overscan int) Window {
	n := src.Len()
	overscan = max(overscan, 0)
	end = min(max(end, 0), n)
	start = min(max(start, 0), end)

	lo, hi := start-overscan, end+overscan
	if lo < 0 {
		hi -= lo
		lo = 0
	}
	if hi > n {
		lo -= hi - n
		hi = n
	}
	lo = max(lo, 0)

	w := Window{
		Offset:  lo,
		Total:   n,
		Indices: make([]int, 0, hi-lo),
		Rows:    make([]dataset.Row, 0, hi-lo),
	}
	for i := lo; i < hi; i++ {
		w.Indices = append(w.Indices, src.Index(i))
		w.Rows = append(w.Rows, src.Row(i))
	}
	return w
}

// Span is a half-open byte range [Start, End) of a match.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Highlight returns every non-overlapping occurrence of term in text,
// left to right. The match is case-sensitive; an empty term matches nothing.
func Highlight(text, term string) []Span {
	if term == "" {
		return nil
	}
	var spans []Span
	for off := 0; off <= len(text)-len(term); {
		i := strings.Index(text[off:], term)
		if i < 0 {
			break
		}
		start := off + i
		spans = append(spans, Span{Start: start, End: start + len(term)})
		off = start + len(term)
	}
	return spans
}

// Segment is a piece of text that either matched the term or did not.
type Segment struct {
	Text  string
	Match bool
}

// Segments splits text around the matches of term.
func Segments(text, term string) []Segment {
	spans := Highlight(text, term)
	if len(spans) == 0 {
		return []Segment{{Text: text}}
	}
	segs := make([]Segment, 0, 2*len(spans)+1)
	prev := 0
	for _, sp := range spans {
		if sp.Start > prev {
			segs = append(segs, Segment{Text: text[prev:sp.Start]})
		}
		segs = append(segs, Segment{Text: text[sp.Start:sp.End], Match: true})
		prev = sp.End
	}
	if prev < len(text) {
		segs = append(segs, Segment{Text: text[prev:]})
	}
	return segs
}
