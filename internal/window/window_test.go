package window

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wethinkt/go-csvview/internal/dataset"
)

// seq is a Source of n rows whose master indices are reversed.
type seq int

func (s seq) Len() int              { return int(s) }
func (s seq) Index(i int) int       { return int(s) - 1 - i }
func (s seq) Row(i int) dataset.Row { return dataset.Row{strconv.Itoa(s.Index(i))} }

func TestSliceMiddle(t *testing.T) {
	w := Slice(seq(100), 40, 50, 5)
	if w.Offset != 35 || w.Len() != 20 || w.Total != 100 {
		t.Errorf("Offset/Len/Total = %d/%d/%d, want 35/20/100", w.Offset, w.Len(), w.Total)
	}
	if w.Indices[0] != 64 || w.Rows[0][0] != "64" {
		t.Errorf("first row = %d %v, want master index 64", w.Indices[0], w.Rows[0])
	}
}

func TestSliceShiftsAtEdges(t *testing.T) {
	tests := []struct {
		name             string
		n, start, end    int
		overscan         int
		wantOff, wantLen int
	}{
		{"top", 100, 0, 10, 5, 0, 20},
		{"bottom", 100, 90, 100, 5, 80, 20},
		{"short source", 8, 0, 8, 5, 0, 8},
		{"range past end", 30, 25, 60, 2, 21, 9},
		{"empty range", 100, 10, 10, 3, 7, 6},
		{"negative inputs", 10, -4, -1, -2, 0, 0},
		{"empty source", 0, 0, 10, 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Slice(seq(tt.n), tt.start, tt.end, tt.overscan)
			if w.Offset != tt.wantOff || w.Len() != tt.wantLen {
				t.Errorf("Offset/Len = %d/%d, want %d/%d", w.Offset, w.Len(), tt.wantOff, tt.wantLen)
			}
		})
	}
}

func TestSliceBoundsProperty(t *testing.T) {
	lengths := []int{0, 1, 2, 7, 33, 100}
	for _, n := range lengths {
		for start := 0; start <= n; start++ {
			for end := start; end <= n; end++ {
				for _, ov := range []int{0, 1, 3, 20} {
					checkWindow(t, n, start, end, ov)

					// The source may shrink between calls; the old range is reused.
					for _, shrunk := range []int{0, n / 2, max(n-1, 0)} {
						checkWindowClamped(t, shrunk, start, end, ov)
					}
				}
			}
		}
	}
}

func checkWindow(t *testing.T, n, start, end, ov int) {
	t.Helper()
	w := Slice(seq(n), start, end, ov)
	want := min(n, end-start+2*ov)
	if w.Len() < want {
		t.Fatalf("n=%d [%d,%d) ov=%d: got %d rows, want at least %d", n, start, end, ov, w.Len(), want)
	}
	checkInBounds(t, w, n)
}

func checkWindowClamped(t *testing.T, n, start, end, ov int) {
	t.Helper()
	w := Slice(seq(n), start, end, ov)
	e := min(end, n)
	s := min(start, e)
	if want := min(n, e-s+2*ov); w.Len() < want {
		t.Fatalf("shrunk n=%d [%d,%d) ov=%d: got %d rows, want at least %d", n, start, end, ov, w.Len(), want)
	}
	checkInBounds(t, w, n)
}

func checkInBounds(t *testing.T, w Window, n int) {
	t.Helper()
	if w.Offset < 0 || w.Offset+w.Len() > n {
		t.Fatalf("window [%d,%d) outside [0,%d)", w.Offset, w.Offset+w.Len(), n)
	}
	for _, idx := range w.Indices {
		if idx < 0 || idx >= n {
			t.Fatalf("index %d outside [0,%d)", idx, n)
		}
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		text, term string
		want       []Span
	}{
		{"Paris", "ar", []Span{{1, 3}}},
		{"banana", "ana", []Span{{1, 4}}},
		{"aaaa", "aa", []Span{{0, 2}, {2, 4}}},
		{"Paris", "AR", nil},
		{"Paris", "", nil},
		{"", "x", nil},
		{"ab", "abc", nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Highlight(tt.text, tt.term)); diff != "" {
			t.Errorf("Highlight(%q, %q) mismatch (-want +got):\n%s", tt.text, tt.term, diff)
		}
	}
}

func TestSegments(t *testing.T) {
	got := Segments("Marker", "ar")
	want := []Segment{{Text: "M"}, {Text: "ar", Match: true}, {Text: "ker"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	got = Segments("arar", "ar")
	want = []Segment{{Text: "ar", Match: true}, {Text: "ar", Match: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]Segment{{Text: "Oslo"}}, Segments("Oslo", "ar")); diff != "" {
		t.Errorf("no match mismatch (-want +got):\n%s", diff)
	}
}
