package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wethinkt/go-csvview/internal/tuilog"
)

// Options controls how a dataset is read.
type Options struct {
	// Delimiter separates fields. Zero sniffs it from the header line.
	Delimiter rune
	// MaxRows stops reading after this many records (0 = no limit).
	MaxRows int
}

// LoadError describes a dataset that could not be read.
type LoadError struct {
	Path string
	Line int // 0 when the failure is not tied to a line
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ctxCheckEvery controls how often Read looks at ctx while scanning records.
const ctxCheckEvery = 4096

// ID normalizes a path into a dataset identifier.
func ID(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(path)
}

// Load reads the delimited-text file at path. The first record becomes the
// header; records whose field count differs from the header are skipped
// and counted in Store.Skipped.
func Load(ctx context.Context, path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, &LoadError{Err: ErrEmptyPath}
	}
	id := ID(path)
	defer tuilog.Log.Timed("dataset.Load", "path", id)()

	f, err := os.Open(id)
	if err != nil {
		return nil, &LoadError{Path: id, Err: err}
	}
	defer f.Close()

	if opts.Delimiter == 0 && strings.EqualFold(filepath.Ext(id), ".tsv") {
		opts.Delimiter = '\t'
	}
	return Read(ctx, f, id, opts)
}

// Read parses delimited text from r. name becomes the Store's Path.
func Read(ctx context.Context, r io.Reader, name string, opts Options) (*Store, error) {
	br := bufio.NewReader(r)

	delim := opts.Delimiter
	if delim == 0 {
		first, err := br.Peek(peekSize(br))
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, &LoadError{Path: name, Err: err}
		}
		delim = SniffDelimiter(string(first))
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1 // field counts are checked here so bad rows can be skipped
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &LoadError{Path: name, Err: ErrNoHeader}
	}
	if err != nil {
		return nil, wrapCSVError(name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	store := &Store{
		Path:      name,
		Columns:   header,
		Rows:      make([]Row, 0, 1024),
		Delimiter: delim,
	}

	for n := 0; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, &LoadError{Path: name, Err: err}
			}
		}
		if opts.MaxRows > 0 && len(store.Rows) >= opts.MaxRows {
			break
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSVError(name, err)
		}
		if len(rec) != len(header) {
			store.Skipped++
			line, _ := cr.FieldPos(0)
			tuilog.Log.Debug("Skipping malformed row", "path", name, "line", line,
				"fields", len(rec), "want", len(header))
			continue
		}
		store.Rows = append(store.Rows, Row(rec))
	}

	if store.Skipped > 0 {
		tuilog.Log.Warn("Dropped rows with wrong field count", "path", name, "skipped", store.Skipped)
	}
	tuilog.Log.Info("Dataset read", "path", name, "rows", len(store.Rows), "columns", len(header))
	return store, nil
}

func wrapCSVError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &LoadError{Path: name, Line: pe.Line, Err: pe.Err}
	}
	return &LoadError{Path: name, Err: err}
}

// peekSize bounds the sniffing window to what the reader has buffered.
func peekSize(br *bufio.Reader) int {
	return min(br.Size(), 4096)
}

// SniffDelimiter picks the most frequent candidate separator on the first
// line of sample, ignoring quoted sections. Comma wins ties and the empty case.
func SniffDelimiter(sample string) rune {
	if i := strings.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}

	candidates := []rune{',', ';', '\t', '|'}
	counts := make(map[rune]int, len(candidates))
	inQuote := false
	for _, r := range sample {
		if r == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			counts[r]++
		}
	}

	best, bestCount := ',', counts[',']
	for _, c := range candidates[1:] {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
