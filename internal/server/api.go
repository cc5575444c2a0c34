package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/profile"
	"github.com/wethinkt/go-csvview/internal/registry"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DatasetInfo describes one registered dataset.
type DatasetInfo struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	Rows       int      `json:"rows"`
	Columns    []string `json:"columns"`
	Skipped    int      `json:"skipped"`
	Delimiter  string   `json:"delimiter"`
	Generation uint64   `json:"generation"`
}

// DatasetsResponse lists the registered datasets.
type DatasetsResponse struct {
	Datasets []DatasetInfo `json:"datasets"`
}

// ColumnsResponse holds the column profiles of one dataset.
type ColumnsResponse struct {
	Path    string           `json:"path"`
	Columns []profile.Column `json:"columns"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, msg string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: msg})
}

// writeLookupError maps catalog errors to HTTP status codes.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrUnknownDataset):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, dataset.ErrUnknownColumn):
		writeError(w, http.StatusBadRequest, "invalid_column", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListDatasets returns every registered dataset.
func (s *HTTPServer) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DatasetsResponse{Datasets: s.catalog.Datasets()})
}

// handleGetColumns returns the column profiles of ?path=.
func (s *HTTPServer) handleGetColumns(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "missing_path", "path query parameter is required")
		return
	}
	cols, err := s.catalog.Profile(path)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ColumnsResponse{Path: dataset.ID(path), Columns: cols})
}

// handleGetRows returns a window of a filtered, sorted dataset.
//
// Query parameters: path (required), filter, column, sort, desc, start, end
// and overscan. column and sort take a header name or a 0-based index.
func (s *HTTPServer) handleGetRows(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	path := params.Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "missing_path", "path query parameter is required")
		return
	}

	ints := map[string]int{}
	for _, name := range []string{"start", "end", "overscan"} {
		v := params.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", name+" must be a non-negative integer")
			return
		}
		ints[name] = n
	}
	desc := false
	if v := params.Get("desc"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "desc must be a boolean")
			return
		}
		desc = b
	}

	store, err := s.catalog.Store(path)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	q, err := buildQuery(store, params.Get("filter"), params.Get("column"), params.Get("sort"), desc)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	rows, err := s.catalog.Query(path, q)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	start, end := clampRange(ints["start"], ints["end"])
	writeJSON(w, http.StatusOK, buildRows(rows, q, start, end, ints["overscan"]))
}
