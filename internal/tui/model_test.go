package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/wethinkt/go-csvview/internal/dataset"
	"github.com/wethinkt/go-csvview/internal/watch"
	"github.com/wethinkt/go-csvview/internal/workspace"
)

const peopleCSV = "id,name,city\n1,Ann,Oslo\n2,Bob,Paris\n3,Cy,Rome\n4,Dee,Paris\n"

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

// waitFor polls the workspace until cond holds.
func waitFor(t *testing.T, m Model, cond func(Model) bool) Model {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond(m) {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for workspace")
		}
		time.Sleep(5 * time.Millisecond)
		m = update(m, frameMsg(time.Now()))
	}
	return m
}

func loadedModel(t *testing.T, content string) Model {
	t.Helper()
	ws := workspace.New(workspace.Options{Workers: 2, Overscan: 2})
	t.Cleanup(ws.Close)

	m := NewModel(ws, Options{Paths: []string{writeCSV(t, "people.csv", content)}})
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 20})
	return waitFor(t, m, func(m Model) bool { return m.rowCount() > 0 })
}

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "ctrl+w":
		return tea.KeyPressMsg{Code: 'w', Mod: tea.ModCtrl}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m = update(m, keyPress(k))
	}
	return m
}

func names(t *testing.T, m Model) []string {
	t.Helper()
	rows, _ := m.rows()
	out := make([]string, rows.Len())
	for i := range out {
		out[i] = rows.Row(i)[1]
	}
	return out
}

func TestNewModelOpensOneTabPerPath(t *testing.T) {
	ws := workspace.New(workspace.Options{Workers: 1})
	t.Cleanup(ws.Close)

	a := writeCSV(t, "a.csv", "x\n1\n")
	b := writeCSV(t, "b.csv", "y\n2\n")
	m := NewModel(ws, Options{Paths: []string{a, b}})

	tabs := ws.Tabs()
	if len(tabs) != 2 {
		t.Fatalf("tabs = %d, want 2", len(tabs))
	}
	if m.active != tabs[0] {
		t.Errorf("active = %d, want first tab %d", m.active, tabs[0])
	}
	info, _ := ws.Tab(tabs[1])
	if info.Dataset != dataset.ID(b) {
		t.Errorf("second tab dataset = %q, want %q", info.Dataset, dataset.ID(b))
	}
}

func TestNewModelWithoutPathsHasEmptyTab(t *testing.T) {
	ws := workspace.New(workspace.Options{Workers: 1})
	t.Cleanup(ws.Close)

	m := NewModel(ws, Options{})
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 10})
	if len(ws.Tabs()) != 1 {
		t.Fatalf("tabs = %d, want 1", len(ws.Tabs()))
	}
	if !strings.Contains(m.viewContent(), "No dataset open") {
		t.Error("empty tab should say no dataset is open")
	}
}

func TestCursorMovementIsClamped(t *testing.T) {
	m := loadedModel(t, peopleCSV)

	m = press(m, "G")
	if got := m.cur().row; got != 3 {
		t.Errorf("after G row = %d, want 3", got)
	}
	m = press(m, "j", "down")
	if got := m.cur().row; got != 3 {
		t.Errorf("moving past the end: row = %d, want 3", got)
	}
	m = press(m, "g", "k")
	if got := m.cur().row; got != 0 {
		t.Errorf("moving past the start: row = %d, want 0", got)
	}
}

func TestFilterKeySubmitsWhileTyping(t *testing.T) {
	m := loadedModel(t, peopleCSV)

	m = press(m, "/", "P", "a", "r")
	if m.mode != modeFilter {
		t.Fatalf("mode = %v, want filter", m.mode)
	}
	if info, _ := m.ws.Tab(m.active); info.Filter != "Par" {
		t.Errorf("tab filter = %q, want %q", info.Filter, "Par")
	}
	m = waitFor(t, m, func(m Model) bool { return m.rowCount() == 2 })
	m = press(m, "enter")
	if m.mode != modeTable {
		t.Errorf("enter should leave filter mode")
	}
	if got := names(t, m); strings.Join(got, ",") != "Bob,Dee" {
		t.Errorf("filtered rows = %v, want [Bob Dee]", got)
	}

	m = press(m, "/", "esc")
	if info, _ := m.ws.Tab(m.active); info.Filter != "" {
		t.Errorf("esc should clear the filter, got %q", info.Filter)
	}
	waitFor(t, m, func(m Model) bool { return m.rowCount() == 4 })
}

func TestFilterDebounce(t *testing.T) {
	m := loadedModel(t, peopleCSV)
	m.opts.FilterDebounce = time.Hour

	m = press(m, "/", "B")
	if info, _ := m.ws.Tab(m.active); info.Filter != "" {
		t.Fatalf("debounced filter applied early: %q", info.Filter)
	}
	m = press(m, "o")

	// A tick for an older keystroke is ignored.
	m = update(m, filterDebounceMsg{seq: m.filterSeq - 1})
	if info, _ := m.ws.Tab(m.active); info.Filter != "" {
		t.Fatalf("stale debounce applied filter %q", info.Filter)
	}
	m = update(m, filterDebounceMsg{seq: m.filterSeq})
	if info, _ := m.ws.Tab(m.active); info.Filter != "Bo" {
		t.Errorf("tab filter = %q, want %q", info.Filter, "Bo")
	}
}

func TestGlobalFilterKey(t *testing.T) {
	m := loadedModel(t, peopleCSV)

	m = press(m, "F", "R", "o", "enter")
	if got := m.ws.GlobalFilter(); got != "Ro" {
		t.Errorf("global filter = %q, want %q", got, "Ro")
	}
	m = waitFor(t, m, func(m Model) bool { return m.rowCount() == 1 })
	if !strings.Contains(m.renderTabs(), "Ro") {
		t.Error("tab bar should show the global filter")
	}
}

func TestSortKeyCycles(t *testing.T) {
	m := loadedModel(t, peopleCSV)

	m = press(m, "l", "s")
	info, _ := m.ws.Tab(m.active)
	if !info.Sort.Active || info.Sort.Column != 1 || info.Sort.Direction != dataset.Ascending {
		t.Fatalf("after one press sort = %+v, want name ascending", info.Sort)
	}
	m = press(m, "s")
	m = waitFor(t, m, func(m Model) bool {
		got := names(t, m)
		return len(got) == 4 && got[0] == "Dee"
	})
	if got := strings.Join(names(t, m), ","); got != "Dee,Cy,Bob,Ann" {
		t.Errorf("descending names = %s", got)
	}
	m = press(m, "s")
	if info, _ := m.ws.Tab(m.active); info.Sort.Active {
		t.Errorf("third press should clear the sort, got %+v", info.Sort)
	}
}

func TestFilterColumnKeyToggles(t *testing.T) {
	m := loadedModel(t, peopleCSV)

	m = press(m, "l", "l", "c")
	if info, _ := m.ws.Tab(m.active); info.FilterColumn != 2 {
		t.Errorf("filter column = %d, want 2", info.FilterColumn)
	}
	m = press(m, "c")
	if info, _ := m.ws.Tab(m.active); info.FilterColumn >= 0 {
		t.Errorf("second press should filter all columns, got %d", info.FilterColumn)
	}
}

func TestHideAndShowColumns(t *testing.T) {
	m := loadedModel(t, peopleCSV)

	m = press(m, "x")
	header := m.ws.Header(m.active)
	if header[0].Visible {
		t.Error("column 0 should be hidden")
	}
	if got := m.cur().col; got != 1 {
		t.Errorf("focus = %d, want next visible column 1", got)
	}

	// The last visible column cannot be hidden.
	m = press(m, "x", "x")
	if got := len(visibleColumns(m.ws.Header(m.active))); got != 1 {
		t.Errorf("visible columns = %d, want 1", got)
	}

	m = press(m, "X")
	if got := len(visibleColumns(m.ws.Header(m.active))); got != 3 {
		t.Errorf("visible columns after X = %d, want 3", got)
	}
}

func TestTabKeys(t *testing.T) {
	m := loadedModel(t, peopleCSV)
	first := m.active

	m = press(m, "t")
	if got := len(m.ws.Tabs()); got != 2 {
		t.Fatalf("tabs = %d, want 2", got)
	}
	if m.active == first {
		t.Error("new tab should become active")
	}
	info, _ := m.ws.Tab(m.active)
	firstInfo, _ := m.ws.Tab(first)
	if info.Dataset != firstInfo.Dataset {
		t.Errorf("new tab dataset = %q, want %q", info.Dataset, firstInfo.Dataset)
	}

	m = press(m, "tab")
	if m.active != first {
		t.Errorf("tab key should cycle back to the first tab")
	}

	m = press(m, "ctrl+w")
	if got := len(m.ws.Tabs()); got != 1 {
		t.Fatalf("tabs after close = %d, want 1", got)
	}
	m = press(m, "ctrl+w")
	if got := len(m.ws.Tabs()); got != 1 {
		t.Errorf("the last tab cannot be closed, tabs = %d", got)
	}
}

func TestViewShowsHeaderAndRows(t *testing.T) {
	m := loadedModel(t, peopleCSV)

	out := m.viewContent()
	for _, want := range []string{"name", "city", "Ann", "Paris", "people.csv", "row 1/4"} {
		if !strings.Contains(out, want) {
			t.Errorf("view is missing %q", want)
		}
	}

	m = press(m, "?")
	if !m.help.ShowAll {
		t.Fatal("? should show the help screen")
	}
	if out := m.viewContent(); !strings.Contains(out, "filter all tabs") {
		t.Error("help screen should list the global filter key")
	}
}

func TestViewShowsNoMatches(t *testing.T) {
	m := loadedModel(t, peopleCSV)

	m = press(m, "/", "z", "z", "enter")
	m = waitFor(t, m, func(m Model) bool { return m.rowCount() == 0 })
	if out := m.viewContent(); !strings.Contains(out, "No matching rows") {
		t.Error("empty result should say no rows match")
	}
}

func TestLoadFailureShowsInStatus(t *testing.T) {
	ws := workspace.New(workspace.Options{Workers: 1})
	t.Cleanup(ws.Close)

	m := NewModel(ws, Options{Paths: []string{filepath.Join(t.TempDir(), "missing.csv")}})
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 10})
	m = waitFor(t, m, func(m Model) bool { return m.statusErr })
	if !strings.Contains(m.status, "missing.csv") {
		t.Errorf("status = %q, want the failing file name", m.status)
	}
}

func TestExportKeyWritesView(t *testing.T) {
	m := loadedModel(t, peopleCSV)

	m = press(m, "/", "P", "a", "r", "enter")
	m = waitFor(t, m, func(m Model) bool { return m.rowCount() == 2 })
	m = press(m, "l", "x")

	next, cmd := m.Update(keyPress("w"))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("w should return an export command")
	}
	done, ok := cmd().(exportDoneMsg)
	if !ok || done.err != nil {
		t.Fatalf("export result = %+v", done)
	}
	data, err := os.ReadFile(done.path)
	if err != nil {
		t.Fatal(err)
	}
	want := "id,city\n2,Paris\n4,Paris\n"
	if string(data) != want {
		t.Errorf("export = %q, want %q", data, want)
	}
	if !strings.HasSuffix(done.path, "people.view.csv") {
		t.Errorf("export path = %q", done.path)
	}

	m = update(m, done)
	if m.statusErr || !strings.Contains(m.status, "2 rows") {
		t.Errorf("status = %q", m.status)
	}
}

func activePath(t *testing.T, m Model) string {
	t.Helper()
	info, ok := m.ws.Tab(m.active)
	if !ok || info.Dataset == "" {
		t.Fatal("active tab has no dataset")
	}
	return info.Dataset
}

func TestFileChangeDuringLoadReloads(t *testing.T) {
	m := loadedModel(t, peopleCSV)
	path := activePath(t, m)

	// A reload is in flight and may read either version of the file.
	m.ws.Reload(path)
	if !m.ws.Loading(path) {
		t.Fatal("reload should be in flight")
	}
	if err := os.WriteFile(path, []byte("id,name,city\n7,Gus,Lima\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m = update(m, fileChangedMsg{event: watch.Event{Path: path, EventType: "modified"}})
	if !strings.Contains(m.status, "Reloading") {
		t.Errorf("status = %q, want a reloading notice", m.status)
	}

	m = waitFor(t, m, func(m Model) bool { return !m.ws.Loading(path) })
	if got := names(t, m); strings.Join(got, ",") != "Gus" {
		t.Errorf("rows after change = %v, want [Gus]", got)
	}
}

func TestFilteredTabNeverShowsMasterRowsAfterReload(t *testing.T) {
	m := loadedModel(t, peopleCSV)
	path := activePath(t, m)

	m = press(m, "/", "P", "a", "r", "enter")
	m = waitFor(t, m, func(m Model) bool { return m.rowCount() == 2 })

	if err := os.WriteFile(path, []byte("id,name,city\n5,Eve,Paris\n6,Fay,Oslo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	m.ws.Reload(path)

	sawComputing := false
	m = waitFor(t, m, func(m Model) bool {
		out := m.viewContent()
		if strings.Contains(out, "Fay") {
			t.Fatalf("filtered tab shows an unfiltered row:\n%s", out)
		}
		if m.ws.Computing(m.active) {
			sawComputing = true
			if !strings.Contains(out, "Computing...") {
				t.Errorf("computing tab should say so:\n%s", out)
			}
			if m.rowCount() != 0 {
				t.Errorf("computing tab has %d rows, want 0", m.rowCount())
			}
		}
		return strings.Join(names(t, m), ",") == "Eve"
	})
	t.Logf("saw computing placeholder: %v", sawComputing)
}
