package theme

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/wethinkt/go-csvview/internal/config"
)

func TestEmbeddedThemesLoad(t *testing.T) {
	names := ListEmbedded()
	for _, want := range []string{"dark", "light"} {
		if !slices.Contains(names, want) {
			t.Fatalf("embedded theme %q missing from %v", want, names)
		}
	}
	for _, name := range names {
		th, err := LoadEmbedded(name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if th.Header.Fg == "" || th.Match.Bg == "" || th.RowSelected.Bg == "" {
			t.Errorf("%s: table styles incomplete: %+v", name, th)
		}
	}
}

func TestUserThemeOverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	dir := filepath.Join(home, "themes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mine.json"), []byte(`{"accent": "#FF0000"}`), 0644); err != nil {
		t.Fatal(err)
	}

	th, err := LoadByName("mine")
	if err != nil {
		t.Fatalf("LoadByName: %v", err)
	}
	if th.Accent != "#FF0000" || th.Name != "mine" {
		t.Errorf("override not applied: %+v", th)
	}
	if th.Header.Fg == "" {
		t.Error("unset fields should keep the dark defaults")
	}

	var found bool
	for _, m := range ListAvailable() {
		if m.Name == "mine" && !m.Embedded {
			found = true
		}
	}
	if !found {
		t.Error("user theme not listed")
	}
}

func TestSetUnknownFallsBack(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	if err := Set("does-not-exist"); err == nil {
		t.Error("expected error for unknown theme")
	}
	if Current().Name != "dark" {
		t.Errorf("Current = %q, want dark", Current().Name)
	}
	if err := Set("light"); err != nil {
		t.Fatal(err)
	}
	if Current().Name != "light" {
		t.Errorf("Current = %q, want light", Current().Name)
	}
}

func TestColorFallbacks(t *testing.T) {
	var th Theme
	if th.GetAccent() == "" || th.GetBorderActive() != th.GetAccent() || th.GetBorderInactive() == "" {
		t.Error("fallback colors missing")
	}
}
