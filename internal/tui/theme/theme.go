// Package theme provides theming support for the table view.
package theme

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wethinkt/go-csvview/internal/config"
)

//go:embed themes/*.json
var embeddedThemes embed.FS

// Style defines colors and text attributes for a UI element.
type Style struct {
	Fg        string `json:"fg,omitempty"`
	Bg        string `json:"bg,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// Theme defines all styles used in the TUI.
type Theme struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	Accent         string `json:"accent,omitempty"`
	BorderActive   string `json:"border_active,omitempty"`
	BorderInactive string `json:"border_inactive,omitempty"`

	TextPrimary   Style `json:"text_primary,omitempty"`
	TextSecondary Style `json:"text_secondary,omitempty"`
	TextMuted     Style `json:"text_muted,omitempty"`

	// Table
	Header       Style `json:"header,omitempty"`
	HeaderSorted Style `json:"header_sorted,omitempty"`
	HeaderFilter Style `json:"header_filter,omitempty"` // column the filter is restricted to
	Cell         Style `json:"cell,omitempty"`
	CellAlt      Style `json:"cell_alt,omitempty"` // every other row
	RowSelected  Style `json:"row_selected,omitempty"`
	Match        Style `json:"match,omitempty"`

	// Chrome
	TabActive   Style `json:"tab_active,omitempty"`
	TabInactive Style `json:"tab_inactive,omitempty"`
	StatusBar   Style `json:"status_bar,omitempty"`
	StatusError Style `json:"status_error,omitempty"`
	Badge       Style `json:"badge,omitempty"`
	Panel       Style `json:"panel,omitempty"`
}

// ThemeMeta holds metadata about an available theme.
type ThemeMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Path        string `json:"path"`     // File path (empty for embedded)
	Embedded    bool   `json:"embedded"` // True if this is a built-in theme
}

// DefaultTheme returns the embedded dark theme.
func DefaultTheme() Theme {
	theme, _ := LoadEmbedded("dark")
	return theme
}

// LoadEmbedded loads a theme from the embedded themes.
func LoadEmbedded(name string) (Theme, error) {
	data, err := embeddedThemes.ReadFile("themes/" + name + ".json")
	if err != nil {
		return Theme{}, err
	}
	var theme Theme
	if err := json.Unmarshal(data, &theme); err != nil {
		return Theme{}, err
	}
	return theme, nil
}

// ListEmbedded returns the names of all embedded themes.
func ListEmbedded() []string {
	entries, err := embeddedThemes.ReadDir("themes")
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return names
}

// ThemesDir returns the path to the user themes directory.
func ThemesDir() (string, error) {
	configDir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "themes"), nil
}

// ListAvailable returns the embedded themes followed by user themes.
func ListAvailable() []ThemeMeta {
	var themes []ThemeMeta
	for _, name := range ListEmbedded() {
		t, err := LoadEmbedded(name)
		if err != nil {
			continue
		}
		themes = append(themes, ThemeMeta{Name: name, Description: t.Description, Embedded: true})
	}

	dir, err := ThemesDir()
	if err != nil {
		return themes
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return themes
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		path := filepath.Join(dir, entry.Name())
		t, err := LoadByName(name)
		if err != nil {
			continue
		}
		themes = append(themes, ThemeMeta{Name: name, Description: t.Description, Path: path})
	}
	return themes
}

// LoadByName loads a theme by name, checking user themes first, then embedded.
// User themes start from the dark theme so they may define only some fields.
func LoadByName(name string) (Theme, error) {
	if dir, err := ThemesDir(); err == nil {
		if data, err := os.ReadFile(filepath.Join(dir, name+".json")); err == nil {
			theme := DefaultTheme()
			if err := json.Unmarshal(data, &theme); err == nil {
				theme.Name = name
				return theme, nil
			}
		}
	}
	return LoadEmbedded(name)
}

var (
	mu      sync.RWMutex
	current *Theme
)

// Set makes the named theme current. Unknown names fall back to dark and
// return the lookup error.
func Set(name string) error {
	t, err := LoadByName(name)
	if err != nil {
		t = DefaultTheme()
	}
	mu.Lock()
	current = &t
	mu.Unlock()
	return err
}

// Current returns the current theme (dark until Set is called).
func Current() Theme {
	mu.RLock()
	c := current
	mu.RUnlock()
	if c == nil {
		return DefaultTheme()
	}
	return *c
}

// GetAccent returns the accent color, with fallback.
func (t Theme) GetAccent() string {
	if t.Accent != "" {
		return t.Accent
	}
	return "#7D56F4"
}

// GetBorderActive returns the active border color.
func (t Theme) GetBorderActive() string {
	if t.BorderActive != "" {
		return t.BorderActive
	}
	return t.GetAccent()
}

// GetBorderInactive returns the inactive border color.
func (t Theme) GetBorderInactive() string {
	if t.BorderInactive != "" {
		return t.BorderInactive
	}
	return "#444444"
}
