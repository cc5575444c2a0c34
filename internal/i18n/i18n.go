// Package i18n localizes the strings csvview shows in the terminal.
//
// Usage:
//
//	i18n.Init(i18n.ResolveLocale(cfg.Language))             // at startup
//	i18n.T("tui.status.noDataset", "No dataset open")          // simple string
//	i18n.Tf("tui.status.loading", "Loading %s", name)          // with fmt args
//	i18n.Tn("tui.rows", "{{.Count}} row", "{{.Count}} rows", n) // plural
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// EnvLang overrides the configured language.
const EnvLang = "CSVVIEW_LANG"

//go:embed locales/*.toml
var localeFS embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	active    language.Tag
	mu        sync.RWMutex
)

// Init loads the embedded locales and selects the closest match for lang.
// Unknown languages fall back to English. Safe to call more than once.
func Init(lang string) {
	mu.Lock()
	defer mu.Unlock()

	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, _ := localeFS.ReadDir("locales")
	for _, e := range entries {
		_, _ = bundle.LoadMessageFileFS(localeFS, "locales/"+e.Name())
	}

	active = match(bundle.LanguageTags(), lang)
	localizer = i18n.NewLocalizer(bundle, active.String(), "en")
}

// Active returns the language Init selected.
func Active() language.Tag {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// Available returns the languages that ship with csvview.
func Available() []language.Tag {
	mu.RLock()
	defer mu.RUnlock()
	if bundle == nil {
		return []language.Tag{language.English}
	}
	return bundle.LanguageTags()
}

func match(supported []language.Tag, lang string) language.Tag {
	if len(supported) == 0 {
		return language.English
	}
	desired, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(desired) == 0 {
		return language.English
	}
	tag, _, conf := language.NewMatcher(supported).Match(desired...)
	if conf == language.No {
		return language.English
	}
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return s
		}
	}
	return language.English
}

// T returns the localized string for id, or defaultMsg when no locale
// defines it.
func T(id string, defaultMsg string) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	if l == nil {
		return defaultMsg
	}
	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: id, Other: defaultMsg},
	})
	if err != nil {
		return defaultMsg
	}
	return s
}

// Tf is T with fmt.Sprintf-style arguments.
func Tf(id string, defaultMsg string, args ...any) string {
	return fmt.Sprintf(T(id, defaultMsg), args...)
}

// Tn returns the plural form for count. one and other are templates that
// may use {{.Count}}.
func Tn(id string, one string, other string, count int) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	fallback := func() string {
		msg := other
		if count == 1 {
			msg = one
		}
		return strings.ReplaceAll(msg, "{{.Count}}", fmt.Sprint(count))
	}
	if l == nil {
		return fallback()
	}
	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{ID: id, One: one, Other: other},
		PluralCount:    count,
		TemplateData:   map[string]int{"Count": count},
	})
	if err != nil {
		return fallback()
	}
	return s
}

// ResolveLocale picks the language to use.
// Priority: CSVVIEW_LANG > configLang > LC_ALL > LANG > "en".
func ResolveLocale(configLang string) string {
	if v := os.Getenv(EnvLang); v != "" {
		return v
	}
	if configLang != "" {
		return configLang
	}
	for _, env := range []string{"LC_ALL", "LANG"} {
		if v := os.Getenv(env); v != "" && v != "C" && v != "POSIX" {
			return normalizeLocale(v)
		}
	}
	return "en"
}

// normalizeLocale converts a POSIX locale to BCP 47:
// "de_DE.UTF-8" -> "de-DE".
func normalizeLocale(posix string) string {
	if i := strings.IndexAny(posix, ".@"); i >= 0 {
		posix = posix[:i]
	}
	return strings.ReplaceAll(posix, "_", "-")
}
