// README: Localized unit words and day-class names for quote descriptions, loaded from embedded YAML catalogs.
package labels

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const Fallback = "en"

//go:embed catalog/*.yaml
var catalogFS embed.FS

type Unit string

const (
	Nights     Unit = "nights"
	Rooms      Unit = "rooms"
	Players    Unit = "players"
	Persons    Unit = "persons"
	Days       Unit = "days"
	Hours      Unit = "hours"
	Companions Unit = "companions"
)

type Labels struct {
	Lang       string            `yaml:"lang"`
	Units      map[Unit]string   `yaml:"units"`
	DayClasses map[string]string `yaml:"day_classes"`
	FastTrack  map[string]string `yaml:"fast_track"`
}

// Unit returns the word for u, or the unit key when the catalog lacks it.
func (l Labels) Unit(u Unit) string {
	if w, ok := l.Units[u]; ok && w != "" {
		return w
	}
	return string(u)
}

func (l Labels) DayClass(class string) string {
	if w, ok := l.DayClasses[class]; ok && w != "" {
		return w
	}
	return class
}

func (l Labels) FastTrackType(typ string) string {
	if w, ok := l.FastTrack[typ]; ok && w != "" {
		return w
	}
	return typ
}

type Bundle struct {
	byLang map[string]Labels
}

// Load reads every embedded catalog.
func Load() (*Bundle, error) {
	entries, err := catalogFS.ReadDir("catalog")
	if err != nil {
		return nil, fmt.Errorf("read label catalogs: %w", err)
	}
	b := &Bundle{byLang: map[string]Labels{}}
	for _, e := range entries {
		raw, err := catalogFS.ReadFile(path.Join("catalog", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var l Labels
		if err := yaml.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", e.Name(), err)
		}
		if l.Lang == "" {
			l.Lang = strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		}
		b.byLang[l.Lang] = l
	}
	if _, ok := b.byLang[Fallback]; !ok {
		return nil, fmt.Errorf("fallback catalog %s not loaded", Fallback)
	}
	return b, nil
}

// MustLoad panics when the embedded catalogs are broken.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

// For returns the catalog for lang, falling back to English.
func (b *Bundle) For(lang string) Labels {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if dash := strings.IndexByte(lang, '-'); dash != -1 {
		lang = lang[:dash]
	}
	if l, ok := b.byLang[lang]; ok {
		return l
	}
	return b.byLang[Fallback]
}

// All returns every catalog, fallback first.
func (b *Bundle) All() []Labels {
	out := make([]Labels, 0, len(b.byLang))
	out = append(out, b.byLang[Fallback])
	langs := make([]string, 0, len(b.byLang))
	for k := range b.byLang {
		if k != Fallback {
			langs = append(langs, k)
		}
	}
	sort.Strings(langs)
	for _, k := range langs {
		out = append(out, b.byLang[k])
	}
	return out
}
