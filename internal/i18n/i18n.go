// Package i18n provides the localization table lookup and supported-language
// resolution.
package i18n

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Table maps UI keys and domain vocabulary (event-type labels, status labels,
// relative-day labels) to per-language strings.
type Table struct {
	entries     map[string]map[string]string
	defaultLang string
}

// Parse decodes a localization table document. The document is a JSON object
// of key -> language code -> string.
func Parse(data []byte, defaultLang string) (*Table, error) {
	var entries map[string]map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse localization table: %w", err)
	}
	return &Table{entries: entries, defaultLang: defaultLang}, nil
}

// NewTable builds a table from already-decoded entries. Used by tests.
func NewTable(entries map[string]map[string]string, defaultLang string) *Table {
	return &Table{entries: entries, defaultLang: defaultLang}
}

// Lookup resolves key for lang. The fallback chain is: requested language,
// default language, the caller-supplied literal fallback, the key itself.
func (t *Table) Lookup(key, lang, fallback string) string {
	if entry, ok := t.entries[key]; ok {
		if s := entry[lang]; s != "" {
			return s
		}
		if s := entry[t.defaultLang]; s != "" {
			return s
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}

// TypeLabel returns the localized label for a feed kind tag, falling back to
// the raw tag itself.
func (t *Table) TypeLabel(kindTag, lang string) string {
	return t.Lookup("type."+kindTag, lang, kindTag)
}

// StatusNote returns the localized note for a non-active lifecycle status,
// or "" for active/empty statuses.
func (t *Table) StatusNote(status, lang string) string {
	if status == "" || status == "active" {
		return ""
	}
	return t.Lookup("status."+status, lang, status)
}

// Languages resolves request languages against the closed supported set.
type Languages struct {
	Default   string
	codes     []string
	matcher   language.Matcher
	supported map[string]bool
}

// NewLanguages builds a resolver for the configured language codes. The
// default code must be part of the supported set.
func NewLanguages(defaultCode string, supported []string) (*Languages, error) {
	if len(supported) == 0 {
		supported = []string{defaultCode}
	}

	tags := make([]language.Tag, 0, len(supported))
	set := make(map[string]bool, len(supported))
	for _, code := range supported {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, fmt.Errorf("unsupported language code %q: %w", code, err)
		}
		tags = append(tags, tag)
		set[code] = true
	}
	if !set[defaultCode] {
		return nil, fmt.Errorf("default language %q not in supported set", defaultCode)
	}

	// The matcher prefers earlier tags on ties, so order the default first.
	ordered := []string{defaultCode}
	orderedTags := []language.Tag{tags[indexOf(supported, defaultCode)]}
	for i, code := range supported {
		if code == defaultCode {
			continue
		}
		ordered = append(ordered, code)
		orderedTags = append(orderedTags, tags[i])
	}

	return &Languages{
		Default:   defaultCode,
		codes:     ordered,
		matcher:   language.NewMatcher(orderedTags),
		supported: set,
	}, nil
}

// Resolve picks a supported language code from an explicit preference and an
// Accept-Language header, in that order. Unrecognized input resolves to the
// default; language affects display strings only, never classification.
func (l *Languages) Resolve(preferred, acceptHeader string) string {
	preferred = strings.TrimSpace(preferred)
	if l.supported[preferred] {
		return preferred
	}

	var prefs []string
	if preferred != "" {
		prefs = append(prefs, preferred)
	}
	if acceptHeader != "" {
		prefs = append(prefs, acceptHeader)
	}
	if len(prefs) == 0 {
		return l.Default
	}

	// The matcher falls back to its first tag, which is the default.
	_, idx := language.MatchStrings(l.matcher, prefs...)
	return l.codes[idx]
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return 0
}
