// Package i18n serves the storefront and admin string tables and resolves
// server-side labels such as export headers.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const Default = "ru"

// Languages in matcher preference order. The first one is the fallback.
var Languages = []string{"ru", "en", "tg"}

//go:embed locales/*.json
var localeFS embed.FS

var (
	tables  = mustLoad()
	matcher = language.NewMatcher(supportedTags())
)

func supportedTags() []language.Tag {
	tags := make([]language.Tag, 0, len(Languages))
	for _, l := range Languages {
		tags = append(tags, language.MustParse(l))
	}
	return tags
}

func mustLoad() map[string]map[string]any {
	out := make(map[string]map[string]any, len(Languages))
	for _, l := range Languages {
		raw, err := localeFS.ReadFile("locales/" + l + ".json")
		if err != nil {
			panic(fmt.Sprintf("i18n: reading %s table: %v", l, err))
		}
		var table map[string]any
		if err := json.Unmarshal(raw, &table); err != nil {
			panic(fmt.Sprintf("i18n: parsing %s table: %v", l, err))
		}
		out[l] = table
	}
	return out
}

// Supported reports whether lang has a table.
func Supported(lang string) bool {
	_, ok := tables[lang]
	return ok
}

// Messages returns the nested table of lang.
func Messages(lang string) (map[string]any, bool) {
	t, ok := tables[lang]
	return t, ok
}

// Negotiate picks a supported language from an explicit choice (usually a
// query parameter) and then the Accept-Language header.
func Negotiate(explicit, acceptLanguage string) string {
	explicit = strings.ToLower(strings.TrimSpace(explicit))
	if Supported(explicit) {
		return explicit
	}

	var prefs []language.Tag
	if explicit != "" {
		if t, err := language.Parse(explicit); err == nil {
			prefs = append(prefs, t)
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			prefs = append(prefs, tags...)
		}
	}
	if len(prefs) == 0 {
		return Default
	}

	_, idx, conf := matcher.Match(prefs...)
	if conf == language.No {
		return Default
	}
	return Languages[idx]
}

// T resolves a dotted key such as "orders.status.new". Keys missing in lang
// fall back to the default table and finally to the key itself.
func T(lang, key string) string {
	if s, ok := lookup(tables[lang], key); ok {
		return s
	}
	if s, ok := lookup(tables[Default], key); ok {
		return s
	}
	return key
}

func lookup(table map[string]any, key string) (string, bool) {
	if table == nil {
		return "", false
	}
	var node any = table
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", false
		}
		if node, ok = m[part]; !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	return s, ok
}
