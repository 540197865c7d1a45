// Package i18n serves the localized UI string tables and negotiates the
// active language from request hints.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"detailgen/internal/domain"
)

// DefaultLanguage is the UI language used when nothing else matches.
const DefaultLanguage = domain.LanguageTraditionalChinese

//go:embed locales/*.json
var localeFS embed.FS

// Bundle maps section → key → localized text.
type Bundle map[string]map[string]string

var (
	bundles = mustLoadBundles()

	matcher = language.NewMatcher([]language.Tag{
		language.TraditionalChinese,
		language.SimplifiedChinese,
		language.English,
	})
	matchedLanguages = []domain.Language{
		domain.LanguageTraditionalChinese,
		domain.LanguageSimplifiedChinese,
		domain.LanguageEnglish,
	}
)

func mustLoadBundles() map[domain.Language]Bundle {
	out := make(map[domain.Language]Bundle, 3)
	for _, lang := range domain.Languages() {
		raw, err := localeFS.ReadFile(fmt.Sprintf("locales/%s.json", lang))
		if err != nil {
			panic(fmt.Sprintf("i18n: read bundle %s: %v", lang, err))
		}
		var b Bundle
		if err := json.Unmarshal(raw, &b); err != nil {
			panic(fmt.Sprintf("i18n: decode bundle %s: %v", lang, err))
		}
		out[lang] = b
	}
	return out
}

// Lookup returns the bundle for lang. Unknown languages get the default bundle.
func Lookup(lang domain.Language) Bundle {
	if b, ok := bundles[lang]; ok {
		return b
	}
	return bundles[DefaultLanguage]
}

// Get returns the text for a "section.key" path, or "" when absent.
func (b Bundle) Get(path string) string {
	section, key, ok := strings.Cut(path, ".")
	if !ok {
		return ""
	}
	return b[section][key]
}

// T resolves path in lang, then the default language, then English. The
// path itself is returned when no bundle has it.
func T(lang domain.Language, path string) string {
	for _, candidate := range []domain.Language{lang, DefaultLanguage, domain.LanguageEnglish} {
		if v := Lookup(candidate).Get(path); v != "" {
			return v
		}
	}
	return path
}

// Match maps a BCP-47 tag or an Accept-Language header onto a supported
// language. Traditional scripts and regions (zh-Hant, zh-TW, zh-HK) map to
// zh-TW, other Chinese to zh-CN, and everything else to English.
func Match(value string) domain.Language {
	value = strings.TrimSpace(strings.ReplaceAll(value, "_", "-"))
	if value == "" {
		return domain.LanguageEnglish
	}
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return domain.LanguageEnglish
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(matchedLanguages) {
		return domain.LanguageEnglish
	}
	return matchedLanguages[idx]
}
