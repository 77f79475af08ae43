package authgate

import (
	"strings"

	"golang.org/x/text/language"
)

// Locale is a magic-link email language supported by the provider.
type Locale string

const (
	LocaleEN   Locale = "en"
	LocaleES   Locale = "es"
	LocaleFR   Locale = "fr"
	LocalePTBR Locale = "pt-br"
)

// SupportedLocales lists the magic-link locales in matcher preference order.
var SupportedLocales = []Locale{LocaleEN, LocaleES, LocaleFR, LocalePTBR}

var (
	localeTags = []language.Tag{
		language.English,
		language.Spanish,
		language.French,
		language.BrazilianPortuguese,
	}
	localeMatcher = language.NewMatcher(localeTags)
)

// MatchLocale maps a BCP 47 style tag ("pt-BR", "pt_br", "en-US") onto a
// supported locale. Tags that only match with low confidence are refused.
func MatchLocale(raw string) (Locale, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")
	if raw == "" {
		return "", false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", false
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf < language.High {
		return "", false
	}
	return SupportedLocales[idx], true
}
