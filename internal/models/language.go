package models

import "strings"

type Language string

const (
	English Language = "en"
	Russian Language = "ru"
	French  Language = "fr"
	Italian Language = "it"
)

var Languages = []Language{English, Russian, French, Italian}

// ParseLanguage reports whether code names a supported language.
func ParseLanguage(code string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(code)))
	for _, known := range Languages {
		if l == known {
			return l, true
		}
	}
	return "", false
}
