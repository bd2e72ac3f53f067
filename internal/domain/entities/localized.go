package entities

// Locale identifies a content language
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"
)

// ParseLocale maps a language tag such as "es" or "es-MX" to a supported locale.
// Anything unrecognised falls back to English.
func ParseLocale(tag string) Locale {
	if len(tag) >= 2 && (tag[:2] == "es" || tag[:2] == "ES") {
		return LocaleSpanish
	}
	return LocaleEnglish
}

// LocalizedText holds the English and Spanish renditions of one field.
// Lists of LocalizedText keep both languages aligned item by item.
type LocalizedText struct {
	En string `json:"en" yaml:"en"`
	Es string `json:"es" yaml:"es"`
}

// In returns the text for the given locale, falling back to English
func (t LocalizedText) In(locale Locale) string {
	if locale == LocaleSpanish && t.Es != "" {
		return t.Es
	}
	return t.En
}

// IsZero reports whether neither language has text
func (t LocalizedText) IsZero() bool {
	return t.En == "" && t.Es == ""
}

// Complete reports whether both languages have text
func (t LocalizedText) Complete() bool {
	return t.En != "" && t.Es != ""
}

func textsIn(items []LocalizedText, locale Locale) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.In(locale))
	}
	return out
}
