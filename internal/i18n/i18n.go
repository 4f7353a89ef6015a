// Package i18n resolves the display locale of a request and renders the
// localized strings of derived views.
package i18n

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	French  = language.MustParse("fr-FR")
	English = language.MustParse("en-US")

	supported = []language.Tag{French, English}
	matcher   = language.NewMatcher(supported)
)

// Supported returns the supported display locales, default first.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// ParseTag returns the supported tag closest to value.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Und, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Und, false
	}
	return match(tag)
}

func match(tags ...language.Tag) (language.Tag, bool) {
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return language.Und, false
	}
	return supported[index], true
}

// Resolve picks the display locale from an explicit lang value, then the
// Accept-Language header, then fallback.
func Resolve(lang, acceptLanguage string, fallback language.Tag) language.Tag {
	if tag, ok := ParseTag(lang); ok {
		return tag
	}
	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if tag, ok := match(tags...); ok {
				return tag
			}
		}
	}
	return fallback
}

// Localizer renders messages for one locale. Not safe for concurrent use;
// build one per derivation.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
	lower   cases.Caser
}

func New(tag language.Tag) *Localizer {
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag),
		lower:   cases.Lower(tag),
	}
}

func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// T renders the message registered under key.
func (l *Localizer) T(key string, args ...interface{}) string {
	return l.printer.Sprintf(key, args...)
}

// Lower lower-cases s using the locale's casing rules.
func (l *Localizer) Lower(s string) string {
	return l.lower.String(s)
}

// Date formats t as a calendar day.
func (l *Localizer) Date(t time.Time) string {
	return t.Format(l.T("format.date"))
}

// Collator returns a collator for sorting display strings in tag's order.
// Collators are not safe for concurrent use.
func Collator(tag language.Tag) *collate.Collator {
	return collate.New(tag)
}
