package scripture

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a content language code as used by the content API.
type Language string

const (
	Sanskrit Language = "sa"
	English  Language = "en"
	Kannada  Language = "kn"
	Tamil    Language = "ta"
	Telugu   Language = "te"
	Hindi    Language = "hi"
)

var languages = []Language{Sanskrit, English, Kannada, Tamil, Telugu, Hindi}

// Languages returns every supported language in declared order.
func Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

func (l Language) String() string { return string(l) }

// DisplayName returns the English name of the language ("Sanskrit", "Kannada").
// Unknown codes are returned uppercased.
func (l Language) DisplayName() string {
	tag, err := language.Parse(string(l))
	if err != nil {
		return strings.ToUpper(string(l))
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return strings.ToUpper(string(l))
	}
	return name
}
