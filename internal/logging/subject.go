package logging

import "strings"

// FormatSubject builds the upanishad/chapter/sutra subject used in console output,
// e.g. "kena 2.5". Chapter is omitted when no sutra is known.
func FormatSubject(upanishad, chapter, sutra string) string {
	upanishad = strings.TrimSpace(upanishad)
	chapter = strings.TrimSpace(chapter)
	sutra = strings.TrimSpace(sutra)
	parts := make([]string, 0, 2)
	if upanishad != "" {
		parts = append(parts, upanishad)
	}
	switch {
	case chapter != "" && sutra != "":
		parts = append(parts, chapter+"."+sutra)
	case sutra != "":
		parts = append(parts, "#"+sutra)
	}
	return strings.Join(parts, " ")
}

