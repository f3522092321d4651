package scripture

// Column names of the normalized CSV consumed by the publisher.
const (
	ColumnName    = "name"
	ColumnChapter = "chapter"
	ColumnSutraNo = "sutra_no"
	ColumnSutra   = "sutra"
)

// TransliterationColumn names the transliteration column for lang.
func TransliterationColumn(lang Language) string {
	return "transliteration_" + string(lang)
}

// MeaningColumn names the meaning column for lang.
func MeaningColumn(lang Language) string {
	return "meaning_" + string(lang)
}

// InterpretationColumn names the "tell me more" column for lang and school.
func InterpretationColumn(lang Language, phil Philosophy) string {
	return "tellmemore_" + string(lang) + "_" + string(phil)
}

// BhashyamColumn names the Sanskrit commentary column for a school.
func BhashyamColumn(phil Philosophy) string {
	return "bhashyam_" + string(Sanskrit) + "_" + string(phil)
}

// PublishColumns lists every column the publisher reads, in publish order.
func PublishColumns() []string {
	cols := []string{ColumnName, ColumnChapter, ColumnSutraNo, ColumnSutra}
	for _, lang := range languages {
		cols = append(cols, TransliterationColumn(lang))
	}
	for _, lang := range languages {
		cols = append(cols, MeaningColumn(lang))
	}
	for _, e := range philosophies {
		cols = append(cols, BhashyamColumn(e.code))
	}
	for _, lang := range languages {
		for _, e := range philosophies {
			cols = append(cols, InterpretationColumn(lang, e.code))
		}
	}
	return cols
}
