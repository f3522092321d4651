package scripture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Row is one normalized CSV row as seen by the publisher.
type Row struct {
	// Line is the 1-based CSV line the row was read from.
	Line      int
	Upanishad string
	Chapter   int
	SutraNo   int
	Text      string

	fields map[string]string
}

// Defaults fill in identity fields for CSVs that carry no name or chapter
// column at all.
type Defaults struct {
	Upanishad string
	Chapter   int
}

// NewRow builds a row from column values. Keys are matched case-insensitively;
// values are kept exactly as given.
func NewRow(values map[string]string, defaults Defaults) Row {
	fields := make(map[string]string, len(values))
	for key, value := range values {
		fields[normalizeKey(key)] = value
	}
	row := Row{fields: fields}
	row.resolveIdentity(defaults)
	return row
}

func (r *Row) resolveIdentity(defaults Defaults) {
	r.Upanishad = strings.TrimSpace(r.fields[ColumnName])
	if r.Upanishad == "" {
		r.Upanishad = strings.TrimSpace(defaults.Upanishad)
	}
	if raw, ok := r.fields[ColumnChapter]; ok {
		r.Chapter = ParseNumber(raw)
	} else {
		r.Chapter = defaults.Chapter
	}
	r.SutraNo = ParseNumber(r.fields[ColumnSutraNo])
	r.Text = r.fields[ColumnSutra]
}

// Field returns the named column value, or "" when the column is absent.
func (r Row) Field(column string) string {
	return r.fields[normalizeKey(column)]
}

func (r Row) Transliteration(lang Language) string {
	return r.Field(TransliterationColumn(lang))
}

func (r Row) Meaning(lang Language) string {
	return r.Field(MeaningColumn(lang))
}

func (r Row) Interpretation(lang Language, phil Philosophy) string {
	return r.Field(InterpretationColumn(lang, phil))
}

func (r Row) Bhashyam(phil Philosophy) string {
	return r.Field(BhashyamColumn(phil))
}

// ParseNumber reads an integer column. Spreadsheet exports such as "5.0" are
// accepted when integral; anything else yields 0.
func ParseNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0
	}
	return int(f)
}

// LoadRows reads every data row of a normalized CSV file.
func LoadRows(path string, defaults Defaults) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	rows, err := ReadRows(file, defaults)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// ReadRows parses a normalized CSV stream. The first record is the header;
// records shorter than the header leave the missing columns empty.
func ReadRows(r io.Reader, defaults Defaults) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[i] = normalizeKey(name)
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		if isBlankRecord(record) {
			continue
		}
		fields := make(map[string]string, len(columns))
		for i, column := range columns {
			if column == "" {
				continue
			}
			if _, seen := fields[column]; seen {
				continue
			}
			value := ""
			if i < len(record) {
				value = record[i]
			}
			fields[column] = value
		}
		row := Row{Line: line, fields: fields}
		row.resolveIdentity(defaults)
		rows = append(rows, row)
	}
	return rows, nil
}

// MissingColumns lists the publish columns the row has no cell for. The
// name and chapter columns are left out since Defaults can stand in for them.
func (r Row) MissingColumns() []string {
	var missing []string
	for _, column := range PublishColumns() {
		if column == ColumnName || column == ColumnChapter {
			continue
		}
		if _, ok := r.fields[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

// normalizeKey folds a header name for lookup. Only header names are put in
// NFC form; cell text is never rewritten.
func normalizeKey(key string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(key)))
}

func isBlankRecord(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
