package csvmerge_test

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"sutrasync/internal/csvmerge"
)

func numberedRow(prefix string, n int) []string {
	row := make([]string, n)
	for i := range row {
		row[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return row
}

func writeCSV(t *testing.T, path string, records [][]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestRemapNonPassthroughExample(t *testing.T) {
	got := csvmerge.Remap(csvmerge.SourceSpec{Name: "kena", Chapter: 3}, numberedRow("x", 26), false)
	want := []string{"kena", "3", "x1", "x2", "x3", "x4", "x5", "x6", "x10", "x11", "x12",
		"x19", "x20", "x21", "x22", "x23", "x24", "x25", "x26", "x16", "x17", "x18"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Remap mismatch\n got %v\nwant %v", got, want)
	}
}

func TestRemapWidths(t *testing.T) {
	tests := []struct {
		name      string
		spec      csvmerge.SourceSpec
		width     int
		passAll   bool
		wantWidth int
	}{
		{name: "full width", spec: csvmerge.SourceSpec{Name: "kena"}, width: 26, wantWidth: 2 + 20},
		{name: "wide row keeps twenty", spec: csvmerge.SourceSpec{Name: "katha"}, width: 40, wantWidth: 2 + 20},
		{name: "short row clamps", spec: csvmerge.SourceSpec{Name: "kena"}, width: 10, wantWidth: 2 + 6 + 1},
		{name: "empty row", spec: csvmerge.SourceSpec{Name: "kena"}, width: 0, wantWidth: 2},
		{name: "isha passthrough", spec: csvmerge.SourceSpec{Name: "isha"}, width: 31, wantWidth: 2 + 31},
		{name: "passthrough all", spec: csvmerge.SourceSpec{Name: "kena"}, width: 26, passAll: true, wantWidth: 2 + 26},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := csvmerge.Remap(tt.spec, numberedRow("c", tt.width), tt.passAll)
			if len(got) != tt.wantWidth {
				t.Fatalf("expected width %d, got %d (%v)", tt.wantWidth, len(got), got)
			}
		})
	}
	if csvmerge.RemappedWidth() != 20 {
		t.Fatalf("expected remapped width 20, got %d", csvmerge.RemappedWidth())
	}
}

func TestParseSourceSpecs(t *testing.T) {
	specs, errs := csvmerge.ParseSourceSpecs("isha|data/isha.csv|0, kena|data/kena.csv|2,bad,katha|k.csv|one,|x.csv|1,")
	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %+v", specs)
	}
	if specs[1] != (csvmerge.SourceSpec{Name: "kena", Path: "data/kena.csv", Chapter: 2}) {
		t.Fatalf("unexpected spec: %+v", specs[1])
	}
	if len(errs) != 3 {
		t.Fatalf("expected 3 descriptor errors, got %v", errs)
	}
	var descErr *csvmerge.DescriptorError
	if !errors.As(errs[0], &descErr) || descErr.Entry != "bad" {
		t.Fatalf("expected DescriptorError for bad entry, got %v", errs[0])
	}
}

func TestMergeWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	isha := filepath.Join(dir, "isha.csv")
	kena := filepath.Join(dir, "kena.csv")
	writeCSV(t, isha, [][]string{
		numberedRow("h", 20),
		numberedRow("i", 20),
		numberedRow("j", 20),
	})
	writeCSV(t, kena, [][]string{
		numberedRow("k", 26),
		numberedRow("x", 26),
	})
	out := filepath.Join(dir, "out", "upanishads.csv")

	specs := []csvmerge.SourceSpec{
		{Name: "isha", Path: isha, Chapter: 0},
		{Name: "kena", Path: kena, Chapter: 3},
	}
	result, err := csvmerge.New().Merge(context.Background(), specs, out)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.Rows != 3 {
		t.Fatalf("expected 3 rows, got %d", result.Rows)
	}
	if len(result.Skipped()) != 0 {
		t.Fatalf("expected no skipped sources, got %+v", result.Skipped())
	}

	records := readCSV(t, out)
	if len(records) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(records))
	}
	wantHeader := append([]string{"name", "chapter"}, numberedRow("h", 20)...)
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][0] != "isha" || records[1][1] != "0" || records[1][2] != "i1" {
		t.Fatalf("unexpected isha row %v", records[1])
	}
	if records[3][0] != "kena" || records[3][1] != "3" || records[3][10] != "x12" || records[3][21] != "x18" {
		t.Fatalf("unexpected kena row %v", records[3])
	}
	for i, record := range records {
		if len(record) != len(wantHeader) {
			t.Fatalf("record %d width %d, want %d", i, len(record), len(wantHeader))
		}
	}
}

func TestMergeSkipsMissingSources(t *testing.T) {
	dir := t.TempDir()
	kena := filepath.Join(dir, "kena.csv")
	writeCSV(t, kena, [][]string{numberedRow("k", 26), numberedRow("a", 26), numberedRow("b", 26)})
	out := filepath.Join(dir, "out.csv")

	entries := []string{
		"isha|" + filepath.Join(dir, "missing.csv") + "|0",
		"broken-entry",
		"kena|" + kena + "|1",
	}
	result, err := csvmerge.New().MergeEntries(context.Background(), entries, out)
	if err != nil {
		t.Fatalf("MergeEntries: %v", err)
	}
	if len(result.DescriptorErrors) != 1 {
		t.Fatalf("expected one descriptor error, got %v", result.DescriptorErrors)
	}
	skipped := result.Skipped()
	if len(skipped) != 1 || skipped[0].Spec.Name != "isha" {
		t.Fatalf("expected missing isha source to be skipped, got %+v", skipped)
	}
	if result.Rows != 2 {
		t.Fatalf("expected rows from kena only, got %d", result.Rows)
	}
	records := readCSV(t, out)
	if len(records) != 3 || records[0][2] != "k1" {
		t.Fatalf("expected header from first readable source, got %v", records)
	}
}

func TestMergeRowCountMatchesInputs(t *testing.T) {
	dir := t.TempDir()
	counts := map[string]int{"a": 0, "b": 4, "c": 7}
	var specs []csvmerge.SourceSpec
	want := 0
	for _, name := range []string{"a", "b", "c"} {
		path := filepath.Join(dir, name+".csv")
		records := [][]string{numberedRow("h", 26)}
		for i := 0; i < counts[name]; i++ {
			records = append(records, numberedRow(name, 26))
		}
		writeCSV(t, path, records)
		specs = append(specs, csvmerge.SourceSpec{Name: name, Path: path, Chapter: 1})
		want += counts[name]
	}
	specs = append(specs, csvmerge.SourceSpec{Name: "gone", Path: filepath.Join(dir, "gone.csv")})

	out := filepath.Join(dir, "out.csv")
	result, err := csvmerge.New().Merge(context.Background(), specs, out)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.Rows != want {
		t.Fatalf("expected %d rows, got %d", want, result.Rows)
	}
	if got := len(readCSV(t, out)) - 1; got != want {
		t.Fatalf("expected %d data rows in output, got %d", want, got)
	}
}

func TestMergeCountsWidthMismatches(t *testing.T) {
	dir := t.TempDir()
	isha := filepath.Join(dir, "isha.csv")
	kena := filepath.Join(dir, "kena.csv")
	writeCSV(t, isha, [][]string{numberedRow("h", 20), numberedRow("i", 20)})
	writeCSV(t, kena, [][]string{numberedRow("k", 26), numberedRow("x", 26), numberedRow("y", 12)})

	result, err := csvmerge.New().Merge(context.Background(), []csvmerge.SourceSpec{
		{Name: "isha", Path: isha},
		{Name: "kena", Path: kena, Chapter: 1},
	}, filepath.Join(dir, "out.csv"))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.Sources[0].WidthMismatches != 0 {
		t.Fatalf("expected isha rows to match header, got %d", result.Sources[0].WidthMismatches)
	}
	if result.Sources[1].WidthMismatches != 1 {
		t.Fatalf("expected one short kena row, got %d", result.Sources[1].WidthMismatches)
	}
	if result.Rows != 3 {
		t.Fatalf("mismatched rows are still written, expected 3 got %d", result.Rows)
	}
}

func TestMergeReadsWorkbookSources(t *testing.T) {
	dir := t.TempDir()
	book := filepath.Join(dir, "kena.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for rowIdx, row := range [][]string{numberedRow("k", 26), numberedRow("x", 26)} {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}
	if err := f.SaveAs(book); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	out := filepath.Join(dir, "out.csv")
	result, err := csvmerge.New().Merge(context.Background(), []csvmerge.SourceSpec{{Name: "kena", Path: book, Chapter: 3}}, out)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if result.Rows != 1 {
		t.Fatalf("expected one row from workbook, got %d", result.Rows)
	}
	records := readCSV(t, out)
	if got := strings.Join(records[1], ","); got != "kena,3,x1,x2,x3,x4,x5,x6,x10,x11,x12,x19,x20,x21,x22,x23,x24,x25,x26,x16,x17,x18" {
		t.Fatalf("unexpected workbook row %s", got)
	}
}

func TestMergeHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "isha.csv")
	writeCSV(t, path, [][]string{{"h"}, {"v"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := csvmerge.New().Merge(ctx, []csvmerge.SourceSpec{{Name: "isha", Path: path}}, filepath.Join(dir, "out.csv"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
