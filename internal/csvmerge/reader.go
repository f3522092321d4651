package csvmerge

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// recordReader yields source records one at a time.
type recordReader interface {
	Read() ([]string, error)
	Close() error
}

func openSource(path string) (recordReader, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return openWorkbook(path)
	}
	return openCSV(path)
}

type csvSource struct {
	file   *os.File
	reader *csv.Reader
}

func openCSV(path string) (*csvSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	return &csvSource{file: file, reader: reader}, nil
}

func (s *csvSource) Read() ([]string, error) { return s.reader.Read() }

func (s *csvSource) Close() error { return s.file.Close() }

type workbookSource struct {
	rows [][]string
	next int
}

// openWorkbook reads every row of the first worksheet.
func openWorkbook(path string) (*workbookSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("no sheets found in workbook")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}
	return &workbookSource{rows: rows}, nil
}

func (s *workbookSource) Read() ([]string, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	return row, nil
}

func (s *workbookSource) Close() error { return nil }

// readHeader returns the first record of a source, or nil when it is empty.
func readHeader(path string) ([]string, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	header, err := src.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, nil
}
