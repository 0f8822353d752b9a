// Package sheet reads the PI spreadsheet export into a normalize.Table.
// Excel workbooks (.xlsx, .xlsm) and delimited text (.csv) are supported.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/diewo77/go-pis/internal/normalize"
	"github.com/jfyne/csvd"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrMissingHeader     = errors.New("missing header row")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Open reads path according to its extension. sheetName selects a worksheet
// in a workbook; empty means the first one. It is ignored for CSV files.
func Open(path, sheetName string) (*normalize.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(f, sheetName)
	case ".csv", ".txt":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadXLSX reads one worksheet. Cells come back unformatted, so dates stored as
// numbers arrive as Excel serials and amounts keep their full precision.
func ReadXLSX(r io.Reader, sheetName string) (*normalize.Table, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingHeader
	}
	if sheetName == "" {
		sheetName = sheets[0]
	} else if idx, _ := wb.GetSheetIndex(sheetName); idx < 0 {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheetName, strings.Join(sheets, ", "))
	}

	rows, err := wb.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}
	return toTable(rows, func(i int) int { return i + 1 })
}

// ReadCSV reads delimited text, sniffing the separator (comma, semicolon, tab...).
// A UTF-8 BOM is dropped and input that is not valid UTF-8 is decoded as Windows-1252.
func ReadCSV(r io.Reader) (*normalize.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		if data, err = charmap.Windows1252.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("decode csv: %w", err)
		}
	}

	cr := csvd.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	return toTable(records, func(i int) int { return lines[i] })
}

func toTable(rows [][]string, lineOf func(int) int) (*normalize.Table, error) {
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	if len(strings.Join(header, "")) == 0 {
		return nil, ErrMissingHeader
	}

	t := &normalize.Table{Header: header, Lines: make([]normalize.Line, 0, len(rows)-1)}
	for i := 1; i < len(rows); i++ {
		t.Lines = append(t.Lines, normalize.Line{Number: lineOf(i), Cells: rows[i]})
	}
	return t, nil
}
