package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseSpreadsheet extracts the header row and data rows from an uploaded
// spreadsheet. The first row is the column order; every following row is
// keyed by it. Short rows are padded with empty values, extra cells are
// dropped.
func parseSpreadsheet(fh *multipart.FileHeader) ([]string, []map[string]string, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	var records [][]string
	switch ext {
	case ".csv":
		records, err = readCSV(src)
	default:
		records, err = readExcel(src)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}

	if len(records) == 0 || len(records[0]) == 0 {
		return nil, nil, fmt.Errorf("%w: spreadsheet has no header row", ErrParseFailure)
	}

	columns := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: spreadsheet has no data rows", ErrParseFailure)
	}

	return columns, rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// readExcel reads the first sheet of an xlsx workbook.
func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	return f.GetRows(sheets[0])
}
