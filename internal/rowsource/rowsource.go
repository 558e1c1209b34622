// Package rowsource turns uploaded CSV and XLSX files into raw import rows.
// The first line of a file is its header; every later non-blank line
// becomes one row keyed by header.
package rowsource

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ignite/software-catalog/internal/datanorm"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrNoHeader is returned for files without a header line.
var ErrNoHeader = errors.New("file has no header row")

// HeaderRows is the number of lines before the first data row.
const HeaderRows = 1

// Result is a parsed file. Lines[i] is the 1-based file line Rows[i] came
// from, so messages can point at the spreadsheet line even when blank lines
// were skipped.
type Result struct {
	Headers []string
	Rows    []datanorm.Row
	Lines   []int
}

// Read parses r according to the file name's extension.
func Read(filename string, r io.Reader) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ReadCSV(r)
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ContentType returns the MIME type for a supported file name.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}

// buildResult zips each record with the header. Cells beyond the header are
// dropped; missing trailing cells are absent keys. Blank records are skipped,
// and lines[i] is the file line of records[i].
func buildResult(header []string, records [][]string, lines []int) *Result {
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	res := &Result{
		Headers: header,
		Rows:    make([]datanorm.Row, 0, len(records)),
		Lines:   make([]int, 0, len(records)),
	}
	for n, rec := range records {
		row := make(datanorm.Row, len(header))
		blank := true
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			if v != "" {
				blank = false
			}
			row[h] = v
		}
		if !blank {
			res.Rows = append(res.Rows, row)
			res.Lines = append(res.Lines, lines[n])
		}
	}
	return res
}
