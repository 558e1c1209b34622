package rowsource

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses the first sheet of a workbook.
func ReadXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	// GetRows keeps empty rows between filled ones, so index i is sheet row i+1.
	lines := make([]int, len(records)-1)
	for i := range lines {
		lines[i] = i + 2
	}
	return buildResult(records[0], records[1:], lines), nil
}
