package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/taxlens/gst-optimizer/internal/pipeline"
)

type xlsxDecoder struct{}

func (xlsxDecoder) CanDecode(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Decode reads the first sheet of a workbook, first row as header. Trailing
// empty cells are padded so every record matches the header's schema.
func (xlsxDecoder) Decode(r io.Reader) (pipeline.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return pipeline.Dataset{}, fmt.Errorf("xlsx: opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return pipeline.Dataset{}, fmt.Errorf("xlsx: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return pipeline.Dataset{}, fmt.Errorf("xlsx: reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return pipeline.Dataset{}, fmt.Errorf("xlsx: empty sheet")
	}

	columns := headerColumns(rows[0])
	ds := pipeline.Dataset{Columns: columns}
	for _, row := range rows[1:] {
		// Pad short rows back to the header width; cells beyond the header
		// have no column to land in and are dropped.
		cells := make([]string, len(columns))
		copy(cells, row)
		ds.Records = append(ds.Records, buildRecord(columns, cells))
	}
	return ds, nil
}
