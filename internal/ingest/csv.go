package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/taxlens/gst-optimizer/internal/pipeline"
)

type csvDecoder struct{}

func (csvDecoder) CanDecode(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".csv")
}

// Decode reads a comma-separated file with a header row. Ragged rows are a
// decode error: every record must share the header's schema.
func (csvDecoder) Decode(r io.Reader) (pipeline.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return pipeline.Dataset{}, fmt.Errorf("csv: empty file")
		}
		return pipeline.Dataset{}, fmt.Errorf("csv: reading header: %w", err)
	}
	columns := headerColumns(header)

	ds := pipeline.Dataset{Columns: columns}
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pipeline.Dataset{}, fmt.Errorf("csv: reading row %d: %w", len(ds.Records)+2, err)
		}
		ds.Records = append(ds.Records, buildRecord(columns, cells))
	}
	return ds, nil
}
