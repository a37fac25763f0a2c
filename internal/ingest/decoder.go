// Package ingest decodes uploaded invoice batches into a pipeline Dataset.
// Decoding is the boundary between transport plumbing and analysis: a decode
// failure rejects the request before any stage runs.
package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxlens/gst-optimizer/internal/pipeline"
)

// Decoder turns an uploaded file into a dataset.
type Decoder interface {
	// CanDecode reports whether this decoder handles the given filename.
	CanDecode(filename string) bool
	// Decode reads the whole file and returns the decoded dataset.
	Decode(r io.Reader) (pipeline.Dataset, error)
}

var decoders = []Decoder{
	csvDecoder{},
	xlsxDecoder{},
}

// ForFilename selects a decoder by file extension.
func ForFilename(name string) (Decoder, error) {
	for _, d := range decoders {
		if d.CanDecode(name) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("unsupported file type: %q", name)
}

// buildRecord maps one row of cells onto the column list. The numeric
// invoice columns are parsed to decimals; a cell that fails to parse stays
// as its raw string so the batch still decodes and the analysis stages
// degrade instead of the upload failing outright.
func buildRecord(columns, cells []string) pipeline.Record {
	rec := make(pipeline.Record, len(columns))
	for i, col := range columns {
		raw := strings.TrimSpace(cells[i])
		if col == pipeline.ColAmount || col == pipeline.ColGSTAmount {
			if d, err := decimal.NewFromString(raw); err == nil {
				rec[col] = d
				continue
			}
		}
		rec[col] = raw
	}
	return rec
}

func headerColumns(cells []string) []string {
	columns := make([]string, len(cells))
	for i, c := range cells {
		columns[i] = strings.TrimSpace(c)
	}
	return columns
}
