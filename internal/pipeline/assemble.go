package pipeline

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Summary aggregates one processed batch. Computed fresh per upload, never
// cached.
type Summary struct {
	TotalAmount       float64   `json:"total_amount"`
	TotalGST          float64   `json:"total_gst"`
	ITCEligible       float64   `json:"itc_eligible"`
	TotalInvoices     int       `json:"total_invoices"`
	AnomaliesDetected int       `json:"anomalies_detected"`
	Insights          []Insight `json:"insights"`
}

// Response is the upload result: the augmented invoice rows plus the batch
// summary.
type Response struct {
	Invoices []map[string]any `json:"invoices"`
	Summary  Summary          `json:"summary"`
}

// Assemble merges the augmented dataset and insights into the response
// payload. Every cell passes through ToWireValue so no internal numeric
// wrapper reaches the encoder.
func Assemble(ds Dataset, insights []Insight) Response {
	invoices := make([]map[string]any, 0, ds.Len())
	anomalies := 0
	for _, rec := range ds.Records {
		if rec.Bool(ColIsAnomaly) {
			anomalies++
		}
		row := make(map[string]any, len(rec))
		for col, v := range rec {
			row[col] = ToWireValue(v)
		}
		invoices = append(invoices, row)
	}

	if insights == nil {
		insights = []Insight{}
	}

	return Response{
		Invoices: invoices,
		Summary: Summary{
			TotalAmount:       wireFloat(sumColumn(ds, ColAmount)),
			TotalGST:          wireFloat(sumColumn(ds, ColGSTAmount)),
			ITCEligible:       wireFloat(sumColumnWhere(ds, ColGSTAmount, ColITCEligible, EligibleYes)),
			TotalInvoices:     ds.Len(),
			AnomaliesDetected: anomalies,
			Insights:          insights,
		},
	}
}

// ToWireValue is the single serialization boundary: it maps every value the
// stages produce to a plain cross-platform representation. Decimals marshal
// as quoted strings by default, so leaving them unconverted would hand the
// consumer an undecodable payload.
func ToWireValue(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.InexactFloat64()
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToWireValue(e)
		}
		return out
	default:
		// Plain scalars (string, bool, ints, floats) pass through.
		return v
	}
}

func wireFloat(d decimal.Decimal) float64 {
	f, _ := ToWireValue(d).(float64)
	return f
}
