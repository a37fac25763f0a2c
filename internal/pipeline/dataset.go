package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Column names shared by every validated dataset.
const (
	ColInvoiceNo   = "invoice_no"
	ColGSTIN       = "gstin"
	ColAmount      = "amount"
	ColGSTAmount   = "gst_amount"
	ColITCEligible = "itc_eligible"
	ColTaxType     = "tax_type"
	ColStateCode   = "state_code"

	// Derived columns added by the analysis stages.
	ColIsAnomaly       = "is_anomaly"
	ColITCOptimization = "itc_optimization"
)

// RequiredColumns is the set of columns an upload must carry before any
// analysis runs. Order matters only for error messages.
var RequiredColumns = []string{
	ColInvoiceNo,
	ColGSTIN,
	ColAmount,
	ColGSTAmount,
	ColITCEligible,
	ColTaxType,
	ColStateCode,
}

// Values of the itc_eligible column.
const (
	EligibleYes = "Yes"
	EligibleNo  = "No"
)

// Labels written to the itc_optimization column.
const (
	OptimizationNoChange    = "No Change"
	OptimizationConsiderITC = "Consider ITC Claim"
	OptimizationReviewITC   = "Review ITC Eligibility"
)

// Record is one invoice row: cell values keyed by column name. Cells are
// decimal.Decimal for parsed numeric columns, bool for is_anomaly, and
// string otherwise.
type Record map[string]any

// String returns the cell as a string, or "" when absent or non-string.
func (r Record) String(col string) string {
	s, _ := r[col].(string)
	return s
}

// Decimal returns the cell as a decimal. String cells are parsed so that
// dirty uploads (numeric column decoded as raw text) still resolve where
// the text happens to be a number.
func (r Record) Decimal(col string) (decimal.Decimal, error) {
	switch v := r[col].(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("column %q: %q is not numeric", col, v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("column %q: unexpected cell type %T", col, v)
	}
}

// Bool returns the cell as a bool; absent or non-bool cells report false.
func (r Record) Bool(col string) bool {
	b, _ := r[col].(bool)
	return b
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is an ordered batch of records sharing a uniform schema.
type Dataset struct {
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// HasColumn reports whether the dataset carries the named column.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy. Stages transform copies so that a failed stage
// never leaves the caller with a half-written dataset.
func (d Dataset) Clone() Dataset {
	out := Dataset{
		Columns: append([]string(nil), d.Columns...),
		Records: make([]Record, len(d.Records)),
	}
	for i, r := range d.Records {
		out.Records[i] = r.clone()
	}
	return out
}

// withColumn returns a clone carrying the named column, appending it to the
// column list if new.
func (d Dataset) withColumn(name string) Dataset {
	out := d.Clone()
	if !out.HasColumn(name) {
		out.Columns = append(out.Columns, name)
	}
	return out
}

// sumColumn totals a numeric column, skipping cells that do not resolve to a
// number. Best-effort on purpose: aggregate reporting should survive a few
// dirty rows.
func sumColumn(d Dataset, col string) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range d.Records {
		v, err := rec.Decimal(col)
		if err != nil {
			continue
		}
		total = total.Add(v)
	}
	return total
}

// sumColumnWhere totals a numeric column over records whose filter column
// equals the given value.
func sumColumnWhere(d Dataset, col, filterCol, filterVal string) decimal.Decimal {
	total := decimal.Zero
	for _, rec := range d.Records {
		if rec.String(filterCol) != filterVal {
			continue
		}
		v, err := rec.Decimal(col)
		if err != nil {
			continue
		}
		total = total.Add(v)
	}
	return total
}
