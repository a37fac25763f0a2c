package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultHighValueThreshold is the amount above which an ineligible invoice
// is flagged for a claim review.
var DefaultHighValueThreshold = decimal.NewFromInt(100000)

// RuleStage applies the ITC optimization rules in a fixed order. Every
// record defaults to "No Change" before evaluation; later rules overwrite
// earlier ones on overlap. On an internal error the dataset is returned with
// the labels written so far, unprocessed rows keeping the default.
type RuleStage struct {
	HighValueThreshold decimal.Decimal
}

func (s *RuleStage) Name() string { return "itc_rules" }

func (s *RuleStage) Apply(ds Dataset) (Dataset, error) {
	threshold := s.HighValueThreshold
	if threshold.IsZero() {
		threshold = DefaultHighValueThreshold
	}

	out := ds.withColumn(ColITCOptimization)
	for _, rec := range out.Records {
		rec[ColITCOptimization] = OptimizationNoChange
	}

	// Rule 1: high-value transactions not currently claiming ITC.
	for i, rec := range out.Records {
		if rec.String(ColITCEligible) != EligibleNo {
			continue
		}
		amount, err := rec.Decimal(ColAmount)
		if err != nil {
			return out, fmt.Errorf("itc rules: record %d: %w", i, err)
		}
		if amount.Cmp(threshold) > 0 {
			rec[ColITCOptimization] = OptimizationConsiderITC
		}
	}

	// Rule 2: suppliers whose invoices all share one tax type. Runs after
	// Rule 1 and wins on overlap.
	taxTypes := make(map[string]map[string]bool)
	for _, rec := range out.Records {
		gstin := rec.String(ColGSTIN)
		if taxTypes[gstin] == nil {
			taxTypes[gstin] = make(map[string]bool)
		}
		taxTypes[gstin][rec.String(ColTaxType)] = true
	}
	for _, rec := range out.Records {
		if rec.String(ColITCEligible) != EligibleNo {
			continue
		}
		if len(taxTypes[rec.String(ColGSTIN)]) == 1 {
			rec[ColITCOptimization] = OptimizationReviewITC
		}
	}

	return out, nil
}
