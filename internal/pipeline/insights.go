package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Insight type labels exposed on the wire.
const (
	InsightITCUtilization = "ITC Utilization"
	InsightTaxTypes       = "Tax Type Analysis"
	InsightGeographic     = "Geographic Analysis"
)

// Insight is a rendered, dataset-level observation. Immutable once created
// and never persisted.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// inr renders amounts with en-style thousands separators for messages.
var inr = message.NewPrinter(language.English)

// InsightGenerator computes dataset-level insights. A builder that fails
// (e.g. utilization over a zero tax total) is logged and skipped; the
// remaining insights still render.
type InsightGenerator struct {
	log zerolog.Logger
}

// NewInsightGenerator creates a generator reporting failures to the given
// logger.
func NewInsightGenerator(log zerolog.Logger) *InsightGenerator {
	return &InsightGenerator{log: log}
}

// Generate returns the ordered insight list for the dataset. Never nil.
func (g *InsightGenerator) Generate(ds Dataset) []Insight {
	builders := []func(Dataset) (Insight, error){
		buildUtilizationInsight,
		buildTaxTypeInsight,
		buildGeographicInsight,
	}

	insights := make([]Insight, 0, len(builders))
	for _, build := range builders {
		ins, err := build(ds)
		if err != nil {
			g.log.Error().Err(err).Msg("Error generating insights")
			continue
		}
		insights = append(insights, ins)
	}
	return insights
}

// buildUtilizationInsight reports the share of the batch's tax already
// claimed as ITC.
func buildUtilizationInsight(ds Dataset) (Insight, error) {
	totalGST := sumColumn(ds, ColGSTAmount)
	if totalGST.IsZero() {
		return Insight{}, fmt.Errorf("itc utilization: total gst amount is zero")
	}
	eligible := sumColumnWhere(ds, ColGSTAmount, ColITCEligible, EligibleYes)

	utilization := eligible.InexactFloat64() / totalGST.InexactFloat64() * 100
	return Insight{
		Type: InsightITCUtilization,
		Message: fmt.Sprintf(
			"Current ITC utilization is %.1f%%. Consider reviewing ineligible ITC claims.",
			utilization),
	}, nil
}

// buildTaxTypeInsight reports the relative frequency of each tax type,
// most frequent first, names breaking ties.
func buildTaxTypeInsight(ds Dataset) (Insight, error) {
	if ds.Len() == 0 {
		return Insight{}, fmt.Errorf("tax type distribution: no records")
	}

	counts := make(map[string]int)
	for _, rec := range ds.Records {
		counts[rec.String(ColTaxType)]++
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(a, b int) bool {
		if counts[types[a]] != counts[types[b]] {
			return counts[types[a]] > counts[types[b]]
		}
		return types[a] < types[b]
	})

	parts := make([]string, 0, len(types))
	for _, t := range types {
		pct := float64(counts[t]) / float64(ds.Len()) * 100
		parts = append(parts, fmt.Sprintf("%s: %.1f%%", t, pct))
	}
	return Insight{
		Type:    InsightTaxTypes,
		Message: "Tax type distribution: " + strings.Join(parts, ", "),
	}, nil
}

// buildGeographicInsight reports the state with the highest summed
// transaction amount.
func buildGeographicInsight(ds Dataset) (Insight, error) {
	if ds.Len() == 0 {
		return Insight{}, fmt.Errorf("geographic analysis: no records")
	}

	type stateAgg struct {
		amount float64
		gst    float64
	}
	byState := make(map[string]*stateAgg)
	for _, rec := range ds.Records {
		state := rec.String(ColStateCode)
		agg := byState[state]
		if agg == nil {
			agg = &stateAgg{}
			byState[state] = agg
		}
		if amount, err := rec.Decimal(ColAmount); err == nil {
			agg.amount += amount.InexactFloat64()
		}
		if gst, err := rec.Decimal(ColGSTAmount); err == nil {
			agg.gst += gst.InexactFloat64()
		}
	}

	topState := ""
	for state, agg := range byState {
		if topState == "" ||
			agg.amount > byState[topState].amount ||
			(agg.amount == byState[topState].amount && state < topState) {
			topState = state
		}
	}

	return Insight{
		Type: InsightGeographic,
		Message: inr.Sprintf(
			"Highest transaction volume in state %s with ₹%.2f in transactions",
			topState, byState[topState].amount),
	}, nil
}
