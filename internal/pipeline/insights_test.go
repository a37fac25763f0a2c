package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInsightGenerator_Utilization(t *testing.T) {
	// Eligible gst 250 of total 1000 -> 25.0%.
	ds := invoiceDataset(
		invoiceRecord("INV001", "29AAA", 1000, 250, EligibleYes, "CGST", "29"),
		invoiceRecord("INV002", "27BBB", 3000, 750, EligibleNo, "SGST", "27"),
	)

	insights := NewInsightGenerator(zerolog.Nop()).Generate(ds)
	if len(insights) == 0 {
		t.Fatal("expected insights")
	}
	if insights[0].Type != InsightITCUtilization {
		t.Fatalf("insights[0].Type = %q, want %q", insights[0].Type, InsightITCUtilization)
	}
	if !strings.Contains(insights[0].Message, "25.0%") {
		t.Errorf("utilization message = %q, want it to report 25.0%%", insights[0].Message)
	}
}

func TestInsightGenerator_TaxTypeDistribution(t *testing.T) {
	ds := invoiceDataset(
		invoiceRecord("INV001", "29AAA", 100, 18, EligibleYes, "CGST", "29"),
		invoiceRecord("INV002", "29AAA", 100, 18, EligibleYes, "CGST", "29"),
		invoiceRecord("INV003", "27BBB", 100, 18, EligibleYes, "IGST", "27"),
		invoiceRecord("INV004", "27BBB", 100, 18, EligibleYes, "SGST", "27"),
	)

	insights := NewInsightGenerator(zerolog.Nop()).Generate(ds)
	var msg string
	for _, ins := range insights {
		if ins.Type == InsightTaxTypes {
			msg = ins.Message
		}
	}
	want := "Tax type distribution: CGST: 50.0%, IGST: 25.0%, SGST: 25.0%"
	if msg != want {
		t.Errorf("tax type message = %q, want %q", msg, want)
	}
}

func TestInsightGenerator_Geographic(t *testing.T) {
	// State 27 sums to 1500, state 29 to 500.
	ds := invoiceDataset(
		invoiceRecord("INV001", "29AAA", 500, 90, EligibleYes, "CGST", "29"),
		invoiceRecord("INV002", "27BBB", 700, 126, EligibleYes, "IGST", "27"),
		invoiceRecord("INV003", "27CCC", 800, 144, EligibleYes, "IGST", "27"),
	)

	insights := NewInsightGenerator(zerolog.Nop()).Generate(ds)
	var msg string
	for _, ins := range insights {
		if ins.Type == InsightGeographic {
			msg = ins.Message
		}
	}
	if !strings.Contains(msg, "state 27") {
		t.Errorf("geographic message = %q, want top state 27", msg)
	}
	if !strings.Contains(msg, "1,500.00") {
		t.Errorf("geographic message = %q, want thousands-separated 1,500.00", msg)
	}
}

func TestInsightGenerator_ZeroTaxTotalSkipsUtilization(t *testing.T) {
	ds := invoiceDataset(
		invoiceRecord("INV001", "29AAA", 100, 0, EligibleYes, "CGST", "29"),
	)

	buf := &bytes.Buffer{}
	log := zerolog.New(buf)
	insights := NewInsightGenerator(log).Generate(ds)

	for _, ins := range insights {
		if ins.Type == InsightITCUtilization {
			t.Errorf("utilization insight present despite zero tax total: %q", ins.Message)
		}
	}
	// The other two insights still render.
	if len(insights) != 2 {
		t.Errorf("len(insights) = %d, want 2", len(insights))
	}
	if !strings.Contains(buf.String(), "zero") {
		t.Errorf("expected logged divide-by-zero failure, got %q", buf.String())
	}
}

func TestInsightGenerator_EmptyDataset(t *testing.T) {
	insights := NewInsightGenerator(zerolog.Nop()).Generate(invoiceDataset())
	if insights == nil {
		t.Fatal("Generate() = nil, want empty non-nil slice")
	}
	if len(insights) != 0 {
		t.Errorf("len(insights) = %d, want 0", len(insights))
	}
}
