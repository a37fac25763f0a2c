package pipeline

import (
	"fmt"
	"math"
)

// StandardScaler standardizes feature columns to zero mean and unit
// variance. A fresh scaler is fitted per dataset; it holds no state across
// calls and is safe to construct per request.
type StandardScaler struct{}

// NewStandardScaler creates a scaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// FitTransform standardizes each feature dimension independently. A column
// with zero variance maps to zero for every sample rather than dividing by
// zero.
func (s *StandardScaler) FitTransform(features [][2]float64) [][2]float64 {
	n := len(features)
	if n == 0 {
		return nil
	}

	out := make([][2]float64, n)
	for dim := 0; dim < 2; dim++ {
		mean := 0.0
		for _, f := range features {
			mean += f[dim]
		}
		mean /= float64(n)

		variance := 0.0
		for _, f := range features {
			d := f[dim] - mean
			variance += d * d
		}
		variance /= float64(n)
		std := math.Sqrt(variance)

		for i, f := range features {
			if std == 0 {
				out[i][dim] = 0
				continue
			}
			out[i][dim] = (f[dim] - mean) / std
		}
	}
	return out
}

// featureMatrix extracts the (amount, gst_amount) pair per record for the
// anomaly model. Any cell that does not resolve to a number fails the whole
// extraction; the caller degrades.
func featureMatrix(ds Dataset) ([][2]float64, error) {
	features := make([][2]float64, ds.Len())
	for i, rec := range ds.Records {
		amount, err := rec.Decimal(ColAmount)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		gst, err := rec.Decimal(ColGSTAmount)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		features[i] = [2]float64{amount.InexactFloat64(), gst.InexactFloat64()}
	}
	return features, nil
}
