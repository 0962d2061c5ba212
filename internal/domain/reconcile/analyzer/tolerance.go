package analyzer

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Band classifies a divergence percentage
type Band string

const (
	BandCompliant Band = "conforme"
	BandMinor     Band = "pequena divergência"
	BandMajor     Band = "grande divergência"
)

// Tolerance holds the percentage thresholds between bands
type Tolerance struct {
	Minor decimal.Decimal
	Major decimal.Decimal
}

// DefaultTolerance is 1% for minor and 5% for major divergences
func DefaultTolerance() Tolerance {
	return Tolerance{
		Minor: decimal.NewFromInt(1),
		Major: decimal.NewFromInt(5),
	}
}

// NewTolerance builds thresholds from configuration values
func NewTolerance(minor, major float64) (Tolerance, error) {
	t := Tolerance{
		Minor: decimal.NewFromFloat(minor),
		Major: decimal.NewFromFloat(major),
	}
	if t.Minor.IsNegative() || t.Major.LessThan(t.Minor) {
		return Tolerance{}, fmt.Errorf("invalid tolerance: minor %s, major %s", t.Minor, t.Major)
	}
	return t, nil
}

// Classify places percent in a band using its absolute value
func (t Tolerance) Classify(percent decimal.Decimal) Band {
	p := percent.Abs()
	switch {
	case p.LessThan(t.Minor):
		return BandCompliant
	case p.LessThan(t.Major):
		return BandMinor
	default:
		return BandMajor
	}
}
