// Package analyzer compares source totals pairwise and classifies their divergence.
package analyzer

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/aggregator"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/diagnostics"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/profile"
)

var (
	ErrUnknownSource   = errors.New("unknown source")
	ErrUnknownAnalysis = errors.New("unknown analysis type")
	ErrInvalidPair     = errors.New("invalid source pair")
)

var hundred = decimal.NewFromInt(100)

// Pair names two sources compared under one analysis type
type Pair struct {
	Type profile.AnalysisType `yaml:"type" json:"type"`
	A    string               `yaml:"a" json:"a"`
	B    string               `yaml:"b" json:"b"`
}

// DefaultPairs returns the comparisons run when no pairing is configured
func DefaultPairs() []Pair {
	return []Pair{
		{Type: profile.Invoicing, A: profile.InvoicingGDS, B: profile.InvoicingC6},
		{Type: profile.Invoicing, A: profile.InvoicingGDS, B: profile.InvoicingWAB},
		{Type: profile.Invoicing, A: profile.InvoicingC6, B: profile.InvoicingWAB},
		{Type: profile.Payment, A: profile.PaymentGDS, B: profile.PaymentC6},
	}
}

// ValidatePairs rejects pairs naming unknown sources or analysis types, pairs of a source with
// itself and pairs whose sources belong to another analysis type
func ValidatePairs(pairs []Pair, profiles profile.Registry) error {
	for i, p := range pairs {
		if !p.Type.Valid() {
			return fmt.Errorf("pair %d: %w: %q", i, ErrUnknownAnalysis, p.Type)
		}
		if p.A == p.B {
			return fmt.Errorf("pair %d: %w: %s compared with itself", i, ErrInvalidPair, p.A)
		}
		for _, id := range []string{p.A, p.B} {
			prof, ok := profiles.Get(id)
			if !ok {
				return fmt.Errorf("pair %d: %w: %q", i, ErrUnknownSource, id)
			}
			if prof.Analysis != p.Type {
				return fmt.Errorf("pair %d: %w: %s is a %s source", i, ErrInvalidPair, id, prof.Analysis)
			}
		}
	}
	return nil
}

// DivergenceDetail is the per-day difference between two sources
type DivergenceDetail struct {
	Date       string          `json:"date"`
	TotalA     decimal.Decimal `json:"total_a"`
	TotalB     decimal.Decimal `json:"total_b"`
	Difference decimal.Decimal `json:"difference"`
}

// ComparisonResult is the outcome of comparing one pair
type ComparisonResult struct {
	SourcePair        [2]string            `json:"source_pair"`
	SourceIDs         [2]string            `json:"source_ids"`
	TotalA            decimal.Decimal      `json:"total_a"`
	TotalB            decimal.Decimal      `json:"total_b"`
	RecordCountA      int                  `json:"record_count_a"`
	RecordCountB      int                  `json:"record_count_b"`
	Difference        decimal.Decimal      `json:"difference"`
	DifferencePercent decimal.Decimal      `json:"difference_percent"`
	AnalysisType      profile.AnalysisType `json:"analysis_type"`
	Band              Band                 `json:"band"`
	DivergenceDetails []DivergenceDetail   `json:"divergence_details"`
}

// OneSided reports whether exactly one side has a zero total.
// The zero guard reports such comparisons as 0%, so they deserve a note when displayed.
func (r ComparisonResult) OneSided() bool {
	return r.TotalA.IsZero() != r.TotalB.IsZero()
}

// PercentDivergence expresses difference as a percentage of the larger total.
// It is zero when either total is zero or the larger one is not positive.
func PercentDivergence(difference, a, b decimal.Decimal) decimal.Decimal {
	base := decimal.Max(a, b)
	if a.IsZero() || b.IsZero() || !base.IsPositive() {
		return decimal.Zero
	}
	return difference.Mul(hundred).Div(base)
}

// Compare returns the signed difference a - b and its percentage
func Compare(a, b decimal.Decimal) (difference, percent decimal.Decimal) {
	difference = a.Sub(b)
	return difference, PercentDivergence(difference, a, b)
}

// CompareAbsolute returns |a - b| and its percentage
func CompareAbsolute(a, b decimal.Decimal) (difference, percent decimal.Decimal) {
	difference = a.Sub(b).Abs()
	return difference, PercentDivergence(difference, a, b)
}

// Analyzer runs the configured pairs over a set of source totals
type Analyzer struct {
	pairs     []Pair
	profiles  profile.Registry
	tolerance Tolerance
}

// NewAnalyzer creates an analyzer. A nil pairs slice uses DefaultPairs.
func NewAnalyzer(pairs []Pair, profiles profile.Registry, tolerance Tolerance) *Analyzer {
	if pairs == nil {
		pairs = DefaultPairs()
	}
	return &Analyzer{
		pairs:     pairs,
		profiles:  profiles,
		tolerance: tolerance,
	}
}

// Pairs returns the configured pairs
func (a *Analyzer) Pairs() []Pair {
	return append([]Pair(nil), a.pairs...)
}

// Tolerance returns the classification thresholds
func (a *Analyzer) Tolerance() Tolerance {
	return a.tolerance
}

// CompareAll compares every configured pair, in order.
// A source missing from totals counts as zero total and zero records and is recorded once in
// diag as a missing source. diag may be nil.
func (a *Analyzer) CompareAll(totals map[string]aggregator.SourceTotal, diag *diagnostics.Collector) []ComparisonResult {
	missing := make(map[string]bool)
	side := func(id string) aggregator.SourceTotal {
		if t, ok := totals[id]; ok {
			return t
		}
		if !missing[id] {
			missing[id] = true
			diag.MissingSource(id, "source has no total, compared as zero")
		}
		return aggregator.Empty(id)
	}

	results := make([]ComparisonResult, 0, len(a.pairs))
	for _, p := range a.pairs {
		results = append(results, a.ComparePair(p, side(p.A), side(p.B)))
	}
	return results
}

// ComparePair compares two aggregates with the signed convention
func (a *Analyzer) ComparePair(p Pair, ta, tb aggregator.SourceTotal) ComparisonResult {
	difference, percent := Compare(ta.Total, tb.Total)
	return ComparisonResult{
		SourcePair:        [2]string{a.profiles.Label(p.A), a.profiles.Label(p.B)},
		SourceIDs:         [2]string{p.A, p.B},
		TotalA:            ta.Total,
		TotalB:            tb.Total,
		RecordCountA:      ta.RecordCount,
		RecordCountB:      tb.RecordCount,
		Difference:        difference,
		DifferencePercent: percent,
		AnalysisType:      p.Type,
		Band:              a.tolerance.Classify(percent),
		DivergenceDetails: DailyDivergence(ta.Daily, tb.Daily),
	}
}

// DailyDivergence lists the days on which the two daily series differ, sorted by date
func DailyDivergence(a, b map[string]decimal.Decimal) []DivergenceDetail {
	days := make(map[string]struct{}, len(a)+len(b))
	for d := range a {
		days[d] = struct{}{}
	}
	for d := range b {
		days[d] = struct{}{}
	}

	var details []DivergenceDetail
	for d := range days {
		ta, tb := a[d], b[d]
		if ta.Equal(tb) {
			continue
		}
		details = append(details, DivergenceDetail{
			Date:       d,
			TotalA:     ta,
			TotalB:     tb,
			Difference: ta.Sub(tb),
		})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Date < details[j].Date
	})
	return details
}
