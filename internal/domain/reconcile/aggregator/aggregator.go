// Package aggregator reduces a canonical table to the totals the analyzer compares.
package aggregator

import (
	"io"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/import/normalizer"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/diagnostics"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/profile"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/table"
)

// DefaultSampleSize is the number of records kept for display
const DefaultSampleSize = 5

// SourceTotal is the aggregate of one source for one run
type SourceTotal struct {
	Source        string                     `json:"source"`
	Column        string                     `json:"column,omitempty"`
	Total         decimal.Decimal            `json:"total"`
	RecordCount   int                        `json:"record_count"`
	SampleRecords []table.Record             `json:"sample_records,omitempty"`
	Daily         map[string]decimal.Decimal `json:"daily,omitempty"`
}

// Empty returns the zero aggregate for source
func Empty(source string) SourceTotal {
	return SourceTotal{Source: source, Total: decimal.Zero}
}

// Aggregator sums the primary value column of canonical tables
type Aggregator struct {
	profiles   profile.Registry
	sampleSize int
	logger     *slog.Logger
}

// NewAggregator creates an aggregator. A non-positive sampleSize uses DefaultSampleSize.
func NewAggregator(profiles profile.Registry, sampleSize int, logger *slog.Logger) *Aggregator {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{
		profiles:   profiles,
		sampleSize: sampleSize,
		logger:     logger,
	}
}

// Aggregate totals the primary value column of t.
// An empty table, an unknown source or a table without any primary column totals zero.
func (a *Aggregator) Aggregate(sourceID string, t *table.Table, diag *diagnostics.Collector) SourceTotal {
	p, ok := a.profiles.Get(sourceID)
	if !ok {
		diag.MissingSource(sourceID, "no normalization profile for source")
		return Empty(sourceID)
	}
	if t.Empty() {
		return Empty(sourceID)
	}

	col, ok := PrimaryColumn(t, p)
	if !ok {
		diag.MissingColumn(sourceID, "", "none of the primary value columns is present")
		return Empty(sourceID)
	}

	total := decimal.Zero
	daily := make(map[string]decimal.Decimal)
	for i, row := range t.Rows {
		amount, ok := row.Amount(col)
		if !ok {
			// Tables that skipped normalization still aggregate.
			parsed, err := normalizer.ParseMoney(row[col], p.Money)
			if err != nil {
				diag.ParseFallback(sourceID, col, i+1, row[col], err)
			}
			amount = parsed
		}
		total = total.Add(amount)

		if p.PrimaryDateColumn == "" {
			continue
		}
		if d, ok := row.Date(p.PrimaryDateColumn); ok && d.Valid {
			daily[d.Key()] = daily[d.Key()].Add(amount)
		}
	}

	a.logger.Debug("source aggregated",
		"source", sourceID,
		"column", col,
		"records", t.Len(),
		"total", total.StringFixed(2),
	)

	return SourceTotal{
		Source:        sourceID,
		Column:        col,
		Total:         total,
		RecordCount:   t.Len(),
		SampleRecords: t.Head(a.sampleSize),
		Daily:         daily,
	}
}

// PrimaryColumn returns the first column of the profile preference list present in t
func PrimaryColumn(t *table.Table, p profile.NormalizationProfile) (string, bool) {
	for _, col := range p.PrimaryValue {
		if t.HasColumn(col) {
			return col, true
		}
	}
	return "", false
}
