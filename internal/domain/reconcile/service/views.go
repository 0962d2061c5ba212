package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/common"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/import/loader"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/aggregator"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/diagnostics"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/table"
)

const (
	summarySampleSize = 3
	detailEdgeSize    = 5
)

// SourceSummary describes what was loaded for one source
type SourceSummary struct {
	Source  string         `json:"source"`
	Label   string         `json:"label"`
	Records int            `json:"records"`
	Columns []string       `json:"columns"`
	Sample  []table.Record `json:"sample"`
}

// ColumnStats summarizes one monetary column
type ColumnStats struct {
	Total decimal.Decimal `json:"total"`
	Mean  decimal.Decimal `json:"mean"`
	Min   decimal.Decimal `json:"min"`
	Max   decimal.Decimal `json:"max"`
}

// SourceDetail is the canonical view of one source
type SourceDetail struct {
	Source        string                 `json:"source"`
	Label         string                 `json:"label"`
	Records       int                    `json:"records"`
	Columns       []string               `json:"columns"`
	Stats         map[string]ColumnStats `json:"stats"`
	PrimaryColumn string                 `json:"primary_column"`
	PrimaryTotal  decimal.Decimal        `json:"primary_total"`
	ValueLabel    string                 `json:"value_label"`
	First         []table.Record         `json:"first"`
	Last          []table.Record         `json:"last"`
	Diagnostics   []diagnostics.Entry    `json:"diagnostics"`
}

// Summary lists, per source, the record count, the semantic column names and a few rows.
// Rows are shown as loaded, before any parsing or filtering.
func (s *ServiceImpl) Summary(ctx context.Context, p loader.Period) ([]SourceSummary, error) {
	raw, err := s.load(ctx, p)
	if err != nil {
		return nil, err
	}

	ids := s.profiles.IDs()
	out := make([]SourceSummary, 0, len(ids))
	for _, id := range ids {
		t := raw[id].Clone()
		t.Rename(s.profiles[id].Columns)
		out = append(out, SourceSummary{
			Source:  id,
			Label:   s.profiles.Label(id),
			Records: t.Len(),
			Columns: t.Columns,
			Sample:  t.Head(summarySampleSize),
		})
	}
	return out, nil
}

// Detail returns statistics for the monetary columns of one source, its primary total and the
// first and last rows of its canonical table.
func (s *ServiceImpl) Detail(ctx context.Context, p loader.Period, sourceID string) (*SourceDetail, error) {
	l := s.logger.With(slog.String("method", "Detail"), slog.String("source", sourceID))

	prof, err := s.profileFor(sourceID)
	if err != nil {
		return nil, err
	}

	raw, err := s.load(ctx, p)
	if err != nil {
		return nil, err
	}
	if raw[sourceID].Empty() {
		return nil, fmt.Errorf("source %q in %s: %w", sourceID, p.Code, common.ErrNoData)
	}

	diag := diagnostics.NewCollector(s.logger)
	canon := s.normalizer.Normalize(sourceID, raw[sourceID], diag)
	total := s.aggregator.Aggregate(sourceID, canon, diag)

	l.DebugContext(ctx, "Source detail computed", slog.Int("records", canon.Len()))

	return &SourceDetail{
		Source:        sourceID,
		Label:         prof.Label,
		Records:       canon.Len(),
		Columns:       canon.Columns,
		Stats:         columnStats(canon),
		PrimaryColumn: total.Column,
		PrimaryTotal:  total.Total,
		ValueLabel:    prof.ValueLabel(),
		First:         canon.Head(detailEdgeSize),
		Last:          canon.Tail(detailEdgeSize),
		Diagnostics:   diag.Entries(),
	}, nil
}

// columnStats computes total, mean, min and max for every column holding decimals
func columnStats(t *table.Table) map[string]ColumnStats {
	stats := make(map[string]ColumnStats)
	for _, col := range t.Columns {
		var (
			st    ColumnStats
			count int64
		)
		for _, r := range t.Rows {
			v, ok := r.Amount(col)
			if !ok {
				continue
			}
			if count == 0 {
				st.Min, st.Max = v, v
			}
			st.Total = st.Total.Add(v)
			st.Min = decimal.Min(st.Min, v)
			st.Max = decimal.Max(st.Max, v)
			count++
		}
		if count == 0 {
			continue
		}
		st.Mean = st.Total.Div(decimal.NewFromInt(count))
		stats[col] = st
	}
	return stats
}

// SortedTotals returns the aggregates of a report ordered by source ID
func (r *Report) SortedTotals() []aggregator.SourceTotal {
	out := make([]aggregator.SourceTotal, 0, len(r.Totals))
	for _, t := range r.Totals {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Source < out[j].Source
	})
	return out
}
