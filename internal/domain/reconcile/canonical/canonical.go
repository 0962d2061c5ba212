// Package canonical turns raw source tables into canonical tables: semantic column names,
// decimal amounts, parsed dates, cleaned text and, for payment sources, only the rows that
// represent money actually received.
package canonical

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/import/normalizer"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/diagnostics"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/profile"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/table"
)

// Normalizer applies source profiles to raw tables
type Normalizer struct {
	profiles profile.Registry
	logger   *slog.Logger
	loc      *time.Location
}

// NewNormalizer creates a normalizer for the given profiles
func NewNormalizer(profiles profile.Registry, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Normalizer{
		profiles: profiles,
		logger:   logger,
		loc:      time.UTC,
	}
}

// Normalize returns the canonical form of raw for sourceID.
// It never fails: unknown sources and nil tables produce an empty table, and every value
// that had to be replaced by a default is recorded in diag.
func (n *Normalizer) Normalize(sourceID string, raw *table.Table, diag *diagnostics.Collector) *table.Table {
	p, ok := n.profiles.Get(sourceID)
	if !ok {
		diag.MissingSource(sourceID, "no normalization profile for source")
		return table.New()
	}
	if raw.Empty() {
		return table.New()
	}

	t := raw.Clone()
	t.Rename(p.Columns)

	moneyCols := MonetaryColumns(t.Columns, p)
	if len(moneyCols) == 0 {
		diag.MissingColumn(p.ID, "", "no monetary column matched keywords or fallback list")
	}
	dateCols := DateColumns(t.Columns, p, moneyCols)

	for i, row := range t.Rows {
		for _, col := range t.Columns {
			v := row[col]
			switch {
			case moneyCols[col]:
				amount, err := normalizer.ParseMoney(v, p.Money)
				if err != nil {
					diag.ParseFallback(p.ID, col, i+1, v, err)
				}
				row[col] = amount
			case dateCols[col]:
				row[col] = n.parseDate(p, col, i+1, v, diag)
			default:
				if s, ok := v.(string); ok {
					row[col] = normalizer.CleanText(s)
				}
			}
		}
	}

	before := t.Len()
	t = ApplyFilters(t, p.Filters)
	if removed := before - t.Len(); removed > 0 {
		n.logger.Info("rows filtered out",
			"source", p.ID,
			"removed", removed,
			"kept", t.Len(),
		)
	}

	return t
}

func (n *Normalizer) parseDate(p profile.NormalizationProfile, col string, row int, v any, diag *diagnostics.Collector) table.Date {
	if d, ok := v.(table.Date); ok {
		return d
	}
	parsed, err := normalizer.ParseDate(v, p.DateFormat, n.loc)
	if err != nil {
		// Blank cells are simply undated; anything else is worth reporting.
		if s, isString := v.(string); v != nil && (!isString || strings.TrimSpace(s) != "") {
			diag.ParseFallback(p.ID, col, row, v, err)
		}
		return table.MissingDate()
	}
	return table.Date{Time: parsed, Valid: true}
}

// MonetaryColumns selects the columns holding money.
// A column qualifies when its lower-cased name contains one of the profile keywords; when
// nothing matches, the profile's known column names are used instead.
func MonetaryColumns(columns []string, p profile.NormalizationProfile) map[string]bool {
	selected := make(map[string]bool)
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, kw := range p.MoneyKeywords {
			if strings.Contains(lower, kw) {
				selected[col] = true
				break
			}
		}
	}
	if len(selected) > 0 {
		return selected
	}

	present := make(map[string]bool, len(columns))
	for _, col := range columns {
		present[col] = true
	}
	for _, col := range p.MoneyFallback {
		if present[col] {
			selected[col] = true
		}
	}
	return selected
}

// DateColumns selects the date columns that are not already monetary
func DateColumns(columns []string, p profile.NormalizationProfile, money map[string]bool) map[string]bool {
	explicit := make(map[string]bool, len(p.DateColumns))
	for _, col := range p.DateColumns {
		explicit[col] = true
	}

	selected := make(map[string]bool)
	for _, col := range columns {
		if money[col] {
			continue
		}
		if explicit[col] || (p.DateKeyword != "" && strings.Contains(strings.ToLower(col), p.DateKeyword)) {
			selected[col] = true
		}
	}
	return selected
}

// ApplyFilters keeps the rows matching every filter whose column is present.
// Matching is a case-sensitive substring test on string cells.
func ApplyFilters(t *table.Table, filters []profile.RowFilter) *table.Table {
	for _, f := range filters {
		if !t.HasColumn(f.Column) {
			continue
		}
		t = t.Filter(func(r table.Record) bool {
			s, ok := r.Text(f.Column)
			return ok && strings.Contains(s, f.Contains)
		})
	}
	return t
}
