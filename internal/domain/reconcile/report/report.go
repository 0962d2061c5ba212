// Package report renders reconciliation results as terminal tables, JSON or an XLSX workbook.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/common"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/analyzer"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/profile"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/service"
)

// Format types for output.
type Format string

const (
	// FormatTable represents terminal table output.
	FormatTable Format = "table"
	// FormatJSON represents JSON output.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q", common.ErrBadRequest, s)
	}
}

// NoDataNote marks comparisons where only one side has a total
const NoDataNote = "sem dados"

var (
	printer = message.NewPrinter(language.BrazilianPortuguese)
	upper   = cases.Upper(language.BrazilianPortuguese)
)

// Money formats an amount the Brazilian way, e.g. "R$ 1.234,56"
func Money(d decimal.Decimal) string {
	return "R$ " + Number(d)
}

// Number formats a value with two decimals and Brazilian separators
func Number(d decimal.Decimal) string {
	return printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Percent formats a percentage, e.g. "-24,79%"
func Percent(d decimal.Decimal) string {
	return Number(d) + "%"
}

// Status is the display text of a comparison band, with the one-sided note when it applies
func Status(r analyzer.ComparisonResult) string {
	s := upper.String(string(r.Band))
	if r.OneSided() {
		s += " (" + NoDataNote + ")"
	}
	return s
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Write renders r in the requested format
func Write(w io.Writer, r *service.Report, f Format) error {
	if f == FormatJSON {
		return WriteJSON(w, r)
	}
	return WriteReport(w, r)
}

// WriteReport renders the comparisons of r grouped by analysis type, followed by the
// per-source totals and an overall summary.
func WriteReport(w io.Writer, r *service.Report) error {
	fmt.Fprintf(w, "RESULTADOS DA CONCILIAÇÃO - %s\n\n", r.PeriodLabel)

	sections := []struct {
		title string
		typ   profile.AnalysisType
	}{
		{"ANÁLISE DE FATURAMENTO", profile.Invoicing},
		{"ANÁLISE DE PAGAMENTO", profile.Payment},
	}
	for _, sec := range sections {
		var rows []analyzer.ComparisonResult
		for _, res := range r.Results {
			if res.AnalysisType == sec.typ {
				rows = append(rows, res)
			}
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintln(w, sec.title)
		if err := writeComparisons(w, rows); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "TOTAIS POR FONTE")
	if err := writeTotals(w, r); err != nil {
		return err
	}
	fmt.Fprintln(w)

	writeOverview(w, r)
	return nil
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w)
}

// alignedTable right-aligns the listed columns of a table with the given number of columns
func alignedTable(w io.Writer, columns int, right ...int) *tablewriter.Table {
	align := make([]tw.Align, columns)
	for i := range align {
		align[i] = tw.AlignLeft
	}
	for _, col := range right {
		align[col] = tw.AlignRight
	}
	config := tablewriter.Config{}
	config.Row.Alignment = tw.CellAlignment{PerColumn: align}
	return tablewriter.NewTable(w, tablewriter.WithConfig(config))
}

func writeComparisons(w io.Writer, results []analyzer.ComparisonResult) error {
	table := alignedTable(w, 8, 1, 2, 3, 4, 5, 6)
	table.Header("Fontes", "Total A", "Registros A", "Total B", "Registros B", "Diferença", "Diferença %", "Status")
	for _, res := range results {
		if err := table.Append(
			res.SourcePair[0]+" x "+res.SourcePair[1],
			Money(res.TotalA),
			res.RecordCountA,
			Money(res.TotalB),
			res.RecordCountB,
			Money(res.Difference),
			Percent(res.DifferencePercent),
			Status(res),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeTotals(w io.Writer, r *service.Report) error {
	table := alignedTable(w, 4, 2, 3)
	table.Header("Fonte", "Coluna", "Total", "Registros")
	for _, t := range r.SortedTotals() {
		if err := table.Append(t.Source, t.Column, Money(t.Total), t.RecordCount); err != nil {
			return err
		}
	}
	return table.Render()
}

// Overview counts how many comparisons fall outside the compliant band
type Overview struct {
	Comparisons     int
	Divergent       int
	ConformityRate  decimal.Decimal
	DiagnosticCount int
}

// Summarize computes the overview of r
func Summarize(r *service.Report) Overview {
	o := Overview{
		Comparisons:     len(r.Results),
		DiagnosticCount: len(r.Diagnostics),
		ConformityRate:  decimal.Zero,
	}
	for _, res := range r.Results {
		if res.Band != analyzer.BandCompliant {
			o.Divergent++
		}
	}
	if o.Comparisons > 0 {
		o.ConformityRate = decimal.NewFromInt(int64(o.Comparisons - o.Divergent)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(o.Comparisons)))
	}
	return o
}

func writeOverview(w io.Writer, r *service.Report) {
	o := Summarize(r)
	fmt.Fprintln(w, "RESUMO GERAL")
	fmt.Fprintf(w, "Total de análises realizadas: %d\n", o.Comparisons)
	fmt.Fprintf(w, "Análises com divergência: %d\n", o.Divergent)
	fmt.Fprintf(w, "Taxa de conformidade: %s\n", Percent(o.ConformityRate))
	if o.DiagnosticCount > 0 {
		fmt.Fprintf(w, "Valores corrigidos ou ausentes: %d (veja os diagnósticos)\n", o.DiagnosticCount)
	}
	if o.Divergent > 0 {
		fmt.Fprintf(w, "\nAtenção: %d análise(s) com divergência!\n", o.Divergent)
	} else {
		fmt.Fprintln(w, "\nTodas as análises estão conformes!")
	}
}
