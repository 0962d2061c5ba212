package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/diagnostics"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/service"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/table"
)

// WriteSummary renders the per-source overview of a period
func WriteSummary(w io.Writer, label string, summaries []service.SourceSummary) error {
	fmt.Fprintf(w, "RESUMO DOS DADOS - %s\n\n", label)

	for _, s := range summaries {
		fmt.Fprintf(w, "%s (%s): %d registros\n", s.Label, s.Source, s.Records)
		if s.Records == 0 {
			fmt.Fprintln(w, "  Nenhum dado carregado")
			fmt.Fprintln(w)
			continue
		}
		if err := writeRecords(w, s.Columns, s.Sample); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteDetail renders the detailed view of one source
func WriteDetail(w io.Writer, label string, d *service.SourceDetail) error {
	fmt.Fprintf(w, "DETALHES - %s - %s\n\n", d.Label, label)
	fmt.Fprintf(w, "Registros: %d\n", d.Records)
	if d.PrimaryColumn != "" {
		fmt.Fprintf(w, "%s (%s): %s\n", d.ValueLabel, d.PrimaryColumn, Money(d.PrimaryTotal))
	}
	fmt.Fprintln(w)

	if len(d.Stats) > 0 {
		cols := make([]string, 0, len(d.Stats))
		for col := range d.Stats {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		tbl := alignedTable(w, 5, 1, 2, 3, 4)
		tbl.Header("Coluna", "Total", "Média", "Mínimo", "Máximo")
		for _, col := range cols {
			st := d.Stats[col]
			if err := tbl.Append(col, Money(st.Total), Money(st.Mean), Money(st.Min), Money(st.Max)); err != nil {
				return err
			}
		}
		if err := tbl.Render(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Primeiros registros")
	if err := writeRecords(w, d.Columns, d.First); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Últimos registros")
	if err := writeRecords(w, d.Columns, d.Last); err != nil {
		return err
	}

	if len(d.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Diagnósticos")
		return writeDiagnostics(w, d.Diagnostics)
	}
	return nil
}

// WriteDiagnostics lists the diagnostics of a run
func WriteDiagnostics(w io.Writer, entries []diagnostics.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	fmt.Fprintln(w, "DIAGNÓSTICOS")
	return writeDiagnostics(w, entries)
}

func writeDiagnostics(w io.Writer, entries []diagnostics.Entry) error {
	tbl := newTable(w)
	tbl.Header("Tipo", "Fonte", "Coluna", "Linha", "Valor", "Mensagem")
	for _, e := range entries {
		row := ""
		if e.Row > 0 {
			row = fmt.Sprint(e.Row)
		}
		if err := tbl.Append(string(e.Kind), e.Source, e.Column, row, e.Value, e.Message); err != nil {
			return err
		}
	}
	return tbl.Render()
}

func writeRecords(w io.Writer, columns []string, records []table.Record) error {
	if len(columns) == 0 {
		return nil
	}
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}

	t := newTable(w)
	t.Header(header...)
	for _, r := range records {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = Cell(r[c])
		}
		if err := t.Append(row...); err != nil {
			return err
		}
	}
	return t.Render()
}

// Cell renders a record value for display
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return Number(x)
	case table.Date:
		if !x.Valid {
			return ""
		}
		return x.Time.Format("02/01/2006")
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
