package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/service"
)

// Workbook sheet names
const (
	SheetComparisons = "Comparacoes"
	SheetTotals      = "Totais"
	SheetDaily       = "Diario"
	SheetDiagnostics = "Diagnosticos"
)

// moneyFormat is the built-in "#,##0.00" number format
const moneyFormat = 4

// NewWorkbook builds an XLSX workbook with one sheet per report section.
// Amounts are stored as numbers so they can be summed in the spreadsheet.
func NewWorkbook(r *service.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create money style: %w", err)
	}

	sheets := []struct {
		name  string
		write func(*excelize.File, string, *service.Report, int) error
	}{
		{SheetComparisons, writeComparisonSheet},
		{SheetTotals, writeTotalsSheet},
		{SheetDaily, writeDailySheet},
		{SheetDiagnostics, writeDiagnosticsSheet},
	}
	for i, s := range sheets {
		if i == 0 {
			err = f.SetSheetName("Sheet1", s.name)
		} else {
			_, err = f.NewSheet(s.name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}
		if err := s.write(f, s.name, r, money); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteXLSX writes the workbook of r to w
func WriteXLSX(w io.Writer, r *service.Report) error {
	f, err := NewWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveXLSX writes the workbook of r to path
func SaveXLSX(path string, r *service.Report) error {
	f, err := NewWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleColumns(f *excelize.File, sheet string, lastRow, style int, cols ...string) error {
	if lastRow < 2 {
		return nil
	}
	for _, col := range cols {
		if err := f.SetCellStyle(sheet, fmt.Sprintf("%s2", col), fmt.Sprintf("%s%d", col, lastRow), style); err != nil {
			return err
		}
	}
	return nil
}

func writeComparisonSheet(f *excelize.File, sheet string, r *service.Report, money int) error {
	header := []any{"Tipo", "Fonte A", "Fonte B", "Total A", "Registros A", "Total B", "Registros B", "Diferença", "Diferença %", "Status"}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, res := range r.Results {
		row := []any{
			string(res.AnalysisType),
			res.SourcePair[0],
			res.SourcePair[1],
			res.TotalA.InexactFloat64(),
			res.RecordCountA,
			res.TotalB.InexactFloat64(),
			res.RecordCountB,
			res.Difference.InexactFloat64(),
			res.DifferencePercent.Round(2).InexactFloat64(),
			Status(res),
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return styleColumns(f, sheet, len(r.Results)+1, money, "D", "F", "H")
}

func writeTotalsSheet(f *excelize.File, sheet string, r *service.Report, money int) error {
	if err := setRow(f, sheet, 1, []any{"Fonte", "Coluna", "Total", "Registros"}); err != nil {
		return err
	}
	totals := r.SortedTotals()
	for i, t := range totals {
		if err := setRow(f, sheet, i+2, []any{t.Source, t.Column, t.Total.InexactFloat64(), t.RecordCount}); err != nil {
			return err
		}
	}
	return styleColumns(f, sheet, len(totals)+1, money, "C")
}

func writeDailySheet(f *excelize.File, sheet string, r *service.Report, money int) error {
	if err := setRow(f, sheet, 1, []any{"Fonte A", "Fonte B", "Data", "Total A", "Total B", "Diferença"}); err != nil {
		return err
	}
	row := 2
	for _, res := range r.Results {
		for _, d := range res.DivergenceDetails {
			values := []any{
				res.SourcePair[0],
				res.SourcePair[1],
				d.Date,
				d.TotalA.InexactFloat64(),
				d.TotalB.InexactFloat64(),
				d.Difference.InexactFloat64(),
			}
			if err := setRow(f, sheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return styleColumns(f, sheet, row-1, money, "D", "E", "F")
}

func writeDiagnosticsSheet(f *excelize.File, sheet string, r *service.Report, _ int) error {
	if err := setRow(f, sheet, 1, []any{"Tipo", "Fonte", "Coluna", "Linha", "Valor", "Mensagem"}); err != nil {
		return err
	}
	for i, e := range r.Diagnostics {
		values := []any{string(e.Kind), e.Source, e.Column, e.Row, e.Value, e.Message}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}
