// Package profile defines the closed set of source identities and how each one is normalized.
//
// Every source-specific decision (file name, column renaming, money format, monetary column
// keywords and fallbacks, date columns, row filters and the primary value column) lives in a
// NormalizationProfile so the normalizer, aggregator and analyzer contain no per-source branches.
package profile

import (
	"fmt"
	"sort"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/import/normalizer"
)

// AnalysisType separates billed amounts from settled amounts
type AnalysisType string

const (
	Invoicing AnalysisType = "invoicing"
	Payment   AnalysisType = "payment"
)

// Valid reports whether t is a known analysis type
func (t AnalysisType) Valid() bool {
	return t == Invoicing || t == Payment
}

// FileFormat is the on-disk format of a source export
type FileFormat string

const (
	FormatCSV  FileFormat = "csv"
	FormatJSON FileFormat = "json"
)

// Source identities
const (
	InvoicingC6  = "faturamento_c6"
	InvoicingGDS = "faturamento_gds"
	InvoicingWAB = "faturamento_wab"
	PaymentC6    = "pagamento_c6"
	PaymentGDS   = "pagamento_gds"
)

// RowFilter keeps rows whose Column contains Contains (case-sensitive).
// It is skipped when the column is absent.
type RowFilter struct {
	Column   string
	Contains string
}

// NormalizationProfile bundles everything source-specific
type NormalizationProfile struct {
	ID       string
	Label    string
	Analysis AnalysisType

	FilePattern string // fmt pattern receiving the MMYYYY period code
	FileFormat  FileFormat
	Columns     map[string]string // raw header -> semantic name

	Money         normalizer.MoneyFormat
	MoneyKeywords []string
	MoneyFallback []string

	DateColumns       []string
	DateKeyword       string // any column containing it is a date column
	DateFormat        string
	PrimaryDateColumn string

	Filters      []RowFilter
	PrimaryValue []string // ordered preference, first present column wins
}

// FileName returns the export file name for a period code such as "072025"
func (p NormalizationProfile) FileName(periodCode string) string {
	return fmt.Sprintf(p.FilePattern, periodCode)
}

// ValueLabel describes what the primary value represents
func (p NormalizationProfile) ValueLabel() string {
	if p.Analysis == Payment {
		return "Valor Recebível"
	}
	return "Valor Faturado"
}

// Registry maps source IDs to their profiles
type Registry map[string]NormalizationProfile

// Get returns the profile for id
func (r Registry) Get(id string) (NormalizationProfile, bool) {
	p, ok := r[id]
	return p, ok
}

// IDs returns the registered source IDs in a stable order
func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Label returns the display label of id, or id itself when unknown
func (r Registry) Label(id string) string {
	if p, ok := r[id]; ok && p.Label != "" {
		return p.Label
	}
	return id
}

var acquirerInvoicingColumns = map[string]string{
	"DT_VENDA":   "data",
	"HR_VENDA":   "hora",
	"VAL_FAT":    "valor_faturado",
	"VAL_PARC":   "valor_parcela",
	"BANDEIRA":   "bandeira",
	"NUM_CARTAO": "num_cartao",
	"OPERACAO":   "operacao",
	"PARCELAS":   "parcelas",
	"STATUS":     "status",
}

var acquirerPaymentColumns = map[string]string{
	"Hora da venda":               "hora_venda",
	"Data da venda":               "data_venda",
	"Data do recebível":           "data_recebivel",
	"Valor da venda":              "valor_venda",
	"Valor da parcela":            "valor_parcela",
	"Descontos":                   "descontos",
	"Valor do recebível":          "valor_recebivel",
	"Bandeira do cartão":          "bandeira",
	"Número do cartão":            "num_cartao",
	"Tipo de operação":            "tipo_operacao",
	"Parcelas":                    "parcelas",
	"Status do recebível":         "status",
	"Código da venda":             "codigo_venda",
	"Instituição Financeira":      "instituicao_financeira",
	"CNPJ Instituição Financeira": "cnpj_instituicao",
}

var ledgerColumns = map[string]string{
	"R/D":                "tipo",
	"Data de emissão":    "data_emissao",
	"Data de vencimento": "data_vencimento",
	"Data de baixa":      "data_baixa",
	"Responsável":        "responsavel",
	"Paciente":           "paciente",
	"Descrição":          "descricao",
	"Serviços":           "servicos",
	"Categoria":          "categoria",
	"Nota fiscal":        "nota_fiscal",
	"Convênio":           "convenio",
	"Método":             "metodo",
	"Caixa":              "caixa",
	"Valor":              "valor",
	"Valor líquido":      "valor_liquido",
	"Agendado":           "agendado",
	"Pago":               "pago",
	"Observações":        "observacoes",
}

var clinicExportColumns = map[string]string{
	"DATA":                          "data",
	"VALOR PAGO":                    "valor_pago",
	"VALOR TOTAL":                   "valor_total",
	"DESCRIÇÃO":                     "descricao",
	"MODO DE PAGAMTO":               "forma_pagamento",
	"NOME DO PACIENTE (FORNECEDOR)": "paciente",
	"OBS":                           "obs",
}

var ledgerDates = []string{"data_emissao", "data_vencimento", "data_baixa"}

// Default returns the registry for the three sources of the clinic
func Default() Registry {
	return Registry{
		InvoicingC6: {
			ID:                InvoicingC6,
			Label:             "C6",
			Analysis:          Invoicing,
			FilePattern:       "faturamento_C6_%s.csv",
			FileFormat:        FormatCSV,
			Columns:           acquirerInvoicingColumns,
			Money:             normalizer.AcquirerFormat,
			MoneyKeywords:     []string{"valor", "total", "parcela", "receita", "val_fat", "val_parc"},
			MoneyFallback:     []string{"valor_faturado", "valor_parcela", "valor", "total"},
			DateKeyword:       "data",
			DateFormat:        normalizer.DayMonthYear,
			PrimaryDateColumn: "data",
			PrimaryValue:      []string{"valor_faturado", "valor_venda", "valor"},
		},
		InvoicingGDS: {
			ID:                InvoicingGDS,
			Label:             "GDS",
			Analysis:          Invoicing,
			FilePattern:       "faturamento_GDS_%s.csv",
			FileFormat:        FormatCSV,
			Columns:           ledgerColumns,
			Money:             normalizer.LedgerFormat,
			MoneyKeywords:     []string{"valor", "total", "liquido", "receita"},
			MoneyFallback:     []string{"valor", "valor_liquido"},
			DateColumns:       ledgerDates,
			DateFormat:        normalizer.DayMonthYear,
			PrimaryDateColumn: "data_emissao",
			PrimaryValue:      []string{"valor", "valor_venda"},
		},
		InvoicingWAB: {
			ID:                InvoicingWAB,
			Label:             "WAB",
			Analysis:          Invoicing,
			FilePattern:       "faturamento_WAB_%s.json",
			FileFormat:        FormatJSON,
			Columns:           clinicExportColumns,
			Money:             normalizer.ClinicExportFormat,
			MoneyKeywords:     []string{"valor", "total", "pago"},
			MoneyFallback:     []string{"valor_pago", "valor_total"},
			DateColumns:       []string{"data"},
			DateFormat:        normalizer.DayMonthYear,
			PrimaryDateColumn: "data",
			PrimaryValue:      []string{"valor", "valor_pago", "valor_total", "valor_venda"},
		},
		PaymentC6: {
			ID:                PaymentC6,
			Label:             "C6",
			Analysis:          Payment,
			FilePattern:       "pagamento_C6_%s.csv",
			FileFormat:        FormatCSV,
			Columns:           acquirerPaymentColumns,
			Money:             normalizer.AcquirerSignedFormat,
			MoneyKeywords:     []string{"valor", "total", "parcela", "receita", "desconto"},
			MoneyFallback:     []string{"valor_venda", "valor_parcela", "valor_recebivel", "descontos"},
			DateColumns:       []string{"data_venda", "data_recebivel"},
			DateFormat:        normalizer.DayMonthYear,
			PrimaryDateColumn: "data_recebivel",
			Filters:           []RowFilter{{Column: "status", Contains: "Recebido"}},
			PrimaryValue:      []string{"valor_recebivel", "valor_parcela", "valor"},
		},
		PaymentGDS: {
			ID:                PaymentGDS,
			Label:             "GDS",
			Analysis:          Payment,
			FilePattern:       "pagamento_GDS_%s.csv",
			FileFormat:        FormatCSV,
			Columns:           ledgerColumns,
			Money:             normalizer.LedgerFormat,
			MoneyKeywords:     []string{"valor", "total", "liquido", "receita"},
			MoneyFallback:     []string{"valor", "valor_liquido"},
			DateColumns:       ledgerDates,
			DateFormat:        normalizer.DayMonthYear,
			PrimaryDateColumn: "data_baixa",
			Filters: []RowFilter{
				{Column: "tipo", Contains: "Receita"},
				{Column: "pago", Contains: "Sim"},
			},
			PrimaryValue: []string{"valor_liquido", "valor"},
		},
	}
}
