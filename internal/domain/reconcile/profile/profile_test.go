package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CoversAllSources(t *testing.T) {
	reg := Default()

	assert.Equal(t, []string{InvoicingC6, InvoicingGDS, InvoicingWAB, PaymentC6, PaymentGDS}, reg.IDs())

	for _, id := range reg.IDs() {
		p, ok := reg.Get(id)
		require.True(t, ok, id)
		assert.Equal(t, id, p.ID)
		assert.True(t, p.Analysis.Valid(), id)
		assert.NotEmpty(t, p.PrimaryValue, id)
		assert.NotEmpty(t, p.MoneyKeywords, id)
		assert.NotEmpty(t, p.MoneyFallback, id)
		assert.NotEmpty(t, p.Columns, id)
	}
}

func TestDefault_OnlyPaymentSourcesFilterRows(t *testing.T) {
	for id, p := range Default() {
		if p.Analysis == Payment {
			assert.NotEmpty(t, p.Filters, id)
		} else {
			assert.Empty(t, p.Filters, id)
		}
	}
}

func TestProfile_FileName(t *testing.T) {
	reg := Default()

	assert.Equal(t, "faturamento_C6_072025.csv", reg[InvoicingC6].FileName("072025"))
	assert.Equal(t, "faturamento_WAB_072025.json", reg[InvoicingWAB].FileName("072025"))
	assert.Equal(t, "pagamento_GDS_122024.csv", reg[PaymentGDS].FileName("122024"))
}

func TestRegistry_Label(t *testing.T) {
	reg := Default()

	assert.Equal(t, "GDS", reg.Label(InvoicingGDS))
	assert.Equal(t, "C6", reg.Label(PaymentC6))
	assert.Equal(t, "desconhecido", reg.Label("desconhecido"))
}

func TestProfile_ValueLabel(t *testing.T) {
	reg := Default()

	assert.Equal(t, "Valor Faturado", reg[InvoicingWAB].ValueLabel())
	assert.Equal(t, "Valor Recebível", reg[PaymentC6].ValueLabel())
}

func TestAnalysisType_Valid(t *testing.T) {
	assert.True(t, Invoicing.Valid())
	assert.True(t, Payment.Valid())
	assert.False(t, AnalysisType("refund").Valid())
}
