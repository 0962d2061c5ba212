package normalizer

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseMoney_Acquirer(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"R$ 1.500,75", "1500.75"},
		{"; R$ 600,00 ;", "600"},
		{"R$ 100,50", "100.5"},
		{"R$1.000.000,00", "1000000"},
		{"0,99", "0.99"},
		{"", "0"},
		{"   ", "0"},
		{";", "0"},
		{",", "0"},
		{"; ;", "0"},
	}

	for _, tc := range tests {
		got, err := ParseMoney(tc.input, AcquirerFormat)
		if err != nil {
			t.Errorf("ParseMoney(%q, acquirer) error: %v", tc.input, err)
			continue
		}
		want := decimal.RequireFromString(tc.expected)
		if !got.Equal(want) {
			t.Errorf("ParseMoney(%q, acquirer) = %s, want %s", tc.input, got, want)
		}
	}
}

func TestParseMoney_AcquirerSigned(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-R$ 26,52", "-26.52"},
		{"-R$ 1.026,52", "-1026.52"},
		{"R$ 150,25", "150.25"},
		{"-", "0"},
		{"", "0"},
		{"-R$ 0,00", "0"},
	}

	for _, tc := range tests {
		got, err := ParseMoney(tc.input, AcquirerSignedFormat)
		if err != nil {
			t.Errorf("ParseMoney(%q, signed) error: %v", tc.input, err)
			continue
		}
		want := decimal.RequireFromString(tc.expected)
		if !got.Equal(want) {
			t.Errorf("ParseMoney(%q, signed) = %s, want %s", tc.input, got, want)
		}
		if got.IsZero() && got.String() != "0" {
			t.Errorf("ParseMoney(%q, signed) produced a signed zero %q", tc.input, got.String())
		}
	}
}

func TestParseMoney_Ledger(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1200", "1200"},
		{"1173,48", "1173.48"},
		{"1.500,75", "1500.75"},
		{"2.300,50", "2300.5"},
		{"1200.5", "1200.5"},
		{" 45,23 ", "45.23"},
		{"", "0"},
	}

	for _, tc := range tests {
		got, err := ParseMoney(tc.input, LedgerFormat)
		if err != nil {
			t.Errorf("ParseMoney(%q, ledger) error: %v", tc.input, err)
			continue
		}
		want := decimal.RequireFromString(tc.expected)
		if !got.Equal(want) {
			t.Errorf("ParseMoney(%q, ledger) = %s, want %s", tc.input, got, want)
		}
	}
}

func TestParseMoney_ClinicExport(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"R$700,00", "700"},
		{"R$1.180,50", "1180.5"},
		{"R$ 1.500,75", "1500.75"},
		{"", "0"},
	}

	for _, tc := range tests {
		got, err := ParseMoney(tc.input, ClinicExportFormat)
		if err != nil {
			t.Errorf("ParseMoney(%q, clinic) error: %v", tc.input, err)
			continue
		}
		want := decimal.RequireFromString(tc.expected)
		if !got.Equal(want) {
			t.Errorf("ParseMoney(%q, clinic) = %s, want %s", tc.input, got, want)
		}
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	tests := []struct {
		input  any
		format MoneyFormat
	}{
		{"abc", AcquirerFormat},
		{"R$ R$ 10,00", AcquirerFormat}, // only the first symbol is stripped
		{"-R$ 26,52", AcquirerFormat},   // unsigned variant does not read the sign
		{math.NaN(), LedgerFormat},
		{math.Inf(1), LedgerFormat},
		{true, LedgerFormat},
	}

	for _, tc := range tests {
		got, err := ParseMoney(tc.input, tc.format)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ParseMoney(%v, %s) expected ErrInvalidAmount, got %v", tc.input, tc.format.Name, err)
		}
		if !got.IsZero() {
			t.Errorf("ParseMoney(%v, %s) = %s, want 0", tc.input, tc.format.Name, got)
		}
	}
}

func TestParseMoney_Numeric(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{nil, "0"},
		{15.5, "15.5"},
		{float32(2.5), "2.5"},
		{42, "42"},
		{int64(-7), "-7"},
		{int32(3), "3"},
		{int16(3), "3"},
		{int8(-2), "-2"},
		{uint(5), "5"},
		{uint8(255), "255"},
		{uint16(4), "4"},
		{uint32(9), "9"},
		{uint64(18446744073709551615), "18446744073709551615"},
		{json.Number("25.30"), "25.3"},
		{decimal.RequireFromString("301.25"), "301.25"},
	}

	for _, tc := range tests {
		got, err := ParseMoney(tc.input, AcquirerFormat)
		if err != nil {
			t.Errorf("ParseMoney(%v) error: %v", tc.input, err)
			continue
		}
		want := decimal.RequireFromString(tc.expected)
		if !got.Equal(want) {
			t.Errorf("ParseMoney(%v) = %s, want %s", tc.input, got, want)
		}
	}
}

func TestParseMoney_Idempotent(t *testing.T) {
	for _, raw := range []string{"R$ 1.500,75", "-R$ 26,52", "", "R$ 0,10"} {
		once, err := ParseMoney(raw, AcquirerSignedFormat)
		if err != nil {
			t.Fatalf("ParseMoney(%q) error: %v", raw, err)
		}
		twice, err := ParseMoney(once, AcquirerSignedFormat)
		if err != nil {
			t.Fatalf("ParseMoney(ParseMoney(%q)) error: %v", raw, err)
		}
		if !once.Equal(twice) {
			t.Errorf("ParseMoney not idempotent for %q: %s then %s", raw, once, twice)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    any
		format   string
		expected string // YYYY-MM-DD format
	}{
		{"01/07/2025", DayMonthYear, "2025-07-01"},
		{"25/12/2024", "", "2024-12-25"},
		{"1/7/2025", DayMonthYear, "2025-07-01"},
		{" 02/07/2025 ", DayMonthYear, "2025-07-02"},
		{"02/07/2025 14:30", DayMonthYear, "2025-07-02"},
		{time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC), DayMonthYear, "2025-07-03"},
	}

	for _, tc := range tests {
		got, err := ParseDate(tc.input, tc.format, time.UTC)
		if err != nil {
			t.Errorf("ParseDate(%v, %q) error: %v", tc.input, tc.format, err)
			continue
		}
		gotStr := got.Format("2006-01-02")
		if gotStr != tc.expected {
			t.Errorf("ParseDate(%v, %q) = %s, want %s", tc.input, tc.format, gotStr, tc.expected)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []any{"", "not-a-date", "2025-07-01", "31/02/2025", nil, 12} {
		_, err := ParseDate(input, DayMonthYear, nil)
		if err != ErrInvalidDate {
			t.Errorf("ParseDate(%v) expected ErrInvalidDate, got %v", input, err)
		}
	}
}

func TestConvertDateFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DD/MM/YYYY", "02/01/2006"},
		{"DD-MM-YYYY", "02-01-2006"},
		{"DD/MM/YY", "02/01/06"},
		{"DD/MM/YYYY HH:mm", "02/01/2006 15:04"},
	}

	for _, tc := range tests {
		got := convertDateFormat(tc.input)
		if got != tc.expected {
			t.Errorf("convertDateFormat(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Recebido  ", "Recebido"},
		{"Pagamento  de   consulta", "Pagamento de consulta"},
		{"PIX", "PIX"},
	}

	for _, tc := range tests {
		got := CleanText(tc.input)
		if got != tc.expected {
			t.Errorf("CleanText(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
