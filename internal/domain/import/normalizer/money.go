package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ThousandsPolicy controls when '.' is read as a thousands separator
type ThousandsPolicy int

const (
	// ThousandsAlways removes every '.' before reading ',' as the decimal separator
	ThousandsAlways ThousandsPolicy = iota
	// ThousandsWithDecimalComma removes '.' only when the value also carries a decimal ','
	ThousandsWithDecimalComma
)

// MoneyFormat describes how one source encodes currency values
type MoneyFormat struct {
	Name      string
	Symbol    string // currency prefix stripped once, e.g. "R$"
	Signed    bool   // "-R$ 26,52" is negative and a lone "-" is zero
	Thousands ThousandsPolicy
}

var (
	// AcquirerFormat reads acquirer exports: '; R$ 1.600,00 ;'
	AcquirerFormat = MoneyFormat{Name: "acquirer", Symbol: "R$", Thousands: ThousandsAlways}

	// AcquirerSignedFormat reads acquirer settlement exports where discounts are '-R$ 26,52'
	AcquirerSignedFormat = MoneyFormat{Name: "acquirer_signed", Symbol: "R$", Signed: true, Thousands: ThousandsAlways}

	// LedgerFormat reads clinic ledger exports without a symbol: ';1200;' or ';1173,48;'
	LedgerFormat = MoneyFormat{Name: "ledger", Thousands: ThousandsWithDecimalComma}

	// ClinicExportFormat reads clinic exports with the symbol glued to the digits: 'R$700,00'
	ClinicExportFormat = MoneyFormat{Name: "clinic_export", Symbol: "R$", Thousands: ThousandsAlways}
)

// separatorsOnly matches values that carry no digits at all, like ";", "," or "-"
func separatorsOnly(s string) bool {
	return strings.Trim(s, " \t;,.-") == ""
}

// ParseMoney converts a raw cell into an exact decimal amount.
// nil and separator-only strings are zero. Numeric values pass through unchanged.
// Unparsable input returns ErrInvalidAmount; the caller decides the fallback.
func ParseMoney(raw any, f MoneyFormat) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		return canonicalZero(v), nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, nil
		}
		return canonicalZero(*v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, v)
		}
		return canonicalZero(decimal.NewFromFloat(v)), nil
	case float32:
		return ParseMoney(float64(v), f)
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint8:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint16:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint32:
		return decimal.NewFromUint64(uint64(v)), nil
	case uint64:
		return decimal.NewFromUint64(v), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, v.String())
		}
		return canonicalZero(d), nil
	case string:
		return parseMoneyString(v, f)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, raw)
	}
}

func parseMoneyString(raw string, f MoneyFormat) (decimal.Decimal, error) {
	cleaned := strings.Trim(raw, " \t\r\n;")

	negative := false
	if f.Signed {
		switch {
		case f.Symbol != "" && strings.HasPrefix(cleaned, "-"+f.Symbol):
			negative = true
			cleaned = strings.TrimPrefix(cleaned, "-")
		case cleaned == "-":
			return decimal.Zero, nil
		}
	}

	if f.Symbol != "" {
		cleaned = strings.TrimSpace(strings.Replace(cleaned, f.Symbol, "", 1))
	}

	switch f.Thousands {
	case ThousandsAlways:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case ThousandsWithDecimalComma:
		if strings.Contains(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.ReplaceAll(cleaned, ",", ".")
		}
	}
	cleaned = strings.TrimSpace(cleaned)

	if separatorsOnly(cleaned) {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if negative {
		amount = amount.Neg()
	}
	return canonicalZero(amount), nil
}

// canonicalZero folds any zero value (including "-0,00") into decimal.Zero
func canonicalZero(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return d
}
