package sniffer

import (
	"testing"
)

// Acquirer invoicing export
const sampleAcquirerCSV = `DT_VENDA;HR_VENDA;VAL_FAT;VAL_PARC;BANDEIRA;STATUS
01/07/2025;10:15;R$ 600,00;R$ 600,00;VISA;Aprovada
02/07/2025;11:20;R$ 1.250,50;R$ 625,25;MASTER;Aprovada
`

// Clinic ledger export preceded by report metadata
const sampleLedgerCSV = "\xef\xbb\xbfRelatório financeiro\r\nPeríodo: 07/2025\r\nR/D;Data de emissão;Paciente;Valor;Valor líquido;Pago\r\nReceita;01/07/2025;Maria;1200;1173,48;Sim\r\n"

// Comma separated export
const sampleCommaCSV = `Data,Descrição,Valor,Status
01/07/2025,Consulta,"150,00",Pago
`

func TestDetectConfig_AcquirerCSV(t *testing.T) {
	config, err := DetectConfig([]byte(sampleAcquirerCSV))
	if err != nil {
		t.Fatalf("DetectConfig failed: %v", err)
	}

	if config.Delimiter != ';' {
		t.Errorf("Expected delimiter ';', got '%c'", config.Delimiter)
	}
	if config.SkipLines != 0 {
		t.Errorf("Expected 0 skip lines, got %d", config.SkipLines)
	}

	expectedHeaders := []string{"DT_VENDA", "HR_VENDA", "VAL_FAT", "VAL_PARC", "BANDEIRA", "STATUS"}
	if len(config.Headers) != len(expectedHeaders) {
		t.Fatalf("Expected %d headers, got %d", len(expectedHeaders), len(config.Headers))
	}
	for i, h := range expectedHeaders {
		if config.Headers[i] != h {
			t.Errorf("Header %d: expected %q, got %q", i, h, config.Headers[i])
		}
	}

	if config.Fingerprint != Fingerprint(expectedHeaders) {
		t.Errorf("Expected fingerprint of the detected headers, got %s", config.Fingerprint)
	}
}

func TestDetectConfig_LedgerWithMetadata(t *testing.T) {
	config, err := DetectConfig([]byte(sampleLedgerCSV))
	if err != nil {
		t.Fatalf("DetectConfig failed: %v", err)
	}

	if config.Delimiter != ';' {
		t.Errorf("Expected delimiter ';', got '%c'", config.Delimiter)
	}
	if config.SkipLines != 2 {
		t.Errorf("Expected 2 skip lines, got %d", config.SkipLines)
	}
	if got := config.Headers[len(config.Headers)-1]; got != "Pago" {
		t.Errorf("Expected last header 'Pago' without carriage return, got %q", got)
	}
}

func TestDetectConfig_CommaCSV(t *testing.T) {
	config, err := DetectConfig([]byte(sampleCommaCSV))
	if err != nil {
		t.Fatalf("DetectConfig failed: %v", err)
	}

	if config.Delimiter != ',' {
		t.Errorf("Expected delimiter ',', got '%c'", config.Delimiter)
	}
	if len(config.Headers) != 4 {
		t.Errorf("Expected 4 headers, got %d", len(config.Headers))
	}
}

func TestDetectConfig_MostFrequentDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   rune
	}{
		{"semicolon with commas in names", "Data;Valor, bruto;Valor, líquido;Status", ';'},
		{"comma with one stray semicolon", "Data;Hora,Valor,Descrição,Status", ','},
		{"tab", "Data\tValor\tStatus", '\t'},
		{"pipe", "Data|Valor|Status|Pago", '|'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := DetectConfig([]byte(tt.header + "\n"))
			if err != nil {
				t.Fatalf("DetectConfig failed: %v", err)
			}
			if config.Delimiter != tt.want {
				t.Errorf("Expected delimiter %q, got %q", tt.want, config.Delimiter)
			}
		})
	}
}

func TestDetectConfig_EmptyFile(t *testing.T) {
	for _, input := range []string{"", "   \n\n"} {
		_, err := DetectConfig([]byte(input))
		if err != ErrEmptyFile {
			t.Errorf("DetectConfig(%q) expected ErrEmptyFile, got %v", input, err)
		}
	}
}

func TestDetectConfig_NoHeaders(t *testing.T) {
	_, err := DetectConfig([]byte("1;2;3\n4;5;6\n"))
	if err != ErrNoHeadersFound {
		t.Errorf("Expected ErrNoHeadersFound, got %v", err)
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint([]string{"Data da venda", "Valor da venda", "Status do recebível"})
	b := Fingerprint([]string{" data da venda ", "VALOR DA VENDA", "status do recebível"})
	c := Fingerprint([]string{"Data da venda", "Valor do recebível"})

	if a != b {
		t.Error("Expected fingerprint to ignore case and spacing")
	}
	if a == c {
		t.Error("Expected different headers to produce different fingerprints")
	}
	if len(a) != 64 {
		t.Errorf("Expected 64-char hex fingerprint, got %d", len(a))
	}
}

func TestDetectConfig_BlankMetadataLines(t *testing.T) {
	data := []byte("Relatório\n\nR/D;Valor;Pago\nReceita;10;Sim\n")

	config, err := DetectConfig(data)
	if err != nil {
		t.Fatalf("DetectConfig failed: %v", err)
	}

	if config.SkipLines != 2 {
		t.Errorf("Expected SkipLines 2, got %d", config.SkipLines)
	}
	if len(config.Headers) != 3 || config.Headers[0] != "R/D" {
		t.Errorf("Expected the R/D header row, got %v", config.Headers)
	}
}

func TestDropLines(t *testing.T) {
	tests := []struct {
		data string
		n    int
		want string
	}{
		{"a\nb\nc", 0, "a\nb\nc"},
		{"a\n\nc", 2, "c"},
		{"a\r\nb", 1, "b"},
		{"a", 1, ""},
	}

	for _, tt := range tests {
		if got := string(DropLines([]byte(tt.data), tt.n)); got != tt.want {
			t.Errorf("DropLines(%q, %d) = %q, want %q", tt.data, tt.n, got, tt.want)
		}
	}
}
