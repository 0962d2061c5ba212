// Package sniffer provides automatic detection of CSV export formats.
// It identifies delimiters, header rows, and generates fingerprints so a loader can tell
// when an acquirer or clinic changed its export layout.
package sniffer

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
)

// Header keywords seen in acquirer and clinic exports
var headerKeywords = []string{
	// Acquirer invoicing (C6)
	"dt_venda", "val_fat", "val_parc", "bandeira",
	// Acquirer settlement (C6)
	"data da venda", "valor da venda", "valor do recebível", "status do recebível",
	// Clinic ledger (GDS)
	"r/d", "data de emissão", "data de emissao", "valor líquido", "valor liquido",
	// Generic
	"data", "valor", "descrição", "descricao", "status", "total",
}

// FileConfig holds the detected configuration for a CSV file
type FileConfig struct {
	Delimiter   rune     // The field delimiter (';', ',', '\t')
	SkipLines   int      // Number of metadata lines before headers
	Headers     []string // Detected header names
	Fingerprint string   // SHA256 hash of normalized headers
}

var (
	ErrEmptyFile      = errors.New("file is empty")
	ErrNoHeadersFound = errors.New("could not find data headers")
)

// DetectConfig analyzes a CSV file and returns its configuration
func DetectConfig(data []byte) (*FileConfig, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")

	delimiter, skipLines, err := findHeaderRow(lines)
	if err != nil {
		return nil, err
	}

	headerLine := strings.TrimRight(lines[skipLines], "\r")
	reader := csv.NewReader(strings.NewReader(headerLine))
	reader.Comma = delimiter
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		return nil, err
	}

	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &FileConfig{
		Delimiter:   delimiter,
		SkipLines:   skipLines,
		Headers:     headers,
		Fingerprint: Fingerprint(headers),
	}, nil
}

// maxHeaderSearch bounds how many leading lines may hold export metadata
const maxHeaderSearch = 20

var delimiters = []rune{';', '\t', ',', '|'}

// findHeaderRow returns the first line mentioning a known header keyword and the delimiter it
// uses most, provided that delimiter separates at least three columns
func findHeaderRow(lines []string) (rune, int, error) {
	for i, line := range lines {
		if i > maxHeaderSearch {
			break
		}
		if !containsKeyword(strings.ToLower(line)) {
			continue
		}

		var best rune
		bestCount := 1
		for _, d := range delimiters {
			if n := strings.Count(line, string(d)); n > bestCount {
				best, bestCount = d, n
			}
		}
		if best != 0 {
			return best, i, nil
		}
	}

	return 0, 0, ErrNoHeadersFound
}

func containsKeyword(line string) bool {
	for _, kw := range headerKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// Fingerprint creates a stable hash from header names
func Fingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	hash := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(hash[:])
}

// DropLines removes the first n raw lines, blank ones included.
// SkipLines counts raw lines, while csv.Reader silently skips blank ones.
func DropLines(data []byte, n int) []byte {
	for i := 0; i < n; i++ {
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return nil
		}
		data = data[idx+1:]
	}
	return data
}
