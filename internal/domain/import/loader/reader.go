package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/import/sniffer"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/table"
)

// defaultDelimiter is used when the sniffer cannot find a header row
const defaultDelimiter = ';'

// ReadCSV reads a delimited export into a raw table of trimmed headers and string cells.
// The delimiter and metadata lines are detected; short rows leave their trailing columns unset.
func ReadCSV(r io.Reader) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	config, err := sniffer.DetectConfig(data)
	switch {
	case errors.Is(err, sniffer.ErrEmptyFile):
		return table.New(), nil
	case errors.Is(err, sniffer.ErrNoHeadersFound):
		config = &sniffer.FileConfig{Delimiter: defaultDelimiter}
	case err != nil:
		return nil, fmt.Errorf("failed to analyze csv: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(sniffer.DropLines(data, config.SkipLines)))
	reader.Comma = config.Delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return table.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	for i, h := range header {
		header[i] = HeaderName(h)
	}

	t := table.New(header...)
	for line := config.SkipLines + 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", line, err)
		}
		row := make(table.Record, len(header))
		for i, v := range record {
			if i >= len(header) {
				break
			}
			row[header[i]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// HeaderName trims a header and composes its accents (NFC), so "Descrição" matches whether the
// export wrote the accent as one rune or as a combining mark.
func HeaderName(h string) string {
	return norm.NFC.String(strings.TrimSpace(h))
}

// ReadJSON reads a clinic export: an array of flat objects.
// Numbers are kept as json.Number so amounts are never routed through float64.
func ReadJSON(r io.Reader) (*table.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		if err == io.EOF {
			return table.New(), nil
		}
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	t := table.New()
	for _, rec := range records {
		row := make(table.Record, len(rec))
		for k, v := range rec {
			row[HeaderName(k)] = v
		}
		t.Append(row)
	}
	return t, nil
}

// ReadLegacyTXT reads the clinic's older text export: blocks of "KEY: value" lines separated by
// blank lines. Lines without a colon are ignored.
func ReadLegacyTXT(r io.Reader) (*table.Table, error) {
	blocks, err := parseTXTBlocks(r)
	if err != nil {
		return nil, err
	}
	t := table.New()
	for _, b := range blocks {
		row := make(table.Record, len(b))
		for k, v := range b {
			row[k] = v
		}
		t.Append(row)
	}
	return t, nil
}

func parseTXTBlocks(r io.Reader) ([]map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read txt: %w", err)
	}

	var blocks []map[string]string
	block := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(block) > 0 {
				blocks = append(blocks, block)
				block = map[string]string{}
			}
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		block[HeaderName(key)] = strings.TrimSpace(value)
	}
	if len(block) > 0 {
		blocks = append(blocks, block)
	}
	return blocks, nil
}
