// Package diagnostics collects the recoverable problems found while normalizing and
// aggregating source data. Nothing recorded here is fatal; every entry is also logged
// at warning level.
package diagnostics

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Kind classifies a diagnostic entry
type Kind string

const (
	// KindParseFallback: a monetary or date value could not be parsed and a default was used
	KindParseFallback Kind = "parse_fallback"
	// KindMissingColumn: an expected column was absent
	KindMissingColumn Kind = "missing_column"
	// KindMissingSource: a source was absent from the input or has no profile
	KindMissingSource Kind = "missing_source"
)

// Entry is one recorded diagnostic
type Entry struct {
	Kind    Kind   `json:"kind"`
	Source  string `json:"source"`
	Column  string `json:"column,omitempty"`
	Row     int    `json:"row,omitempty"` // 1-indexed data row, 0 when not row specific
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// Collector accumulates entries for one reconciliation run. Safe for concurrent use.
// A nil *Collector discards everything.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	logger  *slog.Logger
}

// NewCollector creates a collector that also logs each entry
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Collector{logger: logger}
}

// Record stores an entry and logs it as a warning
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.entries = append(c.entries, e)
	c.mu.Unlock()

	c.logger.Warn(e.Message,
		"kind", string(e.Kind),
		"source", e.Source,
		"column", e.Column,
		"row", e.Row,
		"value", e.Value,
	)
}

// ParseFallback records a value that was replaced by a default
func (c *Collector) ParseFallback(source, column string, row int, raw any, err error) {
	c.Record(Entry{
		Kind:    KindParseFallback,
		Source:  source,
		Column:  column,
		Row:     row,
		Value:   fmt.Sprint(raw),
		Message: fmt.Sprintf("value replaced by default: %v", err),
	})
}

// MissingColumn records an absent column
func (c *Collector) MissingColumn(source, column, message string) {
	c.Record(Entry{Kind: KindMissingColumn, Source: source, Column: column, Message: message})
}

// MissingSource records an absent source
func (c *Collector) MissingSource(source, message string) {
	c.Record(Entry{Kind: KindMissingSource, Source: source, Message: message})
}

// Entries returns a copy of everything recorded so far
func (c *Collector) Entries() []Entry {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Count returns how many entries of kind were recorded
func (c *Collector) Count(kind Kind) int {
	n := 0
	for _, e := range c.Entries() {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
