// Package loader reads the monthly source exports from the data directory into raw tables.
//
// Files live under <base>/<month folder>/ and are named after the source profile and the
// MMYYYY period code. A missing or unreadable file yields an empty table so one absent export
// never blocks the comparison of the others.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/import/sniffer"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/profile"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/table"
)

const (
	legacyPrefix = "faturamento_WAB_"
	legacyExt    = ".txt"

	// formatLegacyTXT reads the "KEY: value" blocks convert-wab migrates to JSON
	formatLegacyTXT profile.FileFormat = "txt"
)

// legacyPath returns the text export standing in for a missing JSON export, or "" when
// there is none
func legacyPath(jsonPath string) string {
	name := filepath.Base(jsonPath)
	if !strings.HasPrefix(name, legacyPrefix) || filepath.Ext(name) != ".json" {
		return ""
	}
	txt := strings.TrimSuffix(jsonPath, ".json") + legacyExt
	if _, err := os.Stat(txt); err != nil {
		return ""
	}
	return txt
}

// FileLoader loads period exports from a base directory
type FileLoader struct {
	baseDir  string
	profiles profile.Registry
	logger   *slog.Logger
}

// NewFileLoader creates a loader rooted at baseDir
func NewFileLoader(baseDir string, profiles profile.Registry, logger *slog.Logger) *FileLoader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileLoader{
		baseDir:  baseDir,
		profiles: profiles,
		logger:   logger,
	}
}

// BaseDir returns the data directory
func (l *FileLoader) BaseDir() string {
	return l.baseDir
}

// PeriodDir returns the folder holding the exports of p
func (l *FileLoader) PeriodDir(p Period) string {
	return filepath.Join(l.baseDir, p.FolderName())
}

// ExpectedFiles maps each source ID to the file it is loaded from
func (l *FileLoader) ExpectedFiles(p Period) map[string]string {
	files := make(map[string]string, len(l.profiles))
	for id, prof := range l.profiles {
		files[id] = filepath.Join(l.PeriodDir(p), prof.FileName(p.Code))
	}
	return files
}

// LoadPeriod reads every registered source for p.
// Only cancellation is returned as an error; file problems are logged and produce empty tables.
func (l *FileLoader) LoadPeriod(ctx context.Context, p Period) (map[string]*table.Table, error) {
	files := l.ExpectedFiles(p)
	tables := make(map[string]*table.Table, len(files))

	for _, id := range l.profiles.IDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := files[id]
		t, err := ReadFile(path, l.profiles[id].FileFormat)
		if errors.Is(err, fs.ErrNotExist) && l.profiles[id].FileFormat == profile.FormatJSON {
			if legacy := legacyPath(path); legacy != "" {
				l.logger.Warn("reading legacy text export, run convert-wab to migrate it",
					"source", id, "path", legacy)
				path = legacy
				t, err = ReadFile(legacy, formatLegacyTXT)
			}
		}
		switch {
		case errors.Is(err, fs.ErrNotExist):
			l.logger.Warn("source file not found", "source", id, "path", path)
			t = table.New()
		case err != nil:
			l.logger.Error("failed to read source file", "source", id, "path", path, "error", err)
			t = table.New()
		default:
			l.logger.Info("source file loaded",
				"source", id,
				"file", filepath.Base(path),
				"records", t.Len(),
				"header_fingerprint", sniffer.Fingerprint(t.Columns)[:12],
			)
		}
		tables[id] = t
	}

	return tables, nil
}

// ReadFile reads path with the reader matching format
func ReadFile(path string, format profile.FileFormat) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case profile.FormatJSON:
		return ReadJSON(f)
	case profile.FormatCSV:
		return ReadCSV(f)
	case formatLegacyTXT:
		return ReadLegacyTXT(f)
	default:
		return nil, fmt.Errorf("unsupported file format %q", format)
	}
}

// ConvertTXTToJSON rewrites a legacy text export as a JSON array next to it.
// An empty jsonPath derives the name from txtPath. It returns the JSON path and record count.
func ConvertTXTToJSON(txtPath, jsonPath string) (string, int, error) {
	if jsonPath == "" {
		jsonPath = strings.TrimSuffix(txtPath, legacyExt) + ".json"
	}

	f, err := os.Open(txtPath)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	blocks, err := parseTXTBlocks(f)
	if err != nil {
		return "", 0, err
	}
	if blocks == nil {
		blocks = []map[string]string{}
	}

	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode %s: %w", txtPath, err)
	}
	if err := os.WriteFile(jsonPath, append(data, '\n'), 0o644); err != nil {
		return "", 0, fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}
	return jsonPath, len(blocks), nil
}

// ConvertAllTXT converts legacy clinic exports to JSON.
// With a period only that month's file is converted; otherwise the whole data directory is
// walked. Files that fail to convert are logged and skipped.
func (l *FileLoader) ConvertAllTXT(ctx context.Context, p *Period) ([]string, error) {
	var candidates []string

	if p != nil {
		path := filepath.Join(l.PeriodDir(*p), legacyPrefix+p.Code+legacyExt)
		if _, err := os.Stat(path); err == nil {
			candidates = append(candidates, path)
		}
	} else {
		err := filepath.WalkDir(l.baseDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			name := d.Name()
			if !d.IsDir() && strings.HasPrefix(name, legacyPrefix) && strings.HasSuffix(name, legacyExt) {
				candidates = append(candidates, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", l.baseDir, err)
		}
	}

	var converted []string
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return converted, err
		}
		jsonPath, n, err := ConvertTXTToJSON(path, "")
		if err != nil {
			l.logger.Error("failed to convert legacy export", "path", path, "error", err)
			continue
		}
		l.logger.Info("legacy export converted",
			"from", filepath.Base(path),
			"to", filepath.Base(jsonPath),
			"records", n,
		)
		converted = append(converted, jsonPath)
	}

	if len(converted) == 0 {
		l.logger.Warn("no legacy export found to convert", "dir", l.baseDir)
	}
	return converted, nil
}
