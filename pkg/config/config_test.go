package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reconcile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "faturamentos", cfg.DataDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1.0, cfg.Tolerance.Minor)
	assert.Equal(t, 5.0, cfg.Tolerance.Major)
	assert.Equal(t, 5, cfg.Report.SampleSize)
	assert.Empty(t, cfg.Pairs)
	assert.Empty(t, cfg.File)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfig(t, `
data_dir: /srv/conciliacao
logging:
  level: debug
tolerance:
  minor: 0.5
  major: 3
pairs:
  - type: invoicing
    a: faturamento_gds
    b: faturamento_c6
`)
	t.Setenv("RECON_LOGGING_LEVEL", "warn")
	t.Setenv("RECON_REPORT_SAMPLE_SIZE", "10")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, "/srv/conciliacao", cfg.DataDir)
	assert.Equal(t, "warn", cfg.Logging.Level, "env overrides file")
	assert.Equal(t, "json", cfg.Logging.Format, "defaults survive a partial file")
	assert.Equal(t, 0.5, cfg.Tolerance.Minor)
	assert.Equal(t, 10, cfg.Report.SampleSize)
	require.Len(t, cfg.Pairs, 1)
	assert.Equal(t, PairConfig{Type: "invoicing", A: "faturamento_gds", B: "faturamento_c6"}, cfg.Pairs[0])
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit file must exist")

	_, err = Load(writeConfig(t, "tolerance: [1, 2"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "tolerance:\n  minor: 5\n  major: 1\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)

	_, err = Load(writeConfig(t, "pairs:\n  - type: payment\n    a: pagamento_gds\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)

	t.Setenv("RECON_REPORT_SAMPLE_SIZE", "many")
	_, err = Load(writeConfig(t, "data_dir: x\n"))
	assert.Error(t, err)
}

func TestValidate_ReportFormat(t *testing.T) {
	cfg := Default()
	cfg.Report.Format = "csv"

	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))
}
