package app

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/analyzer"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/profile"
	"github.com/FACorreiaa/smart-reconciliation/pkg/config"
)

func setupDependenciesTest(t *testing.T) (*config.Config, *slog.Logger) {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return &cfg, slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitDependencies_Defaults(t *testing.T) {
	cfg, logger := setupDependenciesTest(t)

	deps, err := InitDependencies(cfg, logger)
	require.NoError(t, err)

	assert.Equal(t, analyzer.DefaultPairs(), deps.Analyzer.Pairs())
	assert.Equal(t, "1", deps.Analyzer.Tolerance().Minor.String())
	assert.Equal(t, "5", deps.Analyzer.Tolerance().Major.String())
	assert.Equal(t, cfg.DataDir, deps.Loader.BaseDir())
	assert.NotNil(t, deps.ReconcileService)
	assert.Len(t, deps.Profiles, 5)
}

func TestInitDependencies_ConfiguredPairs(t *testing.T) {
	cfg, logger := setupDependenciesTest(t)
	cfg.Pairs = []config.PairConfig{
		{Type: "invoicing", A: profile.InvoicingC6, B: profile.InvoicingGDS},
	}

	deps, err := InitDependencies(cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, []analyzer.Pair{
		{Type: profile.Invoicing, A: profile.InvoicingC6, B: profile.InvoicingGDS},
	}, deps.Analyzer.Pairs())
}

func TestInitDependencies_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{
			name: "unknown source",
			mutate: func(c *config.Config) {
				c.Pairs = []config.PairConfig{{Type: "invoicing", A: profile.InvoicingGDS, B: "faturamento_xyz"}}
			},
			wantErr: analyzer.ErrUnknownSource,
		},
		{
			name: "mixed analysis",
			mutate: func(c *config.Config) {
				c.Pairs = []config.PairConfig{{Type: "payment", A: profile.PaymentGDS, B: profile.InvoicingC6}}
			},
			wantErr: analyzer.ErrInvalidPair,
		},
		{
			name: "unknown analysis",
			mutate: func(c *config.Config) {
				c.Pairs = []config.PairConfig{{Type: "refunds", A: profile.PaymentGDS, B: profile.PaymentC6}}
			},
			wantErr: analyzer.ErrUnknownAnalysis,
		},
		{
			name: "inverted tolerance",
			mutate: func(c *config.Config) {
				c.Tolerance.Minor = 10
				c.Tolerance.Major = 2
			},
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, logger := setupDependenciesTest(t)
			tt.mutate(cfg)

			_, err := InitDependencies(cfg, logger)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, errors.Is(err, config.ErrInvalidConfig))
		})
	}
}

func TestCleanup_WritesMetrics(t *testing.T) {
	cfg, logger := setupDependenciesTest(t)
	cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "reconcile.prom")

	deps, err := InitDependencies(cfg, logger)
	require.NoError(t, err)
	deps.Cleanup()

	data, err := os.ReadFile(cfg.Metrics.TextfilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# HELP")
}
