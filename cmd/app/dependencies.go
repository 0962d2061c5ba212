package app

import (
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/import/loader"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/analyzer"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/profile"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/service"
	"github.com/FACorreiaa/smart-reconciliation/pkg/config"
	"github.com/FACorreiaa/smart-reconciliation/pkg/observability"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Profiles profile.Registry

	// Components
	Analyzer *analyzer.Analyzer
	Loader   *loader.FileLoader

	// Services
	ReconcileService service.ReconcileService
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Profiles: profile.Default(),
	}

	if err := deps.initAnalyzer(); err != nil {
		return nil, fmt.Errorf("failed to init analyzer: %w", err)
	}

	deps.initLoader()
	deps.initServices()

	logger.Debug("all dependencies initialized successfully",
		"data_dir", cfg.DataDir,
		"pairs", len(deps.Analyzer.Pairs()),
	)

	return deps, nil
}

// PairsFromConfig converts configured pairs; an empty list selects the default pairing
func PairsFromConfig(pairs []config.PairConfig) []analyzer.Pair {
	if len(pairs) == 0 {
		return analyzer.DefaultPairs()
	}
	out := make([]analyzer.Pair, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, analyzer.Pair{
			Type: profile.AnalysisType(p.Type),
			A:    p.A,
			B:    p.B,
		})
	}
	return out
}

// initAnalyzer validates the pairing policy and tolerance against the registry
func (d *Dependencies) initAnalyzer() error {
	pairs := PairsFromConfig(d.Config.Pairs)
	if err := analyzer.ValidatePairs(pairs, d.Profiles); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	tol, err := analyzer.NewTolerance(d.Config.Tolerance.Minor, d.Config.Tolerance.Major)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	d.Analyzer = analyzer.NewAnalyzer(pairs, d.Profiles, tol)
	return nil
}

func (d *Dependencies) initLoader() {
	d.Loader = loader.NewFileLoader(d.Config.DataDir, d.Profiles, d.Logger)
}

func (d *Dependencies) initServices() {
	d.ReconcileService = service.NewService(
		d.Loader,
		d.Profiles,
		d.Analyzer,
		d.Config.Report.SampleSize,
		observability.NewTracer(nil),
		d.Logger,
	)
}

// Cleanup flushes the metrics textfile when one is configured
func (d *Dependencies) Cleanup() {
	if path := d.Config.Metrics.TextfilePath; path != "" {
		if err := observability.WriteTextfile(path); err != nil {
			d.Logger.Error("failed to write metrics", "path", path, "error", err)
		} else {
			d.Logger.Debug("metrics written", "path", path)
		}
	}
	d.Logger.Debug("cleanup completed")
}
