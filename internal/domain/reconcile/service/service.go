// Package service orchestrates a reconciliation run: load, normalize, aggregate and compare.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/smart-reconciliation/internal/domain/common"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/import/loader"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/aggregator"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/analyzer"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/canonical"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/diagnostics"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/profile"
	"github.com/FACorreiaa/smart-reconciliation/internal/domain/reconcile/table"
	"github.com/FACorreiaa/smart-reconciliation/pkg/observability"
)

// Ensure implementation satisfies the interface
var _ ReconcileService = (*ServiceImpl)(nil)

// Loader provides the raw tables of a period, keyed by source ID
type Loader interface {
	LoadPeriod(ctx context.Context, p loader.Period) (map[string]*table.Table, error)
}

// ReconcileService defines the reconciliation operations
type ReconcileService interface {
	Reconcile(ctx context.Context, p loader.Period) (*Report, error)
	ReconcileTables(ctx context.Context, p loader.Period, raw map[string]*table.Table) (*Report, error)
	Summary(ctx context.Context, p loader.Period) ([]SourceSummary, error)
	Detail(ctx context.Context, p loader.Period, sourceID string) (*SourceDetail, error)
}

// Report is the outcome of one reconciliation run
type Report struct {
	RunID       uuid.UUID                         `json:"run_id"`
	Period      string                            `json:"period"`
	PeriodLabel string                            `json:"period_label"`
	GeneratedAt time.Time                         `json:"generated_at"`
	Totals      map[string]aggregator.SourceTotal `json:"totals"`
	Results     []analyzer.ComparisonResult       `json:"results"`
	Diagnostics []diagnostics.Entry               `json:"diagnostics"`
}

// ServiceImpl provides the implementation for ReconcileService.
type ServiceImpl struct {
	loader     Loader
	profiles   profile.Registry
	normalizer *canonical.Normalizer
	aggregator *aggregator.Aggregator
	analyzer   *analyzer.Analyzer
	tracer     *observability.Tracer
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a reconciliation service.
// A nil tracer uses the global OpenTelemetry provider.
func NewService(l Loader, profiles profile.Registry, an *analyzer.Analyzer, sampleSize int, tracer *observability.Tracer, logger *slog.Logger) *ServiceImpl {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if tracer == nil {
		tracer = observability.NewTracer(nil)
	}
	return &ServiceImpl{
		loader:     l,
		profiles:   profiles,
		normalizer: canonical.NewNormalizer(profiles, logger),
		aggregator: aggregator.NewAggregator(profiles, sampleSize, logger),
		analyzer:   an,
		tracer:     tracer,
		logger:     logger,
		now:        time.Now,
	}
}

// Reconcile loads the exports of p and reconciles them
func (s *ServiceImpl) Reconcile(ctx context.Context, p loader.Period) (*Report, error) {
	raw, err := s.load(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.ReconcileTables(ctx, p, raw)
}

// ReconcileTables reconciles raw tables already in memory.
// Sources are normalized and aggregated concurrently; the comparison starts once all are done.
func (s *ServiceImpl) ReconcileTables(ctx context.Context, p loader.Period, raw map[string]*table.Table) (*Report, error) {
	l := s.logger.With(slog.String("method", "ReconcileTables"), slog.String("period", p.Code))

	var report *Report
	err := observability.InstrumentRun("reconcile", func() error {
		ctx, span := s.tracer.Start(ctx, "reconcile", attribute.String("reconcile.period", p.Code))
		var err error
		report, err = s.reconcile(ctx, p, raw)
		observability.End(span, err)
		return err
	})
	if err != nil {
		l.ErrorContext(ctx, "Reconciliation failed", slog.Any("error", err))
		return nil, fmt.Errorf("error reconciling period %s: %w", p.Code, err)
	}

	l.InfoContext(ctx, "Reconciliation finished",
		slog.String("run_id", report.RunID.String()),
		slog.Int("comparisons", len(report.Results)),
		slog.Int("diagnostics", len(report.Diagnostics)),
	)
	return report, nil
}

func (s *ServiceImpl) reconcile(ctx context.Context, p loader.Period, raw map[string]*table.Table) (*Report, error) {
	diag := diagnostics.NewCollector(s.logger)
	ids := s.profiles.IDs()

	for _, id := range ids {
		if _, ok := raw[id]; !ok {
			diag.MissingSource(id, "source not loaded")
		}
	}

	totals := make([]aggregator.SourceTotal, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, span := s.tracer.Start(gctx, "reconcile.source", attribute.String("reconcile.source", id))
			canon := s.normalizer.Normalize(id, raw[id], diag)
			totals[i] = s.aggregator.Aggregate(id, canon, diag)
			observability.End(span, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]aggregator.SourceTotal, len(totals))
	for _, t := range totals {
		byID[t.Source] = t
	}

	_, span := s.tracer.Start(ctx, "reconcile.compare")
	results := s.analyzer.CompareAll(byID, diag)
	observability.End(span, nil)

	report := &Report{
		RunID:       uuid.New(),
		Period:      p.Code,
		PeriodLabel: p.String(),
		GeneratedAt: s.now(),
		Totals:      byID,
		Results:     results,
		Diagnostics: diag.Entries(),
	}
	s.record(report)
	return report, nil
}

// record publishes the run outcome as metrics
func (s *ServiceImpl) record(r *Report) {
	for id, t := range r.Totals {
		observability.SourceRecords.WithLabelValues(id).Set(float64(t.RecordCount))
	}
	for _, res := range r.Results {
		pair := res.SourceIDs[0] + ":" + res.SourceIDs[1]
		observability.DivergencePercent.WithLabelValues(string(res.AnalysisType), pair).
			Set(res.DifferencePercent.InexactFloat64())
	}
	for _, e := range r.Diagnostics {
		observability.DiagnosticsTotal.WithLabelValues(e.Source, string(e.Kind)).Inc()
	}
}

func (s *ServiceImpl) load(ctx context.Context, p loader.Period) (map[string]*table.Table, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.load", attribute.String("reconcile.period", p.Code))
	raw, err := s.loader.LoadPeriod(ctx, p)
	observability.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("error loading period %s: %w", p.Code, err)
	}

	for _, id := range s.profiles.IDs() {
		if raw[id].Empty() {
			s.logger.WarnContext(ctx, "No data loaded", slog.String("source", id))
		}
	}
	return raw, nil
}

func (s *ServiceImpl) profileFor(sourceID string) (profile.NormalizationProfile, error) {
	p, ok := s.profiles.Get(sourceID)
	if !ok {
		return profile.NormalizationProfile{}, fmt.Errorf("source %q: %w", sourceID, common.ErrNotFound)
	}
	return p, nil
}
