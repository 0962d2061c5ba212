package observability

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestInstrumentRun(t *testing.T) {
	okBefore := testutil.ToFloat64(RunsTotal.WithLabelValues("test_op", "ok"))
	errBefore := testutil.ToFloat64(RunsTotal.WithLabelValues("test_op", "error"))

	require.NoError(t, InstrumentRun("test_op", func() error { return nil }))
	boom := errors.New("boom")
	assert.ErrorIs(t, InstrumentRun("test_op", func() error { return boom }), boom)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(RunsTotal.WithLabelValues("test_op", "ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(RunsTotal.WithLabelValues("test_op", "error")))
	assert.Equal(t, float64(0), testutil.ToFloat64(ActiveRuns.WithLabelValues("test_op")))
}

func TestWriteTextfile(t *testing.T) {
	SourceRecords.WithLabelValues("faturamento_c6").Set(12)
	path := filepath.Join(t.TempDir(), "reconcile.prom")

	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `reconcile_source_records{source="faturamento_c6"} 12`)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger("warn", "text", &buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "source", "pagamento_gds")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "source=pagamento_gds")

	buf.Reset()
	logger, err = NewLogger("", "", &buf)
	require.NoError(t, err)
	logger.Info("json")
	assert.Contains(t, buf.String(), `"msg":"json"`)

	_, err = NewLogger("loud", "json", &buf)
	assert.Error(t, err)
	_, err = NewLogger("info", "xml", &buf)
	assert.Error(t, err)
}

type recordingSpan struct {
	noop.Span
	errs   []error
	status codes.Code
	ended  bool
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }
func (s *recordingSpan) SetStatus(code codes.Code, _ string)           { s.status = code }
func (s *recordingSpan) End(...trace.SpanEndOption)                    { s.ended = true }

func TestEnd(t *testing.T) {
	failed := &recordingSpan{}
	End(failed, errors.New("load failed"))
	assert.Len(t, failed.errs, 1)
	assert.Equal(t, codes.Error, failed.status)
	assert.True(t, failed.ended)

	ok := &recordingSpan{}
	End(ok, nil)
	assert.Empty(t, ok.errs)
	assert.Equal(t, codes.Ok, ok.status)
	assert.True(t, ok.ended)
}

func TestTracer_StartWithNoopProvider(t *testing.T) {
	tr := NewTracer(noop.NewTracerProvider().Tracer("test"))

	ctx, span := tr.Start(context.Background(), "normalize")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.Equal(t, span, trace.SpanFromContext(ctx))
}
