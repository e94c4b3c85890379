package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertBizMetricLine matches a business metric line by name, partial labels and value. The
// exporter adds scope labels, so labels are matched as a regex fragment.
func assertBizMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return w.Body.String()
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")

	require.NoError(t, err)
	assert.NotNil(t, bm)
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "token", "generate", "success")
	bm.RecordOperation(ctx, "token", "generate", "success")
	bm.RecordOperation(ctx, "token", "refresh", "error")
	bm.RecordOperation(ctx, "optout", "lookup", "success")

	output := scrape(t, provider)
	assertBizMetricLine(t, output, `test_app_operations_total`,
		`domain="token".*operation="generate".*status="success"`, `2`)
	assertBizMetricLine(t, output, `test_app_operations_total`,
		`domain="token".*operation="refresh".*status="error"`, `1`)
	assertBizMetricLine(t, output, `test_app_operations_total`,
		`domain="optout".*operation="lookup".*status="success"`, `1`)
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordDuration(ctx, "identity", "map", 50*time.Millisecond, "success")
	bm.RecordDuration(ctx, "identity", "map", 70*time.Millisecond, "success")
	bm.RecordDuration(ctx, "snapshot", "salts_reload", 300*time.Millisecond, "error")

	output := scrape(t, provider)
	assertBizMetricLine(t, output, `test_app_operation_duration_seconds_count`,
		`domain="identity".*operation="map".*status="success"`, `2`)
	assertBizMetricLine(t, output, `test_app_operation_duration_seconds_count`,
		`domain="snapshot".*operation="salts_reload".*status="error"`, `1`)
	assertBizMetricLine(t, output, `test_app_operation_duration_seconds_sum`,
		`domain="identity".*operation="map".*status="success"`, ``)
}

func TestNewNoOpBusinessMetrics(t *testing.T) {
	noOpMetrics := NewNoOpBusinessMetrics()

	assert.IsType(t, &NoOpBusinessMetrics{}, noOpMetrics)
	assert.NotPanics(t, func() {
		noOpMetrics.RecordOperation(context.Background(), "token", "validate", "success")
		noOpMetrics.RecordDuration(context.Background(), "token", "validate", time.Millisecond, "error")
	})
}

type recordingMetrics struct {
	operations []string
	durations  []time.Duration
}

func (r *recordingMetrics) RecordOperation(_ context.Context, domain, operation, status string) {
	r.operations = append(r.operations, domain+"/"+operation+"/"+status)
}

func (r *recordingMetrics) RecordDuration(_ context.Context, _, _ string, d time.Duration, _ string) {
	r.durations = append(r.durations, d)
}

func TestObserve(t *testing.T) {
	rec := &recordingMetrics{}
	start := time.Now().Add(-50 * time.Millisecond)

	Observe(context.Background(), rec, "token", "refresh", start, "optout")
	Observe(context.Background(), rec, "keys", "list", start, StatusOf(errors.New("boom")))
	Observe(context.Background(), rec, "keys", "list", start, StatusOf(nil))

	assert.Equal(t, []string{"token/refresh/optout", "keys/list/error", "keys/list/success"}, rec.operations)
	require.Len(t, rec.durations, 3)
	assert.GreaterOrEqual(t, rec.durations[0], 50*time.Millisecond)
}
