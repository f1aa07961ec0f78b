package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// counterValue reads a counter from the default registry by name and label set.
func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestRecordLikeToggle(t *testing.T) {
	like := map[string]string{"action": "like"}
	unlike := map[string]string{"action": "unlike"}
	likeBefore := counterValue(t, "potluck_likes_toggled_total", like)
	unlikeBefore := counterValue(t, "potluck_likes_toggled_total", unlike)

	RecordLikeToggle(true)
	RecordLikeToggle(true)
	RecordLikeToggle(false)

	assert.Equal(t, likeBefore+2, counterValue(t, "potluck_likes_toggled_total", like))
	assert.Equal(t, unlikeBefore+1, counterValue(t, "potluck_likes_toggled_total", unlike))
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "potluck-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() { Tracer = prev })

	_, span := StartSpan(context.Background(), "PostService", "DeletePost")
	EndSpan(span, errors.New("boom"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "PostService.DeletePost", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}
