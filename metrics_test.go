package astro

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPropagationMetrics(t *testing.T) {
	completed := testutil.ToFloat64(propagationsTotal.WithLabelValues("direct", "completed"))
	cancelled := testutil.ToFloat64(propagationsTotal.WithLabelValues("direct", "cancelled"))
	steps := testutil.ToFloat64(propagationStepsTotal.WithLabelValues("direct"))

	prop, err := NewPropagator(leoConfig(t, time.Minute, 10*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := prop.Propagate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if δ := testutil.ToFloat64(propagationsTotal.WithLabelValues("direct", "completed")) - completed; δ != 1 {
		t.Fatalf("completed runs increased by %f", δ)
	}
	if δ := testutil.ToFloat64(propagationStepsTotal.WithLabelValues("direct")) - steps; δ != 6 {
		t.Fatalf("steps increased by %f", δ)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prop.Propagate(ctx)
	if δ := testutil.ToFloat64(propagationsTotal.WithLabelValues("direct", "cancelled")) - cancelled; δ != 1 {
		t.Fatalf("cancelled runs increased by %f", δ)
	}
}

func TestMetricsHandler(t *testing.T) {
	recordPropagation(CentralBodyMode, "completed", 1, time.Millisecond)
	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{"astro_propagations_total", "astro_propagation_steps_total", "astro_propagation_duration_seconds"} {
		if !strings.Contains(body, name) {
			t.Fatalf("%s not exported", name)
		}
	}
}
