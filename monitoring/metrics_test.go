package monitoring

import (
	"strings"
	"sync"
	"testing"
)

func TestMetricsCollectorCounters(t *testing.T) {
	mc := NewMetricsCollector()
	mc.Describe("http_requests_total", "HTTP requests by status class")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mc.IncrCounter("http_requests_total", 1, map[string]string{"code": "2xx"})
		}()
	}
	wg.Wait()
	mc.IncrCounter("http_requests_total", 2, map[string]string{"code": "4xx"})

	if got := mc.Value("http_requests_total", map[string]string{"code": "2xx"}); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := mc.Value("http_requests_total", map[string]string{"code": "5xx"}); got != 0 {
		t.Fatalf("expected 0 for unseen series, got %v", got)
	}
}

func TestMetricsCollectorExportPrometheus(t *testing.T) {
	mc := NewMetricsCollector()
	mc.Describe("model_loaded", "Whether a model artifact is loaded")
	mc.SetGauge("model_loaded", 1, nil)
	mc.IncrCounter("predictions_total", 3, map[string]string{"result": "ok"})
	mc.GaugeFunc("prediction_cache_hits", func() float64 { return 7 })

	var b strings.Builder
	if err := mc.ExportPrometheus(&b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"# HELP model_loaded Whether a model artifact is loaded\n",
		"# TYPE model_loaded gauge\n",
		"model_loaded 1\n",
		`predictions_total{result="ok"} 3`,
		"prediction_cache_hits 7\n",
		"# TYPE process_uptime_seconds gauge\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in export:\n%s", want, out)
		}
	}
}
