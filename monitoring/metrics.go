package monitoring

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// MetricType is the Prometheus type of a series.
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
)

// Metric is one labelled series.
type Metric struct {
	Name   string
	Type   MetricType
	Help   string
	Labels map[string]string
	Value  float64
}

// MetricsCollector holds counters and gauges for Prometheus text export.
// Safe for concurrent use.
type MetricsCollector struct {
	mu      sync.RWMutex
	series  map[string]*Metric
	gauges  map[string]func() float64
	help    map[string]string
	started time.Time
}

func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		series:  make(map[string]*Metric),
		gauges:  make(map[string]func() float64),
		help:    make(map[string]string),
		started: time.Now(),
	}
}

// Describe sets the HELP text for a metric name.
func (mc *MetricsCollector) Describe(name, help string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.help[name] = help
}

// IncrCounter adds value to the counter identified by name and labels.
func (mc *MetricsCollector) IncrCounter(name string, value float64, labels map[string]string) {
	key := seriesKey(name, labels)

	mc.mu.Lock()
	defer mc.mu.Unlock()
	metric, ok := mc.series[key]
	if !ok {
		metric = &Metric{Name: name, Type: MetricTypeCounter, Labels: copyLabels(labels)}
		mc.series[key] = metric
	}
	metric.Value += value
}

// SetGauge sets a gauge to value.
func (mc *MetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	key := seriesKey(name, labels)

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.series[key] = &Metric{Name: name, Type: MetricTypeGauge, Labels: copyLabels(labels), Value: value}
}

// GaugeFunc registers a gauge sampled at export time.
func (mc *MetricsCollector) GaugeFunc(name string, fn func() float64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.gauges[name] = fn
}

// Value returns the current value of a series, or 0 if it was never set.
func (mc *MetricsCollector) Value(name string, labels map[string]string) float64 {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	if metric, ok := mc.series[seriesKey(name, labels)]; ok {
		return metric.Value
	}
	if fn, ok := mc.gauges[name]; ok && len(labels) == 0 {
		return fn()
	}
	return 0
}

// ExportPrometheus writes every series in the text exposition format, sorted
// by name.
func (mc *MetricsCollector) ExportPrometheus(w io.Writer) error {
	mc.mu.RLock()
	metrics := make([]Metric, 0, len(mc.series)+len(mc.gauges)+2)
	for _, m := range mc.series {
		metrics = append(metrics, *m)
	}
	for name, fn := range mc.gauges {
		metrics = append(metrics, Metric{Name: name, Type: MetricTypeGauge, Value: fn()})
	}
	help := make(map[string]string, len(mc.help))
	for k, v := range mc.help {
		help[k] = v
	}
	started := mc.started
	mc.mu.RUnlock()

	metrics = append(metrics,
		Metric{Name: "process_uptime_seconds", Type: MetricTypeGauge, Value: time.Since(started).Seconds()},
		Metric{Name: "go_goroutines", Type: MetricTypeGauge, Value: float64(runtime.NumGoroutine())},
	)
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].Name != metrics[j].Name {
			return metrics[i].Name < metrics[j].Name
		}
		return formatLabels(metrics[i].Labels) < formatLabels(metrics[j].Labels)
	})

	var b strings.Builder
	last := ""
	for _, m := range metrics {
		if m.Name != last {
			text := help[m.Name]
			if text == "" {
				text = fmt.Sprintf("Metric %s", m.Name)
			}
			fmt.Fprintf(&b, "# HELP %s %s\n", m.Name, text)
			fmt.Fprintf(&b, "# TYPE %s %s\n", m.Name, m.Type)
			last = m.Name
		}
		fmt.Fprintf(&b, "%s%s %g\n", m.Name, formatLabels(m.Labels), m.Value)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func seriesKey(name string, labels map[string]string) string {
	return name + formatLabels(labels)
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf(`%s="%s"`, k, strings.ReplaceAll(labels[k], `"`, `\"`))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func copyLabels(labels map[string]string) map[string]string {
	if len(labels) == 0 {
		return nil
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}
