package services

import (
	"fmt"
	"strings"

	"github.com/IDD-NAJ/ulster-delt-sub000/models"
)

// UnsupportedFormatError is returned by Export for unknown formats. This
// is the one caller-facing error the engine surfaces instead of logging.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %q", e.Format)
}

// MetricsExporter renders a snapshot into one of the supported
// interchange formats.
type MetricsExporter struct{}

func NewMetricsExporter() *MetricsExporter {
	return &MetricsExporter{}
}

// Export renders the snapshot. The json format returns structured data;
// prometheus and graphite return their text formats as strings.
func (e *MetricsExporter) Export(format string, snapshot *models.MetricSnapshot) (interface{}, error) {
	switch format {
	case "json":
		return map[string]interface{}{
			"metrics":     snapshot,
			"performance": snapshot.Performance,
		}, nil
	case "prometheus":
		return e.prometheusText(snapshot), nil
	case "graphite":
		return e.graphiteText(snapshot), nil
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
}

type exportedMetric struct {
	promName     string
	graphitePath string
	help         string
	value        float64
}

func exportedMetrics(s *models.MetricSnapshot) []exportedMetric {
	return []exportedMetric{
		{"system_cpu_usage", "system.cpu.usage", "Current CPU usage percent", s.System.CPUUsage},
		{"system_memory_usage", "system.memory.usage", "Current memory usage percent", s.System.MemoryUsage},
		{"performance_response_time", "performance.response.time", "Average response time in milliseconds", s.Performance.ResponseTime},
		{"performance_error_rate", "performance.error.rate", "Request error rate percent", s.Performance.ErrorRate},
	}
}

func (e *MetricsExporter) prometheusText(s *models.MetricSnapshot) string {
	var b strings.Builder
	for _, m := range exportedMetrics(s) {
		fmt.Fprintf(&b, "# HELP %s %s\n", m.promName, m.help)
		fmt.Fprintf(&b, "# TYPE %s gauge\n", m.promName)
		fmt.Fprintf(&b, "%s %g\n", m.promName, m.value)
	}
	return b.String()
}

func (e *MetricsExporter) graphiteText(s *models.MetricSnapshot) string {
	ts := s.Timestamp.Unix()
	var b strings.Builder
	for _, m := range exportedMetrics(s) {
		fmt.Fprintf(&b, "%s %g %d\n", m.graphitePath, m.value, ts)
	}
	return b.String()
}
