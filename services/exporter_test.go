package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IDD-NAJ/ulster-delt-sub000/models"
)

func exportSnapshot() *models.MetricSnapshot {
	return &models.MetricSnapshot{
		Timestamp: time.Unix(1700000000, 0),
		System: models.SystemMetrics{
			CPUUsage:    61.5,
			MemoryUsage: 72.25,
		},
		Performance: models.PerformanceMetrics{
			ResponseTime: 120,
			ErrorRate:    1.5,
		},
	}
}

func TestExportJSON(t *testing.T) {
	exporter := NewMetricsExporter()

	payload, err := exporter.Export("json", exportSnapshot())
	require.NoError(t, err)

	body, ok := payload.(map[string]interface{})
	require.True(t, ok, "json export returns structured data, not a string")

	snapshot, ok := body["metrics"].(*models.MetricSnapshot)
	require.True(t, ok)
	assert.Equal(t, 61.5, snapshot.System.CPUUsage)

	perf, ok := body["performance"].(models.PerformanceMetrics)
	require.True(t, ok)
	assert.Equal(t, float64(120), perf.ResponseTime)
}

func TestExportPrometheus(t *testing.T) {
	exporter := NewMetricsExporter()

	payload, err := exporter.Export("prometheus", exportSnapshot())
	require.NoError(t, err)

	text, ok := payload.(string)
	require.True(t, ok)

	assert.Contains(t, text, "system_cpu_usage")
	assert.Contains(t, text, "system_memory_usage")
	assert.Contains(t, text, "performance_response_time")
	assert.Contains(t, text, "performance_error_rate")
	assert.Contains(t, text, "# HELP system_cpu_usage")
	assert.Contains(t, text, "# TYPE system_cpu_usage gauge")
	assert.Contains(t, text, "system_cpu_usage 61.5")
}

func TestExportGraphite(t *testing.T) {
	exporter := NewMetricsExporter()

	payload, err := exporter.Export("graphite", exportSnapshot())
	require.NoError(t, err)

	text, ok := payload.(string)
	require.True(t, ok)

	assert.Contains(t, text, "system.cpu.usage 61.5 1700000000")
	assert.Contains(t, text, "system.memory.usage 72.25 1700000000")
	assert.Contains(t, text, "performance.response.time")
	assert.Contains(t, text, "performance.error.rate")
}

func TestExportUnsupportedFormat(t *testing.T) {
	exporter := NewMetricsExporter()

	_, err := exporter.Export("bogus", exportSnapshot())
	require.Error(t, err)

	var unsupported *UnsupportedFormatError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "bogus", unsupported.Format)
}
