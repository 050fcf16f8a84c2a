package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IDD-NAJ/ulster-delt-sub000/config"
	"github.com/IDD-NAJ/ulster-delt-sub000/models"
)

func defaultThresholds() config.Thresholds {
	return config.Thresholds{
		CPU:          80,
		Memory:       85,
		ErrorRate:    5,
		ResponseTime: 2000,
		ActiveUsers:  1000,
		FailedLogins: 10,
		APIErrors:    10,
		DiskSpace:    90,
	}
}

func TestEvaluateThresholds(t *testing.T) {
	evaluator := NewThresholdEvaluator(defaultThresholds())

	testCases := []struct {
		name             string
		snapshot         models.MetricSnapshot
		expectedTypes    []string
		expectedSeverity map[string]models.Severity
	}{
		{
			name:          "all quiet",
			snapshot:      models.MetricSnapshot{},
			expectedTypes: nil,
		},
		{
			name: "cpu breach is high",
			snapshot: models.MetricSnapshot{
				System: models.SystemMetrics{CPUUsage: 95},
			},
			expectedTypes:    []string{"cpu"},
			expectedSeverity: map[string]models.Severity{"cpu": models.SeverityHigh},
		},
		{
			name: "error rate breach is critical",
			snapshot: models.MetricSnapshot{
				Performance: models.PerformanceMetrics{ErrorRate: 12},
			},
			expectedTypes:    []string{"errorRate"},
			expectedSeverity: map[string]models.Severity{"errorRate": models.SeverityCritical},
		},
		{
			name: "value at threshold does not fire",
			snapshot: models.MetricSnapshot{
				System: models.SystemMetrics{CPUUsage: 80},
			},
			expectedTypes: nil,
		},
		{
			name: "multiple breaches",
			snapshot: models.MetricSnapshot{
				System:      models.SystemMetrics{CPUUsage: 95, MemoryUsage: 90, DiskUsage: 99},
				Security:    models.SecurityMetrics{FailedLogins: 50},
				Performance: models.PerformanceMetrics{APIErrorRate: 25},
			},
			expectedTypes: []string{"cpu", "memory", "failedLogins", "apiErrors", "diskSpace"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			candidates := evaluator.Evaluate(&tc.snapshot)

			var types []string
			for _, c := range candidates {
				types = append(types, c.Type)
			}
			assert.ElementsMatch(t, tc.expectedTypes, types)

			for _, c := range candidates {
				if want, ok := tc.expectedSeverity[c.Type]; ok {
					assert.Equal(t, want, c.Severity)
				}
				assert.NotEmpty(t, c.Message)
			}
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	evaluator := NewThresholdEvaluator(defaultThresholds())
	snapshot := &models.MetricSnapshot{
		System:      models.SystemMetrics{CPUUsage: 95, MemoryUsage: 90},
		Performance: models.PerformanceMetrics{ErrorRate: 7},
	}

	first := evaluator.Evaluate(snapshot)
	second := evaluator.Evaluate(snapshot)
	assert.Equal(t, first, second)
}

func TestEvaluateCustomMetricPiggyback(t *testing.T) {
	evaluator := NewThresholdEvaluator(defaultThresholds())

	snapshot := &models.MetricSnapshot{
		Custom: []models.CustomMetric{
			{
				Name:      "cpu",
				Value:     97,
				Tags:      map[string]string{"host": "worker-3"},
				Timestamp: time.Now(),
			},
			// No rule named like this; silently ignored.
			{Name: "queueDepth", Value: 1e9},
		},
	}

	candidates := evaluator.Evaluate(snapshot)
	require.Len(t, candidates, 1)
	assert.Equal(t, "cpu", candidates[0].Type)
	assert.Equal(t, models.SeverityHigh, candidates[0].Severity)
	assert.Equal(t, float64(97), candidates[0].Value)
	assert.Equal(t, "worker-3", candidates[0].Tags["host"])
}

func TestEvaluateCustomBelowThreshold(t *testing.T) {
	evaluator := NewThresholdEvaluator(defaultThresholds())

	snapshot := &models.MetricSnapshot{
		Custom: []models.CustomMetric{{Name: "memory", Value: 10}},
	}
	assert.Empty(t, evaluator.Evaluate(snapshot))
}
