package services

import (
	"fmt"

	"github.com/IDD-NAJ/ulster-delt-sub000/config"
	"github.com/IDD-NAJ/ulster-delt-sub000/models"
)

// ThresholdRule ties one monitored metric to its alerting limit. A rule
// fires when the extracted value exceeds Threshold.
type ThresholdRule struct {
	Metric    string
	Severity  models.Severity
	Threshold float64
	// Extract pulls the rule's value out of a snapshot. ok=false means
	// the value is absent and the rule is skipped, not treated as zero.
	Extract func(s *models.MetricSnapshot) (value float64, ok bool)
	Message func(value float64) string
}

// ThresholdEvaluator applies the static rule table to a snapshot.
type ThresholdEvaluator struct {
	rules []ThresholdRule
}

// NewThresholdEvaluator builds the default rule table from the
// configured thresholds.
func NewThresholdEvaluator(t config.Thresholds) *ThresholdEvaluator {
	return &ThresholdEvaluator{rules: []ThresholdRule{
		{
			Metric:    "cpu",
			Severity:  models.SeverityHigh,
			Threshold: t.CPU,
			Extract:   func(s *models.MetricSnapshot) (float64, bool) { return s.System.CPUUsage, true },
			Message:   func(v float64) string { return fmt.Sprintf("High CPU usage: %.1f%%", v) },
		},
		{
			Metric:    "memory",
			Severity:  models.SeverityHigh,
			Threshold: t.Memory,
			Extract:   func(s *models.MetricSnapshot) (float64, bool) { return s.System.MemoryUsage, true },
			Message:   func(v float64) string { return fmt.Sprintf("High memory usage: %.1f%%", v) },
		},
		{
			Metric:    "errorRate",
			Severity:  models.SeverityCritical,
			Threshold: t.ErrorRate,
			Extract:   func(s *models.MetricSnapshot) (float64, bool) { return s.Performance.ErrorRate, true },
			Message:   func(v float64) string { return fmt.Sprintf("Critical error rate detected: %.2f%%", v) },
		},
		{
			Metric:    "responseTime",
			Severity:  models.SeverityMedium,
			Threshold: t.ResponseTime,
			Extract:   func(s *models.MetricSnapshot) (float64, bool) { return s.Performance.ResponseTime, true },
			Message:   func(v float64) string { return fmt.Sprintf("Slow response time: %.0fms", v) },
		},
		{
			Metric:    "activeUsers",
			Severity:  models.SeverityMedium,
			Threshold: t.ActiveUsers,
			Extract:   func(s *models.MetricSnapshot) (float64, bool) { return s.Performance.ActiveUsers, true },
			Message:   func(v float64) string { return fmt.Sprintf("Unusually high active users: %.0f", v) },
		},
		{
			Metric:    "failedLogins",
			Severity:  models.SeverityHigh,
			Threshold: t.FailedLogins,
			Extract:   func(s *models.MetricSnapshot) (float64, bool) { return s.Security.FailedLogins, true },
			Message:   func(v float64) string { return fmt.Sprintf("Elevated failed logins: %.0f", v) },
		},
		{
			Metric:    "apiErrors",
			Severity:  models.SeverityCritical,
			Threshold: t.APIErrors,
			Extract:   func(s *models.MetricSnapshot) (float64, bool) { return s.Performance.APIErrorRate, true },
			Message:   func(v float64) string { return fmt.Sprintf("Critical API error rate: %.2f%%", v) },
		},
		{
			Metric:    "diskSpace",
			Severity:  models.SeverityHigh,
			Threshold: t.DiskSpace,
			Extract:   func(s *models.MetricSnapshot) (float64, bool) { return s.System.DiskUsage, true },
			Message:   func(v float64) string { return fmt.Sprintf("Low disk space: %.1f%% used", v) },
		},
	}}
}

// Evaluate produces alert candidates for every rule the snapshot
// breaches, plus every custom metric whose name matches a rule. Pure
// function of snapshot and rules; values without a matching rule are
// silently ignored.
func (e *ThresholdEvaluator) Evaluate(snapshot *models.MetricSnapshot) []models.Alert {
	var candidates []models.Alert

	for _, rule := range e.rules {
		value, ok := rule.Extract(snapshot)
		if !ok {
			continue
		}
		if value > rule.Threshold {
			candidates = append(candidates, models.Alert{
				Type:     rule.Metric,
				Message:  rule.Message(value),
				Severity: rule.Severity,
				Value:    value,
			})
		}
	}

	// Custom metrics piggyback on the rule vocabulary by name.
	for _, custom := range snapshot.Custom {
		rule, ok := e.ruleFor(custom.Name)
		if !ok {
			continue
		}
		if custom.Value > rule.Threshold {
			candidates = append(candidates, models.Alert{
				Type:     rule.Metric,
				Message:  rule.Message(custom.Value),
				Severity: rule.Severity,
				Value:    custom.Value,
				Tags:     custom.Tags,
			})
		}
	}

	return candidates
}

func (e *ThresholdEvaluator) ruleFor(metric string) (ThresholdRule, bool) {
	for _, rule := range e.rules {
		if rule.Metric == metric {
			return rule, true
		}
	}
	return ThresholdRule{}, false
}
