package models

import (
	"time"
)

// MetricSnapshot is one timestamped capture of all tracked metrics.
// Immutable once built; the history store owns it after a write.
type MetricSnapshot struct {
	Timestamp   time.Time          `json:"timestamp"`
	System      SystemMetrics      `json:"system"`
	Performance PerformanceMetrics `json:"performance"`
	Security    SecurityMetrics    `json:"security"`
	Custom      []CustomMetric     `json:"custom,omitempty"`
}

type SystemMetrics struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUUsage      float64 `json:"cpu_usage"`    // 0-100
	MemoryUsage   float64 `json:"memory_usage"` // 0-100
	DiskUsage     float64 `json:"disk_usage"`   // 0-100
}

type PerformanceMetrics struct {
	ResponseTime      float64 `json:"response_time_ms"`
	ErrorRate         float64 `json:"error_rate"` // percent of requests
	ActiveUsers       float64 `json:"active_users"`
	RequestsPerMinute float64 `json:"requests_per_minute"`
	APIErrorRate      float64 `json:"api_error_rate"`
}

type SecurityMetrics struct {
	FailedLogins float64 `json:"failed_logins"`
	BlockedIPs   float64 `json:"blocked_ips"`
}

// CustomMetric is a named ad-hoc value written outside the periodic cycle.
// Overwritten in place; lives for the lifetime of the process.
type CustomMetric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Tags      map[string]string `json:"tags,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
