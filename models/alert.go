package models

import "time"

// Severity of an alert. Ordered from most to least urgent.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists all known severities in display order.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Alert is a single triggered threshold breach. Produced fresh on every
// evaluation cycle; only persisted once it clears the cooldown gate.
type Alert struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Severity Severity          `json:"severity"`
	Value    float64           `json:"value"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// AlertBatch is one dispatch cycle's worth of alerts, appended to the
// append-only history log. Read-only after creation.
type AlertBatch struct {
	Timestamp time.Time `json:"timestamp"`
	Alerts    []Alert   `json:"alerts"`
}

// AlertStatistics aggregates the alert history for dashboards.
type AlertStatistics struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
	ByType     map[string]int   `json:"by_type"`
	Recent     []AlertBatch     `json:"recent"`
}
