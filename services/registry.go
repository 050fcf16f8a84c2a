package services

import (
	"sync"
	"time"

	"github.com/IDD-NAJ/ulster-delt-sub000/models"
)

// CustomMetricRegistry is the in-process table of ad-hoc named metrics.
// Request handlers write to it at any time while the scheduler reads it
// on every tick, so every access goes through the mutex.
type CustomMetricRegistry struct {
	mu      sync.RWMutex
	entries map[string]models.CustomMetric
	order   []string
}

func NewCustomMetricRegistry() *CustomMetricRegistry {
	return &CustomMetricRegistry{
		entries: make(map[string]models.CustomMetric),
	}
}

// Add records or overwrites the metric under name, stamping the current time.
func (r *CustomMetricRegistry) Add(name string, value float64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = models.CustomMetric{
		Name:      name,
		Value:     value,
		Tags:      tags,
		Timestamp: time.Now(),
	}
}

// Get returns the last written entry for name.
func (r *CustomMetricRegistry) Get(name string) (models.CustomMetric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.entries[name]
	return m, ok
}

// GetAll returns all entries in insertion order.
func (r *CustomMetricRegistry) GetAll() []models.CustomMetric {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CustomMetric, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}
