package services

import (
	"sync"
	"time"

	"github.com/IDD-NAJ/ulster-delt-sub000/models"
)

type requestObservation struct {
	at       time.Time
	duration time.Duration
	isError  bool
	isAPI    bool
	user     string
}

// PerformanceTracker derives request-level performance metrics from a
// rolling one-minute window of observations fed by the HTTP middleware.
type PerformanceTracker struct {
	mu     sync.RWMutex
	window []requestObservation
	now    func() time.Time
}

func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{now: time.Now}
}

// Record adds one request observation. user identifies the caller for
// the active-user count; empty means anonymous.
func (t *PerformanceTracker) Record(duration time.Duration, isError, isAPI bool, user string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.window = append(t.window, requestObservation{
		at:       t.now(),
		duration: duration,
		isError:  isError,
		isAPI:    isAPI,
		user:     user,
	})
	t.trimLocked()
}

// trimLocked drops observations older than one minute.
func (t *PerformanceTracker) trimLocked() {
	cutoff := t.now().Add(-time.Minute)
	i := 0
	for ; i < len(t.window); i++ {
		if t.window[i].at.After(cutoff) {
			break
		}
	}
	if i > 0 {
		t.window = append(t.window[:0:0], t.window[i:]...)
	}
}

// Snapshot computes the current performance metrics over the window.
func (t *PerformanceTracker) Snapshot() models.PerformanceMetrics {
	t.mu.Lock()
	t.trimLocked()
	window := append([]requestObservation(nil), t.window...)
	t.mu.Unlock()

	if len(window) == 0 {
		return models.PerformanceMetrics{}
	}

	var totalMs float64
	var errs, apiTotal, apiErrs int
	users := make(map[string]struct{})
	for _, o := range window {
		totalMs += float64(o.duration.Milliseconds())
		if o.isError {
			errs++
		}
		if o.isAPI {
			apiTotal++
			if o.isError {
				apiErrs++
			}
		}
		if o.user != "" {
			users[o.user] = struct{}{}
		}
	}

	m := models.PerformanceMetrics{
		ResponseTime:      totalMs / float64(len(window)),
		ErrorRate:         float64(errs) / float64(len(window)) * 100,
		ActiveUsers:       float64(len(users)),
		RequestsPerMinute: float64(len(window)),
	}
	if apiTotal > 0 {
		m.APIErrorRate = float64(apiErrs) / float64(apiTotal) * 100
	}
	return m
}
