package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IDD-NAJ/ulster-delt-sub000/config"
	"github.com/IDD-NAJ/ulster-delt-sub000/services"
	"github.com/IDD-NAJ/ulster-delt-sub000/storage"
)

func testRouter(t *testing.T) *mux.Router {
	t.Helper()

	store := storage.NewMemoryStore()
	perf := services.NewPerformanceTracker()
	registry := services.NewCustomMetricRegistry()

	thresholds := config.Thresholds{
		CPU: 1e9, Memory: 1e9, ErrorRate: 1e9, ResponseTime: 1e9,
		ActiveUsers: 1e9, FailedLogins: 1e9, APIErrors: 1e9, DiskSpace: 1e9,
	}
	cooldowns := config.Cooldowns{
		Critical: 5 * time.Minute, High: 15 * time.Minute,
		Medium: 30 * time.Minute, Low: time.Hour,
	}

	monitor := services.NewMonitoringService(services.MonitoringServiceParams{
		Collector:   services.NewSystemCollector(store, perf, registry),
		History:     services.NewMetricsHistory(store, time.Hour, 100),
		Registry:    registry,
		Performance: perf,
		Evaluator:   services.NewThresholdEvaluator(thresholds),
		Gate:        services.NewCooldownGate(store, cooldowns),
		Dispatcher:  services.NewAlertDispatcher(store, nil, nil, nil),
		Exporter:    services.NewMetricsExporter(),
		Interval:    time.Minute,
	})

	h := NewMonitoringHandler(monitor)
	r := mux.NewRouter()
	r.HandleFunc("/api/monitoring/metrics", h.GetSystemMetrics).Methods("GET")
	r.HandleFunc("/api/monitoring/performance", h.GetPerformanceMetrics).Methods("GET")
	r.HandleFunc("/api/monitoring/export", h.ExportMetrics).Methods("GET")
	r.HandleFunc("/api/monitoring/alerts", h.GetAlertHistory).Methods("GET")
	r.HandleFunc("/api/monitoring/alerts/stats", h.GetAlertStatistics).Methods("GET")
	r.HandleFunc("/api/monitoring/custom", h.AddCustomMetric).Methods("POST")
	r.HandleFunc("/api/monitoring/custom", h.GetAllCustomMetrics).Methods("GET")
	r.HandleFunc("/api/monitoring/custom/{name}", h.GetCustomMetric).Methods("GET")
	return r
}

func TestExportEndpoint(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest("GET", "/api/monitoring/export?format=prometheus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "system_cpu_usage")
}

func TestExportEndpointUnsupportedFormat(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest("GET", "/api/monitoring/export?format=bogus", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomMetricRoundTrip(t *testing.T) {
	router := testRouter(t)

	body, _ := json.Marshal(map[string]interface{}{
		"name":  "queueDepth",
		"value": 17,
		"tags":  map[string]string{"queue": "payments"},
	})
	req := httptest.NewRequest("POST", "/api/monitoring/custom", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest("GET", "/api/monitoring/custom/queueDepth", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var metric struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metric))
	assert.Equal(t, "queueDepth", metric.Name)
	assert.Equal(t, float64(17), metric.Value)
}

func TestCustomMetricValidation(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest("POST", "/api/monitoring/custom", bytes.NewReader([]byte(`{"value": 1}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest("GET", "/api/monitoring/custom/missing", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertStatsEndpoint(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest("GET", "/api/monitoring/alerts/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Zero(t, stats.Total)
}

func TestAlertHistoryBadRange(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest("GET", "/api/monitoring/alerts?start=notanumber", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
