package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/IDD-NAJ/ulster-delt-sub000/services"
)

type MonitoringHandler struct {
	monitor *services.MonitoringService
}

func NewMonitoringHandler(monitor *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{monitor: monitor}
}

func (h *MonitoringHandler) GetSystemMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := h.monitor.GetSystemMetrics(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

func (h *MonitoringHandler) GetPerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.monitor.GetPerformanceMetrics())
}

func (h *MonitoringHandler) ExportMetrics(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	payload, err := h.monitor.ExportMetrics(r.Context(), format)
	if err != nil {
		var unsupported *services.UnsupportedFormatError
		if errors.As(err, &unsupported) {
			http.Error(w, unsupported.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch body := payload.(type) {
	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(body))
	default:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}
}

// timeRange parses optional start/end query params (unix seconds).
// Defaults to the last 24 hours.
func timeRange(r *http.Request) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.Add(-24 * time.Hour)

	if raw := r.URL.Query().Get("start"); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return start, end, errors.New("invalid start")
		}
		start = time.Unix(secs, 0)
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return start, end, errors.New("invalid end")
		}
		end = time.Unix(secs, 0)
	}
	return start, end, nil
}

func (h *MonitoringHandler) QueryMetrics(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snapshots, err := h.monitor.QueryMetrics(r.Context(), start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":     len(snapshots),
		"snapshots": snapshots,
	})
}

func (h *MonitoringHandler) GetAlertHistory(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	batches, err := h.monitor.GetAlertHistory(r.Context(), start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":   len(batches),
		"batches": batches,
	})
}

func (h *MonitoringHandler) GetAlertStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.monitor.GetAlertStatistics(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (h *MonitoringHandler) AddCustomMetric(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name  string            `json:"name"`
		Value float64           `json:"value"`
		Tags  map[string]string `json:"tags"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.Name == "" {
		http.Error(w, "Metric name is required", http.StatusBadRequest)
		return
	}

	h.monitor.AddCustomMetric(request.Name, request.Value, request.Tags)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "recorded"})
}

func (h *MonitoringHandler) GetCustomMetric(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	metric, exists := h.monitor.GetCustomMetric(vars["name"])
	if !exists {
		http.Error(w, "Metric not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metric)
}

func (h *MonitoringHandler) GetAllCustomMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.monitor.GetAllCustomMetrics())
}
