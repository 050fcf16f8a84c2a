package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/IDD-NAJ/ulster-delt-sub000/metrics"
	"github.com/IDD-NAJ/ulster-delt-sub000/models"
	"github.com/IDD-NAJ/ulster-delt-sub000/storage"
	"github.com/IDD-NAJ/ulster-delt-sub000/utils"
)

const snapshotKeyPrefix = "monitoring:snapshot:"

// MetricsHistory persists snapshots in the backend under time-ordered
// keys with a retention TTL and a hard cap on the number of live points.
type MetricsHistory struct {
	store     storage.Store
	retention time.Duration
	maxPoints int
}

func NewMetricsHistory(store storage.Store, retention time.Duration, maxPoints int) *MetricsHistory {
	return &MetricsHistory{
		store:     store,
		retention: retention,
		maxPoints: maxPoints,
	}
}

// snapshotKey encodes the capture time so lexicographic key order equals
// chronological order.
func snapshotKey(ts time.Time) string {
	return fmt.Sprintf("%s%019d", snapshotKeyPrefix, ts.UnixNano())
}

func snapshotKeyTime(key string) (time.Time, bool) {
	raw := strings.TrimPrefix(key, snapshotKeyPrefix)
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

// Write persists the snapshot and then trims the oldest points down to
// the cap. A backend failure is logged and swallowed: a missed sample
// must not take the scheduler down.
func (h *MetricsHistory) Write(ctx context.Context, snapshot *models.MetricSnapshot) {
	log := utils.Logger("history")

	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.WithError(err).Error("failed to encode snapshot")
		return
	}

	if err := h.store.SetWithExpiry(ctx, snapshotKey(snapshot.Timestamp), payload, h.retention); err != nil {
		log.WithError(err).Error("failed to persist snapshot")
		return
	}
	metrics.IncrementSnapshotsStored()

	if err := h.trim(ctx); err != nil {
		log.WithError(err).Warn("failed to trim snapshot history")
	}
}

// trim deletes the oldest snapshot keys until at most maxPoints remain.
// Runs after the new point is admitted, so the cap is a hard ceiling.
func (h *MetricsHistory) trim(ctx context.Context) error {
	keys, err := h.store.Keys(ctx, snapshotKeyPrefix)
	if err != nil {
		return err
	}
	if len(keys) <= h.maxPoints {
		return nil
	}

	sort.Strings(keys)
	return h.store.DeleteMany(ctx, keys[:len(keys)-h.maxPoints]...)
}

// Query returns all snapshots with timestamps in [start, end], ascending.
// Expired or missing points are silently absent; a backend failure is an
// error, since an empty result would be indistinguishable from no data.
func (h *MetricsHistory) Query(ctx context.Context, start, end time.Time) ([]models.MetricSnapshot, error) {
	keys, err := h.store.Keys(ctx, snapshotKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot keys: %w", err)
	}

	var out []models.MetricSnapshot
	for _, key := range keys {
		ts, ok := snapshotKeyTime(key)
		if !ok || ts.Before(start) || ts.After(end) {
			continue
		}

		raw, err := h.store.Get(ctx, key)
		if err != nil {
			if err == storage.ErrNotFound {
				continue // expired between listing and read
			}
			return nil, fmt.Errorf("reading snapshot %s: %w", key, err)
		}

		var snapshot models.MetricSnapshot
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			utils.Logger("history").WithError(err).WithField("key", key).Warn("skipping corrupt snapshot")
			continue
		}
		out = append(out, snapshot)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// Latest returns the most recent stored snapshot, or nil if none exist.
func (h *MetricsHistory) Latest(ctx context.Context) (*models.MetricSnapshot, error) {
	keys, err := h.store.Keys(ctx, snapshotKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	sort.Strings(keys)
	for i := len(keys) - 1; i >= 0; i-- {
		raw, err := h.store.Get(ctx, keys[i])
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			return nil, fmt.Errorf("reading snapshot %s: %w", keys[i], err)
		}
		var snapshot models.MetricSnapshot
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			continue
		}
		return &snapshot, nil
	}
	return nil, nil
}
