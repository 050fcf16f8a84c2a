package services

import (
	"context"
	"strconv"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/IDD-NAJ/ulster-delt-sub000/models"
	"github.com/IDD-NAJ/ulster-delt-sub000/storage"
	"github.com/IDD-NAJ/ulster-delt-sub000/utils"
)

const (
	failedLoginsKey = "security:failed_logins"
	blockedIPsKey   = "security:blocked_ips"
)

// SystemCollector assembles a MetricSnapshot from the host (via gopsutil),
// the performance tracker, the security counters kept in the backend and
// the custom metric registry.
type SystemCollector struct {
	store     storage.Store
	perf      *PerformanceTracker
	registry  *CustomMetricRegistry
	startedAt time.Time
	diskPath  string
}

func NewSystemCollector(store storage.Store, perf *PerformanceTracker, registry *CustomMetricRegistry) *SystemCollector {
	return &SystemCollector{
		store:     store,
		perf:      perf,
		registry:  registry,
		startedAt: time.Now(),
		diskPath:  "/",
	}
}

// Collect captures the current snapshot. Individual probe failures leave
// the corresponding field at zero rather than failing the whole capture.
func (c *SystemCollector) Collect(ctx context.Context) *models.MetricSnapshot {
	snapshot := &models.MetricSnapshot{
		Timestamp: time.Now(),
		System: models.SystemMetrics{
			UptimeSeconds: time.Since(c.startedAt).Seconds(),
		},
		Performance: c.perf.Snapshot(),
		Custom:      c.registry.GetAll(),
	}

	log := utils.Logger("collector")

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		snapshot.System.CPUUsage = percents[0]
	} else if err != nil {
		log.WithError(err).Debug("cpu probe failed")
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		snapshot.System.MemoryUsage = vm.UsedPercent
	} else {
		log.WithError(err).Debug("memory probe failed")
	}

	if du, err := disk.UsageWithContext(ctx, c.diskPath); err == nil {
		snapshot.System.DiskUsage = du.UsedPercent
	} else {
		log.WithError(err).Debug("disk probe failed")
	}

	snapshot.Security = models.SecurityMetrics{
		FailedLogins: c.readCounter(ctx, failedLoginsKey),
		BlockedIPs:   c.readCounter(ctx, blockedIPsKey),
	}

	return snapshot
}

// readCounter reads an Increment-maintained backend counter; absent or
// unreadable counters count as zero.
func (c *SystemCollector) readCounter(ctx context.Context, key string) float64 {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return 0
	}
	n, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0
	}
	return n
}
