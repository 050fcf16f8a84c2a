package services

import (
	"context"
	"sync"
	"time"

	"github.com/IDD-NAJ/ulster-delt-sub000/metrics"
	"github.com/IDD-NAJ/ulster-delt-sub000/models"
	"github.com/IDD-NAJ/ulster-delt-sub000/utils"
)

// MonitoringService owns the periodic collect-store-evaluate-dispatch
// cycle and exposes the engine's read surface to the API layer. One
// instance runs per process; the cooldown gate's check-and-set relies
// on that.
type MonitoringService struct {
	collector  *SystemCollector
	history    *MetricsHistory
	registry   *CustomMetricRegistry
	perf       *PerformanceTracker
	evaluator  *ThresholdEvaluator
	gate       *CooldownGate
	dispatcher *AlertDispatcher
	exporter   *MetricsExporter
	archiver   *SnapshotArchiver // nil when archiving is disabled

	interval     time.Duration
	archiveEvery int
	tickCount    int

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type MonitoringServiceParams struct {
	Collector    *SystemCollector
	History      *MetricsHistory
	Registry     *CustomMetricRegistry
	Performance  *PerformanceTracker
	Evaluator    *ThresholdEvaluator
	Gate         *CooldownGate
	Dispatcher   *AlertDispatcher
	Exporter     *MetricsExporter
	Archiver     *SnapshotArchiver
	Interval     time.Duration
	ArchiveEvery int
}

func NewMonitoringService(p MonitoringServiceParams) *MonitoringService {
	return &MonitoringService{
		collector:    p.Collector,
		history:      p.History,
		registry:     p.Registry,
		perf:         p.Performance,
		evaluator:    p.Evaluator,
		gate:         p.Gate,
		dispatcher:   p.Dispatcher,
		exporter:     p.Exporter,
		archiver:     p.Archiver,
		interval:     p.Interval,
		archiveEvery: p.ArchiveEvery,
		stop:         make(chan struct{}),
	}
}

// Start launches the scheduler loop. Stop ends the loop but lets an
// in-flight cycle finish so already-decided alerts reach the history log.
func (m *MonitoringService) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		log := utils.Logger("monitor")
		log.WithField("interval", m.interval.String()).Info("monitoring scheduler started")

		for {
			select {
			case <-m.stop:
				log.Info("monitoring scheduler stopped")
				return
			case <-ctx.Done():
				log.Info("monitoring scheduler context cancelled")
				return
			case <-ticker.C:
				// Ticks never share the parent's cancellation: a cycle
				// that already started is allowed to complete.
				m.RunCycle(context.Background())
			}
		}
	}()
}

// Stop halts the scheduler and waits for any in-flight cycle.
func (m *MonitoringService) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.wg.Wait()
}

// RunCycle executes one tick: collect, store, evaluate, gate, dispatch.
// Errors inside a cycle are logged and swallowed; a bad tick must never
// terminate the scheduler.
func (m *MonitoringService) RunCycle(ctx context.Context) {
	log := utils.Logger("monitor")
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("monitoring cycle panicked")
		}
	}()

	started := time.Now()

	snapshot := m.collector.Collect(ctx)
	m.history.Write(ctx, snapshot)

	candidates := m.evaluator.Evaluate(snapshot)
	allowed := candidates[:0:0]
	for _, candidate := range candidates {
		if m.gate.Allow(ctx, candidate) {
			allowed = append(allowed, candidate)
		}
	}
	m.dispatcher.Dispatch(ctx, allowed)

	if m.archiver != nil && m.archiveEvery > 0 {
		m.tickCount++
		if m.tickCount%m.archiveEvery == 0 {
			m.archiver.Archive(ctx, snapshot)
		}
	}

	metrics.ObserveCycle(time.Since(started))
}

// GetSystemMetrics captures and returns a fresh snapshot.
func (m *MonitoringService) GetSystemMetrics(ctx context.Context) *models.MetricSnapshot {
	return m.collector.Collect(ctx)
}

// GetPerformanceMetrics returns the current request-derived metrics.
func (m *MonitoringService) GetPerformanceMetrics() models.PerformanceMetrics {
	return m.perf.Snapshot()
}

// ExportMetrics renders the latest stored snapshot (or a fresh capture
// when nothing is stored yet) in the requested format.
func (m *MonitoringService) ExportMetrics(ctx context.Context, format string) (interface{}, error) {
	snapshot, err := m.history.Latest(ctx)
	if err != nil || snapshot == nil {
		if err != nil {
			utils.Logger("monitor").WithError(err).Warn("falling back to live snapshot for export")
		}
		snapshot = m.collector.Collect(ctx)
	}
	return m.exporter.Export(format, snapshot)
}

// QueryMetrics returns stored snapshots in [start, end], ascending.
func (m *MonitoringService) QueryMetrics(ctx context.Context, start, end time.Time) ([]models.MetricSnapshot, error) {
	return m.history.Query(ctx, start, end)
}

// GetAlertHistory returns dispatched batches in [start, end], most
// recent first.
func (m *MonitoringService) GetAlertHistory(ctx context.Context, start, end time.Time) ([]models.AlertBatch, error) {
	return m.dispatcher.History(ctx, start, end)
}

// GetAlertStatistics aggregates the alert history.
func (m *MonitoringService) GetAlertStatistics(ctx context.Context) (*models.AlertStatistics, error) {
	return m.dispatcher.Statistics(ctx)
}

// AddCustomMetric records an ad-hoc metric visible to the next cycle.
func (m *MonitoringService) AddCustomMetric(name string, value float64, tags map[string]string) {
	m.registry.Add(name, value, tags)
}

func (m *MonitoringService) GetCustomMetric(name string) (models.CustomMetric, bool) {
	return m.registry.Get(name)
}

func (m *MonitoringService) GetAllCustomMetrics() []models.CustomMetric {
	return m.registry.GetAll()
}
