package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/IDD-NAJ/ulster-delt-sub000/config"
	"github.com/IDD-NAJ/ulster-delt-sub000/handlers"
	appmetrics "github.com/IDD-NAJ/ulster-delt-sub000/metrics"
	"github.com/IDD-NAJ/ulster-delt-sub000/services"
	"github.com/IDD-NAJ/ulster-delt-sub000/storage"
	"github.com/IDD-NAJ/ulster-delt-sub000/utils"
)

func initRedis(cfg config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis not available, falling back to in-memory store")
		return nil
	}

	logrus.Info("Redis connected successfully")
	return client
}

func initEmailSender(cfg config.EmailConfig) services.EmailSender {
	if !cfg.Enabled {
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		logrus.WithError(err).Warn("AWS config unavailable, email channel disabled")
		return nil
	}
	return services.NewSESEmailSender(sesv2.NewFromConfig(awsCfg), cfg.From, cfg.To)
}

func initArchiver(cfg config.ArchiveConfig) *services.SnapshotArchiver {
	if !cfg.Enabled {
		return nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logrus.WithError(err).Warn("MinIO unavailable, snapshot archiving disabled")
		return nil
	}
	return services.NewSnapshotArchiver(client, cfg.Bucket)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel)

	// Backend store: Redis in production, in-memory when unreachable.
	redisClient := initRedis(cfg.Redis)
	var store storage.Store
	if redisClient != nil {
		store = storage.NewRedisStore(redisClient)
	} else {
		store = storage.NewMemoryStore()
	}

	// Engine components.
	perf := services.NewPerformanceTracker()
	registry := services.NewCustomMetricRegistry()
	collector := services.NewSystemCollector(store, perf, registry)
	history := services.NewMetricsHistory(store, cfg.Monitor.RetentionPeriod, cfg.Monitor.MaxDataPoints)
	evaluator := services.NewThresholdEvaluator(cfg.Monitor.Thresholds)
	gate := services.NewCooldownGate(store, cfg.Monitor.Cooldowns)

	var chat services.ChatSender
	if cfg.Chat.Enabled {
		chat = services.NewHTTPChatSender(cfg.Chat.WebhookURL)
	}
	var webhook services.WebhookSender
	if cfg.Webhook.Enabled {
		webhook = services.NewHTTPWebhookSender(cfg.Webhook.URL)
	}
	dispatcher := services.NewAlertDispatcher(store, initEmailSender(cfg.Email), chat, webhook)

	monitor := services.NewMonitoringService(services.MonitoringServiceParams{
		Collector:    collector,
		History:      history,
		Registry:     registry,
		Performance:  perf,
		Evaluator:    evaluator,
		Gate:         gate,
		Dispatcher:   dispatcher,
		Exporter:     services.NewMetricsExporter(),
		Archiver:     initArchiver(cfg.Archive),
		Interval:     cfg.Monitor.UpdateInterval,
		ArchiveEvery: cfg.Archive.EveryTicks,
	})

	monitoringHandler := handlers.NewMonitoringHandler(monitor)

	r := mux.NewRouter()

	// Middleware
	r.Use(utils.RateLimitMiddleware)
	r.Use(appmetrics.MetricsMiddleware)

	// Monitoring routes
	monitoringRouter := r.PathPrefix("/api/monitoring").Subrouter()
	monitoringRouter.HandleFunc("/metrics", monitoringHandler.GetSystemMetrics).Methods("GET")
	monitoringRouter.HandleFunc("/metrics/history", monitoringHandler.QueryMetrics).Methods("GET")
	monitoringRouter.HandleFunc("/performance", monitoringHandler.GetPerformanceMetrics).Methods("GET")
	monitoringRouter.HandleFunc("/export", monitoringHandler.ExportMetrics).Methods("GET")
	monitoringRouter.HandleFunc("/alerts", monitoringHandler.GetAlertHistory).Methods("GET")
	monitoringRouter.HandleFunc("/alerts/stats", monitoringHandler.GetAlertStatistics).Methods("GET")
	monitoringRouter.HandleFunc("/custom", monitoringHandler.AddCustomMetric).Methods("POST")
	monitoringRouter.HandleFunc("/custom", monitoringHandler.GetAllCustomMetrics).Methods("GET")
	monitoringRouter.HandleFunc("/custom/{name}", monitoringHandler.GetCustomMetric).Methods("GET")

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		redisStatus := "disabled"
		if redisClient != nil {
			redisStatus = "healthy"
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx).Err(); err != nil {
				redisStatus = "unhealthy"
			}
		}

		response := map[string]interface{}{
			"status":      "OK",
			"timestamp":   time.Now(),
			"redis":       redisStatus,
			"environment": os.Getenv("ENVIRONMENT"),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Start the periodic monitoring cycle.
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	monitor.Start(schedulerCtx)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.HTTPAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logrus.Infof("Server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	logrus.Info("Shutting down server...")

	// Stop the scheduler; an in-flight cycle finishes its dispatch.
	stopScheduler()
	monitor.Stop()

	if redisClient != nil {
		redisClient.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server stopped")
}
