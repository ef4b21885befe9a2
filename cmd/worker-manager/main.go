// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"rti-saarthi/internal/common/aws"
	"rti-saarthi/internal/common/config"
	"rti-saarthi/internal/common/database"
	"rti-saarthi/internal/common/logger"
	"rti-saarthi/internal/common/observability"
	"rti-saarthi/internal/directory"
	"rti-saarthi/internal/genai"
	"rti-saarthi/internal/routing"
	"rti-saarthi/internal/store"

	// Pipeline workers
	aq "rti-saarthi/internal/workers/intake/analyze-query"
	rd "rti-saarthi/internal/workers/routing/route-department"

	da "rti-saarthi/internal/workers/drafting/draft-application"
	fa "rti-saarthi/internal/workers/filing/file-application"

	ca "rti-saarthi/internal/workers/escalation/check-appeal"
	ps "rti-saarthi/internal/workers/escalation/predict-success"

	sr "rti-saarthi/internal/workers/notify/send-reminder"
	ia "rti-saarthi/internal/workers/search/index-application"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Load PIO directory and department configuration ---
	dir, err := directory.Load(cfg.Directory.PIODirectoryPath)
	if err != nil {
		zapLog.Fatal("pio directory load failed", zap.Error(err))
	}
	depts, err := directory.LoadDepartments(cfg.Directory.DepartmentsPath)
	if err != nil {
		zapLog.Fatal("departments config load failed", zap.Error(err))
	}
	stateAliases, err := directory.LoadStateAliases(cfg.Directory.StateAliasesPath)
	if err != nil {
		zapLog.Fatal("state aliases load failed", zap.Error(err))
	}
	// The statutory fee is a policy knob, not directory data.
	depts.FilingFee.General = cfg.RTI.GeneralFee
	zapLog.Info("PIO directory loaded",
		zap.Int("centralOffices", len(dir.Central)),
		zap.Int("regions", len(dir.Regions())),
		zap.Int("stateAliases", len(stateAliases)),
	)

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	if err := esClient.EnsureIndex(ctx, cfg.Database.Elasticsearch.Index); err != nil {
		zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully",
		zap.String("index", cfg.Database.Elasticsearch.Index))

	// --- Init Gemini ---
	generator, err := genai.New(ctx, cfg.Gemini, log)
	if err != nil {
		zapLog.Fatal("gemini client failed", zap.Error(err))
	}
	defer generator.Close()
	zapLog.Info("Gemini client initialized", zap.String("model", cfg.Gemini.Model))

	// --- Init notification channels ---
	var sesClient *aws.SESClient
	var snsClient *aws.SNSClient
	if cfg.Notifications.EmailEnabled {
		sesClient, err = aws.NewSESClient(ctx, cfg.Notifications.AWSRegion, cfg.Notifications.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
	}
	if cfg.Notifications.SMSEnabled {
		snsClient, err = aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
	}

	// --- Shared domain services ---
	aliases := routing.NewAliasResolver(stateAliases, dir.Regions(), cfg.RTI.DefaultRegion)
	resolver := routing.NewResolver(dir, depts, aliases, log)
	appStore := store.NewApplicationStore(pg.DB, log)
	refSeq := store.NewRefSequence(redisClient.Client, cfg.RTI.RefNumberPrefix)

	// --- Register pipeline workers ---
	if cfg.Workers[aq.TaskType].Enabled {
		handler := aq.NewHandler(
			&aq.Config{
				Timeout: time.Duration(cfg.Workers[aq.TaskType].Timeout) * time.Millisecond,
			},
			generator, log,
		)
		startWorker(zeebeClient, obs, aq.TaskType, cfg.Workers[aq.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[rd.TaskType].Enabled {
		handler := rd.NewHandler(
			&rd.Config{
				Timeout: time.Duration(cfg.Workers[rd.TaskType].Timeout) * time.Millisecond,
			},
			resolver, log,
		)
		startWorker(zeebeClient, obs, rd.TaskType, cfg.Workers[rd.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[da.TaskType].Enabled {
		handler := da.NewHandler(
			&da.Config{
				Timeout:      time.Duration(cfg.Workers[da.TaskType].Timeout) * time.Millisecond,
				DeadlineDays: cfg.RTI.ResponseDeadlineDays,
			},
			generator, log,
		)
		startWorker(zeebeClient, obs, da.TaskType, cfg.Workers[da.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[fa.TaskType].Enabled {
		handler := fa.NewHandler(
			&fa.Config{
				Timeout:      time.Duration(cfg.Workers[fa.TaskType].Timeout) * time.Millisecond,
				DeadlineDays: cfg.RTI.ResponseDeadlineDays,
			},
			appStore, refSeq, log,
		)
		startWorker(zeebeClient, obs, fa.TaskType, cfg.Workers[fa.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ca.TaskType].Enabled {
		handler := ca.NewHandler(
			&ca.Config{
				Timeout:          time.Duration(cfg.Workers[ca.TaskType].Timeout) * time.Millisecond,
				DeadlineDays:     cfg.RTI.ResponseDeadlineDays,
				ReminderLeadDays: cfg.RTI.ReminderLeadDays,
			},
			appStore, generator, log,
		)
		startWorker(zeebeClient, obs, ca.TaskType, cfg.Workers[ca.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ps.TaskType].Enabled {
		handler := ps.NewHandler(
			&ps.Config{
				Timeout: time.Duration(cfg.Workers[ps.TaskType].Timeout) * time.Millisecond,
			},
			generator, log,
		)
		startWorker(zeebeClient, obs, ps.TaskType, cfg.Workers[ps.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sr.TaskType].Enabled {
		srCfg := &sr.Config{
			Timeout:      time.Duration(cfg.Workers[sr.TaskType].Timeout) * time.Millisecond,
			EmailEnabled: cfg.Notifications.EmailEnabled,
			SMSEnabled:   cfg.Notifications.SMSEnabled,
		}
		var email sr.EmailSender
		var sms sr.SMSSender
		if sesClient != nil {
			email = sesClient
		}
		if snsClient != nil {
			sms = snsClient
		}
		handler := sr.NewHandler(srCfg, email, sms, log)
		startWorker(zeebeClient, obs, sr.TaskType, cfg.Workers[sr.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ia.TaskType].Enabled {
		handler := ia.NewHandler(
			&ia.Config{
				Timeout:   time.Duration(cfg.Workers[ia.TaskType].Timeout) * time.Millisecond,
				IndexName: cfg.Database.Elasticsearch.Index,
			},
			esClient.Client, log,
		)
		startWorker(zeebeClient, obs, ia.TaskType, cfg.Workers[ia.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All pipeline workers registered")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := pg.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, obs *observability.Observability, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		handlerFunc(jobClient, job)
		obs.RecordStage(context.Background(), taskType)
		obs.RecordStageDuration(context.Background(), taskType, time.Since(start))
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
