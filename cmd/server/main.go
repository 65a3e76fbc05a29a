package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/erp/reportengine/internal/application/report"
	"github.com/erp/reportengine/internal/domain/inventory"
	"github.com/erp/reportengine/internal/infrastructure/config"
	"github.com/erp/reportengine/internal/infrastructure/logger"
	"github.com/erp/reportengine/internal/infrastructure/persistence"
	"github.com/erp/reportengine/internal/infrastructure/strategy"
	"github.com/erp/reportengine/internal/infrastructure/telemetry"
	"github.com/erp/reportengine/internal/interfaces/http/handler"
	"github.com/erp/reportengine/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			ERP Report Engine API
//	@version		1.0
//	@description	Inventory valuation, trial balance and financial statements over the ERP ledgers

//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Output = cfg.Log.Output
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ERP report engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
	}

	// Telemetry providers install themselves globally; disabled ones are no-ops
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, cfg.Telemetry.ServiceName, zap.WarnLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerURL,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	dbOpts := []persistence.Option{
		persistence.WithGormLogger(logger.NewGormLogger(
			log,
			logger.MapGormLogLevel(cfg.Log.GormLevel),
			cfg.Telemetry.DBSlowQueryThresh,
		)),
	}
	if cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = tracerProvider.IsEnabled()
		tracingCfg.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		tracingCfg.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		dbOpts = append(dbOpts, persistence.WithTracing(telemetry.NewDBTracingPlugin(tracingCfg, log)))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	sqlDB, err := db.SQLDB()
	if err != nil {
		log.Fatal("Failed to access connection pool", zap.Error(err))
	}
	poolMetrics, err := telemetry.RegisterDBPoolMetrics(nil, sqlDB)
	if err != nil {
		log.Fatal("Failed to register pool metrics", zap.Error(err))
	}

	// Report service
	registry, err := strategy.NewRegistryWithDefaultMethod(cfg.Report.ValuationMethod)
	if err != nil {
		log.Fatal("Invalid valuation method", zap.String("method", cfg.Report.ValuationMethod), zap.Error(err))
	}
	reportMetrics, err := telemetry.NewReportMetrics(nil)
	if err != nil {
		log.Fatal("Failed to create report metrics", zap.Error(err))
	}
	service := report.NewService(
		persistence.NewGormLedgerSource(db.DB),
		inventory.NewValuator(registry),
		report.Options{
			DefaultMethod:     cfg.Report.ValuationMethod,
			Tolerance:         cfg.Report.BalanceTolerance,
			IncludeSubsidiary: cfg.Report.IncludeSubsidiary,
			MemoEntries:       cfg.Report.MemoEntries,
		},
		log,
		report.WithMetrics(reportMetrics),
	)

	engine, err := router.NewEngine(cfg, router.Handlers{
		Reports: handler.NewReportHandler(service),
		System:  handler.NewSystemHandler(cfg.App.Name, db),
	}, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := poolMetrics.Stop(); err != nil {
		log.Error("Error stopping pool metrics", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}
