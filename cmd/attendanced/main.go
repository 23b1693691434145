package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/service"
	sqlitestore "github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store/sqlite"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/config"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/db"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/httpapi"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/notify"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/reader"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "attendanced ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		logger.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn); err != nil {
			logger.Fatalf("seed dev data: %v", err)
		}
	}

	writer := db.NewWorker(conn)
	defer writer.Close()

	// Stores
	directory := sqlitestore.NewDirectoryStore(conn)
	attendanceStore := sqlitestore.NewAttendanceStore(conn, writer)
	scanLogs := sqlitestore.NewScanLogStore(conn, writer)

	// Check-in publishing (no-op unless a broker is configured)
	mqtt, err := notify.NewMQTT(notify.MQTTConfig{
		Host:  cfg.MQTTHost,
		Port:  cfg.MQTTPort,
		Topic: cfg.MQTTTopic,
	}, "attendanced", logger)
	if err != nil {
		logger.Fatalf("mqtt: %v", err)
	}
	defer mqtt.Close()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := service.NewMetrics(registry)

	// Card reader: probe for hardware, fall back to mock per config.
	rd, hardware, err := reader.New(reader.Config{
		Type:   cfg.ReaderType,
		Device: cfg.ReaderDevice,
		Baud:   cfg.ReaderBaud,
	}, logger)
	if err != nil {
		logger.Fatalf("reader: %v", err)
	}
	if !hardware {
		logger.Printf("running with mock card reader")
	}

	// Core pipeline
	processor := service.NewProcessor(directory, attendanceStore, scanLogs, mqtt, cfg.DebounceWindow, logger)
	controller := service.NewController(rd, processor, service.ControllerConfig{
		PollInterval: cfg.PollInterval,
		ReadTimeout:  cfg.ReadTimeout,
	}, metrics, logger)

	if err := controller.Start(ctx); err != nil {
		logger.Fatalf("start scan service: %v", err)
	}
	defer controller.Stop()

	pruner := service.NewScanLogPruner(scanLogs, service.PrunerConfig{
		RetentionDays: cfg.LogRetentionDays,
		IntervalHours: cfg.PruneIntervalHours,
	}, logger)
	pruner.Start(ctx)
	defer pruner.Stop()

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:         logger,
		Addr:           cfg.HTTPAddr,
		Controller:     controller,
		Processor:      processor,
		ScanLogs:       scanLogs,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	go func() {
		logger.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
