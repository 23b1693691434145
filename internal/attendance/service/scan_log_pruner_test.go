package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/service"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store/memory"
)

func TestScanLogPruner_PrunesOnStartup(t *testing.T) {
	logs := memory.NewScanLogStore()
	ctx := context.Background()

	old := store.ScanLogRecord{UID: "111", Action: store.ActionCheckin, Success: true,
		ScannedAt: time.Now().UTC().Add(-60 * 24 * time.Hour)}
	fresh := store.ScanLogRecord{UID: "222", Action: store.ActionCheckin, Success: true,
		ScannedAt: time.Now().UTC()}
	if err := logs.Append(ctx, old); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := logs.Append(ctx, fresh); err != nil {
		t.Fatalf("append: %v", err)
	}

	p := service.NewScanLogPruner(logs, service.PrunerConfig{RetentionDays: 30, IntervalHours: 6}, silentLogger())
	p.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(logs.Entries()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()

	entries := logs.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after prune, got %d", len(entries))
	}
	if entries[0].UID != "222" {
		t.Errorf("expected the fresh entry to survive, got uid %q", entries[0].UID)
	}
}

func TestScanLogPruner_DisabledAtZeroRetention(t *testing.T) {
	logs := memory.NewScanLogStore()
	ctx := context.Background()

	old := store.ScanLogRecord{UID: "111", Action: store.ActionCheckin, Success: true,
		ScannedAt: time.Now().UTC().Add(-365 * 24 * time.Hour)}
	if err := logs.Append(ctx, old); err != nil {
		t.Fatalf("append: %v", err)
	}

	p := service.NewScanLogPruner(logs, service.PrunerConfig{RetentionDays: 0}, silentLogger())
	p.Start(ctx)
	p.Stop() // returns immediately: the loop never started

	if n := len(logs.Entries()); n != 1 {
		t.Errorf("expected entries untouched, got %d", n)
	}
}

func TestScanLogPruner_StopWaitsForLoop(t *testing.T) {
	logs := memory.NewScanLogStore()

	p := service.NewScanLogPruner(logs, service.PrunerConfig{RetentionDays: 30, IntervalHours: 1}, silentLogger())
	p.Start(context.Background())

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
