package memory

import (
	"context"
	"sync"
	"time"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
)

// ScanLogStore is an in-memory append-only scan log for tests and dev.
type ScanLogStore struct {
	mu      sync.Mutex
	entries []store.ScanLogRecord
}

func NewScanLogStore() *ScanLogStore {
	return &ScanLogStore{}
}

func (s *ScanLogStore) Append(_ context.Context, rec store.ScanLogRecord) error {
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, rec)
	return nil
}

func (s *ScanLogStore) ListRecent(_ context.Context, limit int) ([]store.ScanLogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	// Newest first.
	out := make([]store.ScanLogRecord, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *ScanLogStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var deleted int64
	for _, e := range s.entries {
		if e.ScannedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return deleted, nil
}

// Entries returns a copy of all recorded entries.  Test-only helper.
func (s *ScanLogStore) Entries() []store.ScanLogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.ScanLogRecord, len(s.entries))
	copy(out, s.entries)
	return out
}
