package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
)

// AttendanceStore is an in-memory attendance store for tests and dev.
// The single mutex makes the exists/insert uniqueness check atomic, matching
// the UNIQUE constraint the SQLite store relies on.
type AttendanceStore struct {
	mu      sync.Mutex
	records map[string]store.AttendanceRecord // keyed by student|class|day
}

func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{
		records: make(map[string]store.AttendanceRecord),
	}
}

func key(studentID, classID, day string) string {
	return studentID + "|" + classID + "|" + day
}

func (s *AttendanceStore) ExistsFor(_ context.Context, studentID, classID, day string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[key(studentID, classID, day)]
	return ok, nil
}

func (s *AttendanceStore) Insert(_ context.Context, rec store.AttendanceRecord) (store.AttendanceRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CheckInTime.IsZero() {
		rec.CheckInTime = time.Now().UTC()
	}
	if rec.CheckInDay == "" {
		rec.CheckInDay = store.DayKey(rec.CheckInTime)
	}
	if rec.Method == "" {
		rec.Method = store.MethodRFID
	}

	k := key(rec.StudentID, rec.ClassID, rec.CheckInDay)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[k]; ok {
		return store.AttendanceRecord{}, store.ErrDuplicateAttendance
	}
	s.records[k] = rec
	return rec, nil
}

// Records returns a copy of all stored records.  Test-only helper.
func (s *AttendanceStore) Records() []store.AttendanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.AttendanceRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out
}
