package store

import (
	"context"
	"errors"
	"time"
)

// Check-in methods.
const (
	MethodRFID   = "rfid"
	MethodManual = "manual"
)

// ErrDuplicateAttendance is returned by Insert when a record for the same
// (student, class, day) already exists.  Callers treat it as
// already-checked-in, not as a failure.
var ErrDuplicateAttendance = errors.New("attendance record already exists for student/class/day")

// AttendanceRecord is one check-in.  CheckInDay is the UTC calendar date of
// CheckInTime in YYYY-MM-DD form and is the uniqueness key component.
type AttendanceRecord struct {
	ID          string
	StudentID   string
	ClassID     string
	CheckInTime time.Time
	CheckInDay  string
	Method      string
	Present     bool
}

// AttendanceStore persists check-ins.  The store, not the caller, is the
// authority on the one-record-per-(student, class, day) invariant: Insert
// must enforce it atomically so concurrent RFID and manual check-ins for the
// same triple collapse to a single row.
type AttendanceStore interface {
	ExistsFor(ctx context.Context, studentID, classID, day string) (bool, error)
	Insert(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error)
}

// DayKey returns the UTC calendar date used for attendance uniqueness.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
