package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
	dbpkg "github.com/thomasphillips3/attenddance-rfid-system/internal/db"
)

type AttendanceStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAttendanceStore(db *sql.DB, writer *dbpkg.Worker) *AttendanceStore {
	return &AttendanceStore{db: db, writer: writer}
}

func (s *AttendanceStore) ExistsFor(ctx context.Context, studentID, classID, day string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM attendance
WHERE student_id = ? AND class_id = ? AND check_in_day = ?;
`, studentID, classID, day).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ExistsFor: %w", err)
	}
	return true, nil
}

// Insert writes one attendance row.  The UNIQUE(student_id, class_id,
// check_in_day) constraint is the authority on idempotence: a violation is
// surfaced as store.ErrDuplicateAttendance so racing check-ins (RFID scan vs
// manual entry) collapse to a single record.
func (s *AttendanceStore) Insert(ctx context.Context, rec store.AttendanceRecord) (store.AttendanceRecord, error) {
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

	checkInMs := rec.CheckInTime.UTC().UnixMilli()

	var present int
	if rec.Present {
		present = 1
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO attendance(
  attendance_id, student_id, class_id, check_in_ms, check_in_day, method, present
) VALUES (?, ?, ?, ?, ?, ?, ?);
`,
			rec.ID, rec.StudentID, rec.ClassID, checkInMs, rec.CheckInDay, rec.Method, present,
		); err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateAttendance
			}
			return fmt.Errorf("Insert attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.AttendanceRecord{}, err
	}
	return rec, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure.  modernc.org/sqlite surfaces constraint errors through the
// driver's error string, so match on the stable SQLite message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
