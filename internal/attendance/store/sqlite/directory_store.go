package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
)

// DirectoryStore serves holder and schedule lookups.  Reads go straight to
// the connection; the directory never writes.
type DirectoryStore struct {
	db *sql.DB
}

func NewDirectoryStore(db *sql.DB) *DirectoryStore {
	return &DirectoryStore{db: db}
}

func (s *DirectoryStore) FindActiveStudentByUID(ctx context.Context, uid string) (*store.Student, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, nil
	}

	var st store.Student
	var active int
	err := s.db.QueryRowContext(ctx, `
SELECT student_id, display_name, rfid_uid, active
FROM students
WHERE rfid_uid = ? AND active = 1;
`, uid).Scan(&st.ID, &st.DisplayName, &st.RFIDUID, &active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindActiveStudentByUID: %w", err)
	}
	st.Active = active != 0
	return &st, nil
}

func (s *DirectoryStore) ActiveEnrollments(ctx context.Context, studentID string) ([]store.ClassSession, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT c.class_id, c.name, c.day_of_week, c.start_minute, c.end_minute, c.active
FROM enrollments e
JOIN classes c ON c.class_id = e.class_id
WHERE e.student_id = ? AND e.active = 1 AND c.active = 1
ORDER BY c.start_minute, c.class_id;
`, studentID)
	if err != nil {
		return nil, fmt.Errorf("ActiveEnrollments query: %w", err)
	}
	defer rows.Close()

	var out []store.ClassSession
	for rows.Next() {
		var c store.ClassSession
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &c.DayOfWeek, &c.StartMinute, &c.EndMinute, &active); err != nil {
			return nil, fmt.Errorf("ActiveEnrollments scan: %w", err)
		}
		c.Active = active != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ActiveEnrollments rows: %w", err)
	}
	return out, nil
}
