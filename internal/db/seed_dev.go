package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a demo student, class, and enrollment so a fresh dev
// database can exercise the full scan pipeline immediately.  Safe to run
// repeatedly.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC().UnixMilli()

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO students(student_id, display_name, rfid_uid, active, created_at_ms, updated_at_ms)
VALUES ('stu_demo', 'Demo Student', '123456789', 1, ?, ?);`, now, now); err != nil {
		return fmt.Errorf("seed students: %w", err)
	}

	// Monday 18:00-19:00
	if _, err := db.ExecContext(ctx, `
INSERT INTO classes(class_id, name, day_of_week, start_minute, end_minute, active, created_at_ms, updated_at_ms)
VALUES ('cls_ballet_mon', 'Ballet Beginners', 0, 1080, 1140, 1, ?, ?)
ON CONFLICT(class_id) DO UPDATE SET
  active = 1,
  updated_at_ms = excluded.updated_at_ms;
`, now, now); err != nil {
		return fmt.Errorf("seed class cls_ballet_mon: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO enrollments(student_id, class_id, active, enrolled_at_ms)
VALUES ('stu_demo', 'cls_ballet_mon', 1, ?);`, now); err != nil {
		return fmt.Errorf("seed enrollment: %w", err)
	}

	return nil
}
