package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
	dbpkg "github.com/thomasphillips3/attenddance-rfid-system/internal/db"
)

type ScanLogStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewScanLogStore(db *sql.DB, writer *dbpkg.Worker) *ScanLogStore {
	return &ScanLogStore{db: db, writer: writer}
}

func (s *ScanLogStore) Append(ctx context.Context, rec store.ScanLogRecord) error {
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = time.Now().UTC()
	}
	scannedMs := rec.ScannedAt.UTC().UnixMilli()

	var studentID any
	if rec.StudentID != "" {
		studentID = rec.StudentID
	}

	var errMsg any
	if rec.ErrorMessage != "" {
		errMsg = rec.ErrorMessage
	}

	var success int
	if rec.Success {
		success = 1
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO scan_logs(
  rfid_uid, student_id, scanned_at_ms, action, success, error_message
) VALUES (?, ?, ?, ?, ?, ?);
`,
			rec.UID, studentID, scannedMs, string(rec.Action), success, errMsg,
		); err != nil {
			return fmt.Errorf("Append scan log: %w", err)
		}
		return nil
	})
}

func (s *ScanLogStore) ListRecent(ctx context.Context, limit int) ([]store.ScanLogRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT rfid_uid, student_id, scanned_at_ms, action, success, error_message
FROM scan_logs
ORDER BY scanned_at_ms DESC, log_id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent query: %w", err)
	}
	defer rows.Close()

	var out []store.ScanLogRecord
	for rows.Next() {
		var (
			rec       store.ScanLogRecord
			studentID sql.NullString
			scannedMs int64
			action    string
			success   int
			errMsg    sql.NullString
		)
		if err := rows.Scan(&rec.UID, &studentID, &scannedMs, &action, &success, &errMsg); err != nil {
			return nil, fmt.Errorf("ListRecent scan: %w", err)
		}
		rec.StudentID = studentID.String
		rec.ScannedAt = time.UnixMilli(scannedMs).UTC()
		rec.Action = store.Action(action)
		rec.Success = success != 0
		rec.ErrorMessage = errMsg.String
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRecent rows: %w", err)
	}
	return out, nil
}

// PruneOlderThan deletes scan log rows recorded before the cutoff.  Returns
// the number of rows deleted.
//
// Uses the idx_scan_logs_time index for an efficient range scan.
func (s *ScanLogStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM scan_logs
WHERE scanned_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}
