package store

import (
	"context"
	"time"
)

// Action is the terminal outcome recorded for a processed scan.
type Action string

const (
	ActionCheckin          Action = "checkin"
	ActionAlreadyCheckedIn Action = "already_checked_in"
	ActionUnknownCard      Action = "unknown_card"
	ActionNoClass          Action = "no_class"
	ActionError            Action = "error"
)

// ScanLogRecord captures a single processed scan for the audit log.
// StudentID is empty when the card did not resolve to a student.
type ScanLogRecord struct {
	UID          string
	StudentID    string
	ScannedAt    time.Time
	Action       Action
	Success      bool
	ErrorMessage string
}

// ScanLogStore persists scan outcomes as an append-only audit log.
type ScanLogStore interface {
	Append(ctx context.Context, rec ScanLogRecord) error
	ListRecent(ctx context.Context, limit int) ([]ScanLogRecord, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
