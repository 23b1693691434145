package store

import "context"

// Student is the card holder as the scan pipeline sees it.
type Student struct {
	ID          string
	DisplayName string
	RFIDUID     string // empty until a card is assigned
	Active      bool
}

// ClassSession is one recurring weekly class occurrence.
type ClassSession struct {
	ID          string
	Name        string
	DayOfWeek   int // 0=Monday .. 6=Sunday
	StartMinute int // minute of day, 0..1439
	EndMinute   int
	Active      bool
}

// Directory is the read-only lookup of card holders and their schedules.
type Directory interface {
	// FindActiveStudentByUID returns the active student assigned the given
	// card UID, or (nil, nil) when no such student exists.
	FindActiveStudentByUID(ctx context.Context, uid string) (*Student, error)

	// ActiveEnrollments returns the classes the student is actively enrolled
	// in, restricted to active classes, ordered by start minute then class ID
	// so session resolution is deterministic.
	ActiveEnrollments(ctx context.Context, studentID string) ([]ClassSession, error)
}
