package notify

import "github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"

// Notifier receives newly recorded check-ins.  Implementations must be
// best-effort: the scan pipeline never waits on or fails because of a
// notification.
type Notifier interface {
	CheckinRecorded(rec store.AttendanceRecord)
}

// Noop discards all notifications.
type Noop struct{}

func (Noop) CheckinRecorded(store.AttendanceRecord) {}
