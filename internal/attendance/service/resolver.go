package service

import (
	"sort"
	"time"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
)

// Check-in window buffers, in minutes.  A student may check in from 30
// minutes before a class starts until 15 minutes after it ends.
const (
	preCheckinBufferMin  = 30
	postCheckinBufferMin = 15

	minutesPerDay = 24 * 60
)

// mondayWeekday maps t's weekday onto the schedule convention 0=Monday ..
// 6=Sunday.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// inWindow reports whether minute lies in the [start, end] window on the
// minute-of-day circle.  A window whose end precedes its start wraps across
// midnight and matches on both sides of it.
func inWindow(minute, start, end int) bool {
	if start <= end {
		return start <= minute && minute <= end
	}
	return minute >= start || minute <= end
}

// ResolveSession returns the session the holder is attending at the given
// time, or nil.
//
// Candidates are the active sessions scheduled on at's weekday, ordered by
// start minute then ID so resolution is deterministic regardless of input
// order.  The first candidate whose buffered window contains the current
// minute wins; buffered windows are computed on the minute-of-day circle, so
// a session near midnight admits check-ins on both sides of it.  When no
// window matches but sessions exist today, the first such session is the
// loose fallback: a holder with exactly one class today can still check in
// well outside the buffer.
func ResolveSession(sessions []store.ClassSession, at time.Time) *store.ClassSession {
	weekday := mondayWeekday(at)
	minute := minuteOfDay(at)

	var today []store.ClassSession
	for _, s := range sessions {
		if s.Active && s.DayOfWeek == weekday {
			today = append(today, s)
		}
	}
	if len(today) == 0 {
		return nil
	}

	sort.Slice(today, func(i, j int) bool {
		if today[i].StartMinute != today[j].StartMinute {
			return today[i].StartMinute < today[j].StartMinute
		}
		return today[i].ID < today[j].ID
	})

	for i := range today {
		start := (today[i].StartMinute - preCheckinBufferMin + minutesPerDay) % minutesPerDay
		end := (today[i].EndMinute + postCheckinBufferMin) % minutesPerDay
		if inWindow(minute, start, end) {
			return &today[i]
		}
	}

	return &today[0]
}
