package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/notify"
)

// DefaultDebounceWindow drops repeat reads of a card held near the reader.
const DefaultDebounceWindow = 5 * time.Second

// ScanEvent is one raw card read handed to the processor.  ObservedAt is the
// event's logical clock: debounce, session resolution, and the check-in
// timestamp all derive from it, which keeps simulated scans identical to
// hardware scans.
type ScanEvent struct {
	UID        string
	Payload    string
	ObservedAt time.Time
}

// Outcome is the terminal state of one processed scan.
type Outcome string

const (
	OutcomeDuplicate        Outcome = "duplicate"
	OutcomeCheckin          Outcome = "checkin"
	OutcomeAlreadyCheckedIn Outcome = "already_checked_in"
	OutcomeUnknownCard      Outcome = "unknown_card"
	OutcomeNoClass          Outcome = "no_class"
	OutcomeError            Outcome = "error"
)

// Success reports whether the outcome counts as a successful check-in.
// A repeat check-in is success: the attendance state the scan asked for
// already holds.
func (o Outcome) Success() bool {
	return o == OutcomeCheckin || o == OutcomeAlreadyCheckedIn
}

// Processor turns scan events into attendance records: debounce, holder
// lookup, session resolution, idempotent write, audit append.  It holds its
// store handles for its whole lifetime and is safe for concurrent use; the
// debounce state is the only mutable field and sits behind the mutex.
type Processor struct {
	directory  store.Directory
	attendance store.AttendanceStore
	scanLog    store.ScanLogStore
	notifier   notify.Notifier
	logger     *log.Logger
	debounce   time.Duration

	mu      sync.Mutex
	lastUID string
	lastAt  time.Time
}

func NewProcessor(
	dir store.Directory,
	att store.AttendanceStore,
	logs store.ScanLogStore,
	notifier notify.Notifier,
	debounce time.Duration,
	logger *log.Logger,
) *Processor {
	if debounce <= 0 {
		debounce = DefaultDebounceWindow
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Processor{
		directory:  dir,
		attendance: att,
		scanLog:    logs,
		notifier:   notifier,
		debounce:   debounce,
		logger:     logger,
	}
}

// Process handles one scan to its terminal outcome.  Duplicates are dropped
// before any store access and leave no audit entry; every other path appends
// exactly one.  Errors never propagate: a failed scan is audited and
// abandoned, and the next tap is the retry.
func (p *Processor) Process(ctx context.Context, ev ScanEvent) Outcome {
	uid := strings.TrimSpace(ev.UID)
	if ev.ObservedAt.IsZero() {
		ev.ObservedAt = time.Now().UTC()
	}

	if p.isDuplicate(uid, ev.ObservedAt) {
		return OutcomeDuplicate
	}

	p.logger.Printf("processing scan uid=%s", uid)

	if uid == "" {
		p.audit(ctx, uid, "", store.ActionError, false, "empty card uid", ev.ObservedAt)
		return OutcomeError
	}

	student, err := p.directory.FindActiveStudentByUID(ctx, uid)
	if err != nil {
		p.logger.Printf("holder lookup failed for uid=%s: %v", uid, err)
		p.audit(ctx, uid, "", store.ActionError, false, err.Error(), ev.ObservedAt)
		return OutcomeError
	}
	if student == nil {
		p.logger.Printf("unknown card: %s", uid)
		p.audit(ctx, uid, "", store.ActionUnknownCard, false, "no active student for card", ev.ObservedAt)
		return OutcomeUnknownCard
	}

	sessions, err := p.directory.ActiveEnrollments(ctx, student.ID)
	if err != nil {
		p.logger.Printf("enrollment lookup failed for %s: %v", student.ID, err)
		p.audit(ctx, uid, student.ID, store.ActionError, false, err.Error(), ev.ObservedAt)
		return OutcomeError
	}

	session := ResolveSession(sessions, ev.ObservedAt)
	if session == nil {
		p.logger.Printf("no current class for %s", student.DisplayName)
		p.audit(ctx, uid, student.ID, store.ActionNoClass, false, "no current class", ev.ObservedAt)
		return OutcomeNoClass
	}

	day := store.DayKey(ev.ObservedAt)

	exists, err := p.attendance.ExistsFor(ctx, student.ID, session.ID, day)
	if err != nil {
		p.logger.Printf("attendance lookup failed for %s: %v", student.ID, err)
		p.audit(ctx, uid, student.ID, store.ActionError, false, err.Error(), ev.ObservedAt)
		return OutcomeError
	}
	if exists {
		p.logger.Printf("%s already checked in to %s today", student.DisplayName, session.Name)
		p.audit(ctx, uid, student.ID, store.ActionAlreadyCheckedIn, true, "already checked in today", ev.ObservedAt)
		return OutcomeAlreadyCheckedIn
	}

	rec, err := p.attendance.Insert(ctx, store.AttendanceRecord{
		StudentID:   student.ID,
		ClassID:     session.ID,
		CheckInTime: ev.ObservedAt,
		CheckInDay:  day,
		Method:      store.MethodRFID,
		Present:     true,
	})
	if errors.Is(err, store.ErrDuplicateAttendance) {
		// Lost a race with another check-in for the same triple; the
		// requested state holds either way.
		p.audit(ctx, uid, student.ID, store.ActionAlreadyCheckedIn, true, "already checked in today", ev.ObservedAt)
		return OutcomeAlreadyCheckedIn
	}
	if err != nil {
		p.logger.Printf("attendance insert failed for %s: %v", student.ID, err)
		p.audit(ctx, uid, student.ID, store.ActionError, false, err.Error(), ev.ObservedAt)
		return OutcomeError
	}

	p.logger.Printf("%s checked in to %s", student.DisplayName, session.Name)
	p.audit(ctx, uid, student.ID, store.ActionCheckin, true, "", ev.ObservedAt)
	p.notifier.CheckinRecorded(rec)
	return OutcomeCheckin
}

// ManualCheckIn records attendance entered by staff rather than a scan.  It
// shares the exists/insert path with Process, so a manual entry racing an
// RFID scan for the same (student, class, day) collapses to one record via
// the store's uniqueness guarantee.  Manual entries are not card scans and
// leave no scan log row.
func (p *Processor) ManualCheckIn(ctx context.Context, studentID, classID string, at time.Time) (Outcome, error) {
	if studentID == "" || classID == "" {
		return OutcomeError, errors.New("student and class are required")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	day := store.DayKey(at)

	exists, err := p.attendance.ExistsFor(ctx, studentID, classID, day)
	if err != nil {
		return OutcomeError, err
	}
	if exists {
		return OutcomeAlreadyCheckedIn, nil
	}

	rec, err := p.attendance.Insert(ctx, store.AttendanceRecord{
		StudentID:   studentID,
		ClassID:     classID,
		CheckInTime: at,
		CheckInDay:  day,
		Method:      store.MethodManual,
		Present:     true,
	})
	if errors.Is(err, store.ErrDuplicateAttendance) {
		return OutcomeAlreadyCheckedIn, nil
	}
	if err != nil {
		return OutcomeError, err
	}

	p.notifier.CheckinRecorded(rec)
	return OutcomeCheckin, nil
}

// isDuplicate applies the per-UID debounce window and, for accepted scans,
// advances the debounce state.  Duplicates do not advance it, so a card held
// in the field is re-processed once the window from the accepted scan lapses.
func (p *Processor) isDuplicate(uid string, at time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if uid != "" && uid == p.lastUID && !p.lastAt.IsZero() && at.Sub(p.lastAt) < p.debounce {
		return true
	}
	p.lastUID = uid
	p.lastAt = at
	return false
}

// audit appends the scan's terminal outcome.  Append failures are logged and
// swallowed; a broken audit log must not block attendance processing.
func (p *Processor) audit(ctx context.Context, uid, studentID string, action store.Action, success bool, errMsg string, at time.Time) {
	err := p.scanLog.Append(ctx, store.ScanLogRecord{
		UID:          uid,
		StudentID:    studentID,
		ScannedAt:    at,
		Action:       action,
		Success:      success,
		ErrorMessage: errMsg,
	})
	if err != nil {
		p.logger.Printf("scan log append failed (uid=%s action=%s): %v", uid, action, err)
	}
}
