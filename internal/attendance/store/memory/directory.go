package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
)

// Directory is an in-memory holder/schedule lookup for tests and dev
// environments.
type Directory struct {
	mu          sync.RWMutex
	students    map[string]store.Student        // keyed by student ID
	enrollments map[string][]store.ClassSession // student ID -> enrolled classes
}

func NewDirectory() *Directory {
	return &Directory{
		students:    make(map[string]store.Student),
		enrollments: make(map[string][]store.ClassSession),
	}
}

// AddStudent registers a student.  Test helper.
func (d *Directory) AddStudent(s store.Student) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.students[s.ID] = s
}

// Enroll adds a class to a student's enrollments.  Test helper.
func (d *Directory) Enroll(studentID string, c store.ClassSession) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enrollments[studentID] = append(d.enrollments[studentID], c)
}

func (d *Directory) FindActiveStudentByUID(_ context.Context, uid string) (*store.Student, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, nil
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.students {
		if s.Active && s.RFIDUID != "" && s.RFIDUID == uid {
			out := s
			return &out, nil
		}
	}
	return nil, nil
}

func (d *Directory) ActiveEnrollments(_ context.Context, studentID string) ([]store.ClassSession, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []store.ClassSession
	for _, c := range d.enrollments[studentID] {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartMinute != out[j].StartMinute {
			return out[i].StartMinute < out[j].StartMinute
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
