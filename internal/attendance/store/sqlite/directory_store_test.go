package sqlite_test

import (
	"context"
	"testing"

	sqlitestore "github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store/sqlite"
)

func TestDirectoryStore_FindActiveStudentByUID(t *testing.T) {
	conn := openTestDB(t)
	seedStudent(t, conn, "stu_1", "Ada", "123456789", true)
	seedStudent(t, conn, "stu_2", "Ben", "987654321", false)
	seedStudent(t, conn, "stu_3", "Cam", "", true)
	ds := sqlitestore.NewDirectoryStore(conn)
	ctx := context.Background()

	st, err := ds.FindActiveStudentByUID(ctx, "123456789")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if st == nil {
		t.Fatal("expected a match")
	}
	if st.ID != "stu_1" || st.DisplayName != "Ada" || !st.Active {
		t.Errorf("unexpected student %+v", st)
	}

	// Inactive students never match.
	st, err = ds.FindActiveStudentByUID(ctx, "987654321")
	if err != nil {
		t.Fatalf("lookup inactive: %v", err)
	}
	if st != nil {
		t.Errorf("expected nil for inactive student, got %+v", st)
	}

	// Unknown card resolves to (nil, nil), not an error.
	st, err = ds.FindActiveStudentByUID(ctx, "000000")
	if err != nil {
		t.Fatalf("lookup unknown: %v", err)
	}
	if st != nil {
		t.Errorf("expected nil for unknown uid, got %+v", st)
	}

	// Blank uid never matches the card-less student.
	st, err = ds.FindActiveStudentByUID(ctx, "  ")
	if err != nil {
		t.Fatalf("lookup blank: %v", err)
	}
	if st != nil {
		t.Errorf("expected nil for blank uid, got %+v", st)
	}
}

func TestDirectoryStore_ActiveEnrollments_FiltersAndOrders(t *testing.T) {
	conn := openTestDB(t)
	seedStudent(t, conn, "stu_1", "Ada", "123456789", true)

	// Two Monday classes out of insertion order, plus an inactive class and
	// an inactive enrollment that must both be filtered out.
	seedClass(t, conn, "cls_late", "Jazz", 0, 1140, 1200, true)
	seedClass(t, conn, "cls_early", "Ballet", 0, 1080, 1140, true)
	seedClass(t, conn, "cls_retired", "Tap", 0, 1000, 1060, false)
	seedClass(t, conn, "cls_dropped", "Hip Hop", 0, 900, 960, true)
	seedEnrollment(t, conn, "stu_1", "cls_late", true)
	seedEnrollment(t, conn, "stu_1", "cls_early", true)
	seedEnrollment(t, conn, "stu_1", "cls_retired", true)
	seedEnrollment(t, conn, "stu_1", "cls_dropped", false)

	ds := sqlitestore.NewDirectoryStore(conn)
	sessions, err := ds.ActiveEnrollments(context.Background(), "stu_1")
	if err != nil {
		t.Fatalf("ActiveEnrollments: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d: %+v", len(sessions), sessions)
	}
	if sessions[0].ID != "cls_early" || sessions[1].ID != "cls_late" {
		t.Errorf("unexpected order: %s, %s", sessions[0].ID, sessions[1].ID)
	}
	if sessions[0].StartMinute != 1080 || sessions[0].EndMinute != 1140 {
		t.Errorf("unexpected schedule %+v", sessions[0])
	}
}

func TestDirectoryStore_ActiveEnrollments_Empty(t *testing.T) {
	conn := openTestDB(t)
	seedStudent(t, conn, "stu_1", "Ada", "123456789", true)
	ds := sqlitestore.NewDirectoryStore(conn)

	sessions, err := ds.ActiveEnrollments(context.Background(), "stu_1")
	if err != nil {
		t.Fatalf("ActiveEnrollments: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %+v", sessions)
	}
}
