package httpapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/service"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store/memory"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/types"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/httpapi"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/reader"
)

// newTestServer wires the full dependency graph on in-memory stores and
// returns an httptest.Server whose URL can be hit with a plain http.Client.
// The fixture enrolls one student (card 123456789) in a class that covers
// every weekday around the clock, so a simulated scan at any wall-clock time
// resolves.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	dir := memory.NewDirectory()
	dir.AddStudent(store.Student{
		ID: "stu_1", DisplayName: "Ada", RFIDUID: "123456789", Active: true,
	})
	for day := 0; day < 7; day++ {
		dir.Enroll("stu_1", store.ClassSession{
			ID: "cls_all_" + string(rune('a'+day)), Name: "Open Studio",
			DayOfWeek: day, StartMinute: 0, EndMinute: 1439, Active: true,
		})
	}

	logger := log.New(io.Discard, "", 0)
	scanLogs := memory.NewScanLogStore()
	proc := service.NewProcessor(dir, memory.NewAttendanceStore(), scanLogs, nil, service.DefaultDebounceWindow, logger)
	ctrl := service.NewController(reader.NewMock(), proc, service.ControllerConfig{}, nil, logger)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:     logger,
		Addr:       ":0",
		Controller: ctrl,
		Processor:  proc,
		ScanLogs:   scanLogs,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

// ── Status ──────────────────────────────────────────────────────────────────

func TestStatus_InitialState(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/rfid/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var st types.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.ServiceRunning {
		t.Error("expected service_running=false before Start")
	}
	if st.TotalScans != 0 || st.SuccessfulCheckins != 0 || st.FailedScans != 0 {
		t.Errorf("expected zeroed counters, got %+v", st)
	}
	if st.LastScanTime != "" {
		t.Errorf("expected empty last_scan_time, got %q", st.LastScanTime)
	}
}

// ── Simulate ────────────────────────────────────────────────────────────────

func TestSimulate_KnownCard_Checkin(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/rfid/simulate", `{"uid":"123456789"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var sim types.SimulateResponse
	if err := json.NewDecoder(resp.Body).Decode(&sim); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !sim.OK {
		t.Error("expected ok=true")
	}
	if sim.Outcome != "checkin" {
		t.Errorf("expected outcome=checkin, got %q", sim.Outcome)
	}
	if sim.UID != "123456789" {
		t.Errorf("expected uid echoed back, got %q", sim.UID)
	}

	// The scan shows up in the status counters.
	stResp, err := http.Get(ts.URL + "/v1/rfid/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer stResp.Body.Close()
	var st types.StatusResponse
	if err := json.NewDecoder(stResp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.TotalScans != 1 || st.SuccessfulCheckins != 1 {
		t.Errorf("unexpected counters: %+v", st)
	}
	if st.LastScanUID != "123456789" {
		t.Errorf("expected last_scan_uid=123456789, got %q", st.LastScanUID)
	}
}

func TestSimulate_UnknownCard(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/rfid/simulate", `{"uid":"000000"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var sim types.SimulateResponse
	if err := json.NewDecoder(resp.Body).Decode(&sim); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sim.OK {
		t.Error("expected ok=false for unknown card")
	}
	if sim.Outcome != "unknown_card" {
		t.Errorf("expected outcome=unknown_card, got %q", sim.Outcome)
	}
}

func TestSimulate_MissingUID_400(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/rfid/simulate", `{"uid":"  "}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSimulate_InvalidJSON_400(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/rfid/simulate", `not json at all`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ── Manual check-in ─────────────────────────────────────────────────────────

func TestCheckin_ThenRepeatIsAlreadyCheckedIn(t *testing.T) {
	ts := newTestServer(t)
	body := `{"student_id":"stu_1","class_id":"cls_all_a"}`

	resp := postJSON(t, ts.URL+"/v1/checkin", body)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var first types.CheckinResponse
	if err := json.NewDecoder(resp.Body).Decode(&first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !first.OK || first.Outcome != "checkin" {
		t.Errorf("unexpected first response %+v", first)
	}

	resp2 := postJSON(t, ts.URL+"/v1/checkin", body)
	defer resp2.Body.Close()
	var second types.CheckinResponse
	if err := json.NewDecoder(resp2.Body).Decode(&second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !second.OK || second.Outcome != "already_checked_in" {
		t.Errorf("unexpected second response %+v", second)
	}
}

func TestCheckin_MissingFields_400(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/checkin", `{"student_id":"stu_1"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ── Scan logs ───────────────────────────────────────────────────────────────

func TestLogs_ReflectSimulatedScans(t *testing.T) {
	ts := newTestServer(t)

	// One successful and one unknown scan.
	r1 := postJSON(t, ts.URL+"/v1/rfid/simulate", `{"uid":"123456789"}`)
	r1.Body.Close()
	r2 := postJSON(t, ts.URL+"/v1/rfid/simulate", `{"uid":"000000"}`)
	r2.Body.Close()

	resp, err := http.Get(ts.URL + "/v1/rfid/logs")
	if err != nil {
		t.Fatalf("get logs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var logsResp types.ScanLogsResponse
	if err := json.NewDecoder(resp.Body).Decode(&logsResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(logsResp.Logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(logsResp.Logs))
	}

	// Newest first.
	if logsResp.Logs[0].UID != "000000" || logsResp.Logs[0].Action != "unknown_card" {
		t.Errorf("unexpected newest entry %+v", logsResp.Logs[0])
	}
	if logsResp.Logs[1].UID != "123456789" || logsResp.Logs[1].Action != "checkin" {
		t.Errorf("unexpected older entry %+v", logsResp.Logs[1])
	}
	if logsResp.Logs[1].StudentID != "stu_1" {
		t.Errorf("expected checkin entry bound to stu_1, got %q", logsResp.Logs[1].StudentID)
	}
	if _, err := time.Parse(time.RFC3339Nano, logsResp.Logs[0].ScannedAt); err != nil {
		t.Errorf("scanned_at not RFC3339: %v", err)
	}
}

func TestLogs_InvalidLimit_400(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/rfid/logs?limit=zero")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUnknownRoute_404(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
