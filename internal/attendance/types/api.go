package types

// JSON shapes for the integration endpoints.  Timestamps are RFC3339 in UTC.

type StatusResponse struct {
	ServiceRunning     bool   `json:"service_running"`
	TotalScans         uint64 `json:"total_scans"`
	SuccessfulCheckins uint64 `json:"successful_checkins"`
	FailedScans        uint64 `json:"failed_scans"`
	LastScanUID        string `json:"last_scan_uid,omitempty"`
	LastScanTime       string `json:"last_scan_time,omitempty"`
}

type SimulateRequest struct {
	UID string `json:"uid"`
}

type SimulateResponse struct {
	OK      bool   `json:"ok"`
	Outcome string `json:"outcome"`
	UID     string `json:"uid"`
}

type CheckinRequest struct {
	StudentID string `json:"student_id"`
	ClassID   string `json:"class_id"`
}

type CheckinResponse struct {
	OK      bool   `json:"ok"`
	Outcome string `json:"outcome"`
}

type ScanLogEntry struct {
	UID          string `json:"rfid_uid"`
	StudentID    string `json:"student_id,omitempty"`
	ScannedAt    string `json:"scanned_at"`
	Action       string `json:"action"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type ScanLogsResponse struct {
	Logs []ScanLogEntry `json:"logs"`
}
