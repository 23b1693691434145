package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/service"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/store"
	"github.com/thomasphillips3/attenddance-rfid-system/internal/attendance/types"
)

type Dependencies struct {
	Logger     *log.Logger
	Addr       string
	Controller *service.Controller
	Processor  *service.Processor
	ScanLogs   store.ScanLogStore

	// MetricsHandler serves GET /metrics when set (promhttp in production).
	MetricsHandler http.Handler
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	controller *service.Controller
	processor  *service.Processor
	scanLogs   store.ScanLogStore
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:     d.Logger,
		mux:        mux,
		controller: d.Controller,
		processor:  d.Processor,
		scanLogs:   d.ScanLogs,
	}

	mux.HandleFunc("GET /v1/rfid/status", s.handleStatus)
	mux.HandleFunc("POST /v1/rfid/simulate", s.handleSimulate)
	mux.HandleFunc("GET /v1/rfid/logs", s.handleLogs)
	mux.HandleFunc("POST /v1/checkin", s.handleCheckin)
	if d.MetricsHandler != nil {
		mux.Handle("GET /metrics", d.MetricsHandler)
	}

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.controller.Stats()

	resp := types.StatusResponse{
		ServiceRunning:     st.Running,
		TotalScans:         st.TotalScans,
		SuccessfulCheckins: st.SuccessfulCheckins,
		FailedScans:        st.FailedScans,
		LastScanUID:        st.LastScanUID,
	}
	if !st.LastScanTime.IsZero() {
		resp.LastScanTime = st.LastScanTime.UTC().Format(time.RFC3339Nano)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req types.SimulateRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	uid := strings.TrimSpace(req.UID)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "invalid_uid", "uid is required")
		return
	}

	outcome := s.controller.SimulateScan(r.Context(), uid)

	writeJSON(w, http.StatusOK, types.SimulateResponse{
		OK:      outcome.Success(),
		Outcome: string(outcome),
		UID:     uid,
	})
}

func (s *Server) handleCheckin(w http.ResponseWriter, r *http.Request) {
	var req types.CheckinRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.StudentID) == "" || strings.TrimSpace(req.ClassID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "student_id and class_id are required")
		return
	}

	outcome, err := s.processor.ManualCheckIn(r.Context(), req.StudentID, req.ClassID, time.Now().UTC())
	if err != nil && !errors.Is(err, store.ErrDuplicateAttendance) {
		s.logger.Printf("manual checkin error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, types.CheckinResponse{
		OK:      outcome.Success(),
		Outcome: string(outcome),
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := s.scanLogs.ListRecent(r.Context(), limit)
	if err != nil {
		s.logger.Printf("scan log list error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	resp := types.ScanLogsResponse{Logs: make([]types.ScanLogEntry, 0, len(recs))}
	for _, rec := range recs {
		resp.Logs = append(resp.Logs, types.ScanLogEntry{
			UID:          rec.UID,
			StudentID:    rec.StudentID,
			ScannedAt:    rec.ScannedAt.UTC().Format(time.RFC3339Nano),
			Action:       string(rec.Action),
			Success:      rec.Success,
			ErrorMessage: rec.ErrorMessage,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
