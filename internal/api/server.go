// Package api provides the HTTP API for driving a campaign.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (the commander's control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/voryn/starfront/internal/campaign"
	"github.com/voryn/starfront/internal/persistence"
)

// Server serves the campaign over HTTP. A single mutex serializes every
// command and snapshot: one campaign, one commander, strict turn order.
type Server struct {
	State    *campaign.State
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	mu             sync.Mutex
	archivedEvents int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/state", s.handleState)
	mux.HandleFunc("/api/v1/transit-log", s.handleTransitLog)
	mux.HandleFunc("/api/v1/aar", s.handleAAR)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Command endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/production/queue", s.command(s.handleQueueProduction))
	mux.HandleFunc("/api/v1/production/upgrade", s.command(s.handleUpgradeFactory))
	mux.HandleFunc("/api/v1/barracks/queue", s.command(s.handleQueueBarracks))
	mux.HandleFunc("/api/v1/barracks/upgrade", s.command(s.handleUpgradeBarracks))
	mux.HandleFunc("/api/v1/logistics/dispatch", s.command(s.handleDispatch))
	mux.HandleFunc("/api/v1/operation/start", s.command(s.handleStartOperation))
	mux.HandleFunc("/api/v1/operation/decisions", s.command(s.handleDecisions))
	mux.HandleFunc("/api/v1/operation/ack-phase", s.command(s.handleAckPhase))
	mux.HandleFunc("/api/v1/aar/ack", s.command(s.handleAckAAR))
	mux.HandleFunc("/api/v1/day/advance", s.command(s.handleAdvanceDay))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(rateLimitMiddleware(mux))
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of allowed origins; localhost
// dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// command wraps a mutating handler: POST only, bearer auth, the campaign
// mutex held for the duration, and a best-effort persist after success.
func (s *Server) command(next func(w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "command endpoints disabled (no CAMPAIGND_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.State
	status := map[string]any{
		"name":                 st.Scenario.Name,
		"day":                  st.Day,
		"version":              st.Version,
		"action_points":        st.ActionPoints,
		"planet":               st.Planet.Name,
		"planet_control":       st.Planet.Control,
		"task_force_strength":  st.TaskForce.Units.Total(),
		"task_force_readiness": st.TaskForce.Readiness,
		"task_force_cohesion":  st.TaskForce.Cohesion,
		"shipments_in_transit": len(st.Shipments),
		"factory_jobs":         len(st.FactoryQueue),
		"barracks_jobs":        len(st.BarracksQueue),
		"operation_active":     st.Operation != nil,
	}
	if op := st.Operation; op != nil {
		status["operation_phase"] = op.CurrentPhaseName
		status["awaiting_decision"] = op.AwaitingDecision
		status["pending_phase_report"] = op.PendingPhaseRecord != nil
	}
	writeJSON(w, status)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.State.Snap()
	s.mu.Unlock()
	writeJSON(w, snap)
}

func (s *Server) handleTransitLog(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	log := append([]campaign.TransitEntry(nil), s.State.TransitLog...)
	s.mu.Unlock()
	writeJSON(w, log)
}

func (s *Server) handleAAR(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	aar := s.State.LastAAR
	s.mu.Unlock()

	if aar == nil {
		http.Error(w, "no after-action report available", http.StatusNotFound)
		return
	}
	writeJSON(w, aar)
}

// handleEvents serves the archived event history from the database, newest
// first. ?limit= caps the page (default 100, max 1000).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 1000)
	}

	if s.DB == nil {
		s.mu.Lock()
		events := append([]campaign.Event(nil), s.State.Events...)
		s.mu.Unlock()
		if len(events) > limit {
			events = events[len(events)-limit:]
		}
		writeJSON(w, events)
		return
	}

	events, err := s.DB.RecentEvents(limit)
	if err != nil {
		slog.Error("event query failed", "error", err)
		http.Error(w, "event query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleQueueProduction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Good     string `json:"good"`
		Quantity int    `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.writeResult(w, s.State.CmdQueueProduction(req.Good, req.Quantity))
}

func (s *Server) handleQueueBarracks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Good     string `json:"good"`
		Quantity int    `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.writeResult(w, s.State.CmdQueueBarracks(req.Good, req.Quantity))
}

func (s *Server) handleUpgradeFactory(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.State.CmdUpgradeFactory())
}

func (s *Server) handleUpgradeBarracks(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.State.CmdUpgradeBarracks())
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Origin      string               `json:"origin"`
		Destination string               `json:"destination"`
		Supplies    campaign.SupplyStock `json:"supplies"`
		Units       campaign.UnitStock   `json:"units"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.writeResult(w, s.State.CmdDispatchShipment(req.Origin, req.Destination, req.Supplies, req.Units))
}

func (s *Server) handleStartOperation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Target string `json:"target"`
		OpType string `json:"op_type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.writeResult(w, s.State.CmdStartOperation(req.Target, req.OpType))
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fields map[string]string `json:"fields"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.writeResult(w, s.State.CmdSubmitPhaseDecisions(req.Fields))
}

func (s *Server) handleAckPhase(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.State.CmdAcknowledgePhaseReport())
}

func (s *Server) handleAckAAR(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.State.CmdAcknowledgeAAR())
}

func (s *Server) handleAdvanceDay(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.State.CmdAdvanceDay())
}

// writeResult maps a command result to an HTTP status: 200 on success, 422
// on a recoverable rejection, 500 when the tick hit a scenario-data bug. The
// campaign is persisted after every successful command.
func (s *Server) writeResult(w http.ResponseWriter, res campaign.CommandResult) {
	switch {
	case res.OK:
		s.persist()
	case res.Fatal:
		slog.Error("command aborted on data error", "message", res.Message)
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	writeJSON(w, res)
}

// SaveNow persists the campaign under the command mutex, so callers outside
// the HTTP handlers (shutdown paths) cannot race an in-flight command.
func (s *Server) SaveNow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist()
}

// persist saves the campaign and archives the new event tail. Best effort:
// a storage failure is logged, never surfaced to the commander mid-turn.
func (s *Server) persist() {
	if s.DB == nil {
		return
	}
	if err := s.DB.SaveCampaign(s.State.Save()); err != nil {
		slog.Error("campaign save failed", "error", err)
		return
	}
	if s.archivedEvents > len(s.State.Events) {
		// The in-memory ring trimmed; archive whatever it still holds.
		s.archivedEvents = 0
	}
	if err := s.DB.SaveEvents(s.State.Events[s.archivedEvents:]); err != nil {
		slog.Error("event archive failed", "error", err)
		return
	}
	s.archivedEvents = len(s.State.Events)
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
