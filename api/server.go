package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/yardsim/game/asn"
	"github.com/wricardo/mcp-training/yardsim/game/engine"
	"github.com/wricardo/mcp-training/yardsim/game/service"
	"github.com/wricardo/mcp-training/yardsim/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.YardService
	hub     *websocket.Hub
	metrics http.Handler
	router  *mux.Router
}

// Option configures a Server
type Option func(*Server)

// WithMetricsHandler serves h at /metrics
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a new API server. hub may be nil, in which case nothing
// is broadcast and /ws is not served.
func NewServer(yardService service.YardService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: yardService,
		hub:     hub,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Yard state
	api.HandleFunc("/sessions/{id}/frame", s.handleGetFrame).Methods("GET")
	api.HandleFunc("/sessions/{id}/stats", s.handleGetStatistics).Methods("GET")
	api.HandleFunc("/sessions/{id}/asns", s.handleListASNs).Methods("GET")

	// Truck operations
	api.HandleFunc("/sessions/{id}/spawn", s.handleSpawn).Methods("POST")
	api.HandleFunc("/sessions/{id}/checkout", s.handleCheckOut).Methods("POST")
	api.HandleFunc("/sessions/{id}/trucks/{truckId}/reassign", s.handleReassign).Methods("POST")

	// Clock
	api.HandleFunc("/sessions/{id}/advance", s.handleAdvance).Methods("POST")
	api.HandleFunc("/sessions/{id}/autospawn", s.handleAutoSpawn).Methods("POST")
	api.HandleFunc("/sessions/{id}/pause", s.handleSetRunning(false)).Methods("POST")
	api.HandleFunc("/sessions/{id}/resume", s.handleSetRunning(true)).Methods("POST")

	// Zones
	api.HandleFunc("/zones", s.handleListZones).Methods("GET")
	api.HandleFunc("/zones", s.handleSaveZone).Methods("POST")
	api.HandleFunc("/zones/{name}", s.handleGetZone).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods("GET")
	}
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service and engine errors to a status code
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrZoneNotFound),
		errors.Is(err, engine.ErrContainerNotFound),
		errors.Is(err, engine.ErrTruckNotFound),
		errors.Is(err, engine.ErrUnknownSlot),
		errors.Is(err, asn.ErrASNNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrNoSlotAvailable),
		errors.Is(err, engine.ErrDuplicateContainer),
		errors.Is(err, engine.ErrSlotReserved),
		errors.Is(err, asn.ErrExhausted):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, asn.ErrInvalidASN):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// broadcastEvents forwards operation events to WebSocket viewers
func (s *Server) broadcastEvents(sessionID string, events []engine.Event) {
	if s.hub != nil && len(events) > 0 {
		s.hub.BroadcastEvents(sessionID, events)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ZoneID string `json:"zone_id,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.CreateSession(r.Context(), req.ZoneID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[SESSION] created id=%s zone=%s", session.ID, session.ZoneID)
	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return
	zone := query.Get("zone")      // only sessions on this zone

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	total := len(sessions)
	if zone != "" {
		filtered := make([]*service.SessionInfo, 0, len(sessions))
		for _, session := range sessions {
			if session.ZoneID == zone {
				filtered = append(filtered, session)
			}
		}
		sessions = filtered
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.TypeSessionDeleted, nil)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Yard State Handlers

func (s *Server) handleGetFrame(w http.ResponseWriter, r *http.Request) {
	frame, err := s.service.GetFrame(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, frame)
}

func (s *Server) handleGetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.GetStatistics(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListASNs(w http.ResponseWriter, r *http.Request) {
	asns, err := s.service.ListASNs(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(asns),
		"asns":  asns,
	})
}

// Truck Operation Handlers

func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.SpawnRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Spawn(r.Context(), sessionID, req)
	if err != nil {
		log.Printf("[SPAWN] session=%s asn=%s status=FAIL err=%v", sessionID, req.ASNNumber, err)
		respondServiceError(w, err)
		return
	}

	s.broadcastEvents(sessionID, result.Events)

	log.Printf("[SPAWN] session=%s truck=%s container=%s slot=%d status=OK",
		sessionID, result.TruckID, result.Truck.ContainerNumber, result.SlotID)

	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		ContainerNumber string `json:"container_number"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.CheckOut(r.Context(), sessionID, req.ContainerNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastEvents(sessionID, result.Events)

	log.Printf("[CHECKOUT] session=%s container=%s slot=%d", sessionID, result.ContainerNumber, result.SlotID)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReassign(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]
	truckID := vars["truckId"]

	var req struct {
		SlotID int `json:"slot_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SlotID <= 0 {
		respondError(w, http.StatusBadRequest, "slot_id is required")
		return
	}

	result, err := s.service.Reassign(r.Context(), sessionID, truckID, req.SlotID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastEvents(sessionID, result.Events)

	status := "REJECTED"
	if result.Accepted {
		status = "OK"
	}
	log.Printf("[REASSIGN] session=%s truck=%s slot=%d status=%s", sessionID, truckID, req.SlotID, status)

	respondJSON(w, http.StatusOK, result)
}

// Clock Handlers

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	req := struct {
		Ticks int `json:"ticks"`
	}{Ticks: 1}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Advance(r.Context(), sessionID, req.Ticks)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.broadcastEvents(sessionID, result.Events)
		if frame, err := s.service.GetFrame(r.Context(), sessionID); err == nil {
			s.hub.BroadcastFrame(sessionID, frame)
		}
	}

	log.Printf("[ADVANCE] session=%s ticks=%d/%d tick=%d in_flight=%d parked=%d",
		sessionID, result.Report.Ticks, result.Requested, result.Report.Tick,
		result.Report.InFlight, len(result.Report.NewlyParked))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAutoSpawn(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var opts service.AutoSpawnOptions
	if err := decodeBody(r, &opts); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.service.SetAutoSpawn(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleSetRunning(running bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]

		session, err := s.service.SetRunning(r.Context(), sessionID, running)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusOK, session)
	}
}

// Zone Handlers

func (s *Server) handleListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.service.ListZones(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, zones)
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	zone, err := s.service.LoadZone(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, zone)
}

func (s *Server) handleSaveZone(w http.ResponseWriter, r *http.Request) {
	var zone engine.YardConfig
	if err := json.NewDecoder(r.Body).Decode(&zone); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if zone.Name == "" {
		respondError(w, http.StatusBadRequest, "Zone name is required")
		return
	}

	if err := s.service.SaveZone(r.Context(), zone.Name, &zone); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Zone saved successfully",
		"zone_id": zone.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sessionID := query.Get("session")
	if sessionID == "" {
		sessionID = query.Get("sessionId")
	}
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
