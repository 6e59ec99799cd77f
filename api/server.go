package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/fairwaylabs/caddie/game/catalog"
	"github.com/fairwaylabs/caddie/game/engine"
	"github.com/fairwaylabs/caddie/game/geo"
	"github.com/fairwaylabs/caddie/game/service"
	"github.com/fairwaylabs/caddie/game/session"
	"github.com/fairwaylabs/caddie/transport/websocket"
	"github.com/gorilla/mux"
)

// Server represents the REST API server
type Server struct {
	service service.RoundService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(roundService service.RoundService, hub *websocket.Hub) *Server {
	s := &Server{
		service: roundService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Round lifecycle. Rounds are addressed by player: each player has at
	// most one live round.
	api.HandleFunc("/rounds", s.handleCreateRound).Methods("POST")
	api.HandleFunc("/rounds", s.handleListRounds).Methods("GET")
	api.HandleFunc("/rounds/{player}", s.handleGetRound).Methods("GET")
	api.HandleFunc("/rounds/{player}", s.handleDeleteRound).Methods("DELETE")

	// In-round operations
	api.HandleFunc("/rounds/{player}/shots", s.handleLogShot).Methods("POST")
	api.HandleFunc("/rounds/{player}/complete-hole", s.handleCompleteHole).Methods("POST")
	api.HandleFunc("/rounds/{player}/abandon", s.handleAbandonRound).Methods("POST")

	// Courses
	api.HandleFunc("/courses", s.handleListCourses).Methods("GET")
	api.HandleFunc("/courses/{id}", s.handleGetCourse).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
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

// statusFor maps domain errors onto HTTP status codes. Unknown errors are
// treated as server faults.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoSuchSession),
		errors.Is(err, catalog.ErrCourseNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrDuplicateSession),
		errors.Is(err, engine.ErrRoundClosed),
		errors.Is(err, engine.ErrCourseExhausted):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidPlayer),
		errors.Is(err, engine.ErrInvalidClub),
		errors.Is(err, geo.ErrInvalidCoordinate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Round Handlers

func (s *Server) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string          `json:"player_id"`
		CourseID string          `json:"course_id,omitempty"`
		Weather  json.RawMessage `json:"weather,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.service.CreateRound(r.Context(), req.PlayerID, req.CourseID, req.Weather)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := s.service.ListRounds(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of rounds to return

	if order == "" {
		order = "desc"
	}

	// Sort rounds by creation time
	sort.Slice(rounds, func(i, j int) bool {
		ti, tj := rounds[i].Round.CreatedAt, rounds[j].Round.CreatedAt
		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	// Apply limit if specified
	limit := len(rounds)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(rounds) {
			limit = l
		}
	}
	rounds = rounds[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(rounds),
		"rounds": rounds,
		"order":  order,
	})
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["player"]

	info, err := s.service.GetRound(r.Context(), playerID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteRound(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["player"]

	if err := s.service.RemoveRound(r.Context(), playerID); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Round for player %s removed", playerID),
	})
}

// In-Round Operation Handlers

func (s *Server) handleLogShot(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["player"]

	var req service.ShotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.LogShot(r.Context(), playerID, req)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	// Broadcast to WebSocket followers
	if s.hub != nil {
		s.hub.BroadcastRound(playerID, result.Round)
	}

	// Compact server log for observability
	status := "OK"
	if result.HoleCompleted {
		status = fmt.Sprintf("HOLED score=%d", result.HoleScore)
	}
	fmt.Printf("[SHOT] player=%s club=%s hole=%d dist=%.0fm hazards=%d state=%s %s\n",
		playerID, result.Shot.Club, result.HoleNumber, result.Shot.DistanceMeters,
		len(result.Shot.Hazards), result.State, status)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCompleteHole(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["player"]

	info, err := s.service.CompleteHole(r.Context(), playerID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastRound(playerID, info.Round)
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleAbandonRound(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["player"]

	info, err := s.service.AbandonRound(r.Context(), playerID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(playerID, "abandoned", info.Round)
	}

	respondJSON(w, http.StatusOK, info)
}

// Course Handlers

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.service.ListCourses(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, courses)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["id"]

	detail, err := s.service.GetCourse(r.Context(), courseID)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "player parameter required", http.StatusBadRequest)
		return
	}

	// Verify the player has a round
	if _, err := s.service.GetRound(r.Context(), playerID); err != nil {
		http.Error(w, "No round for player", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, playerID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
