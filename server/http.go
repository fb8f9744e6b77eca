// server/http.go
package server

import (
	"encoding/json"
	"net/http"

	"github.com/duoparty/gameserver/logger"
)

type createSessionRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Password string `json:"password"`
}

type createSessionResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

func (s *GameServer) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions/new", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	mux.HandleFunc("GET /api/gamemodes", s.handleGameModes)
	mux.HandleFunc("GET /api/questions/count", s.handleQuestionCount)
	mux.HandleFunc("GET /health", s.handleHealth)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *GameServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "missing_parameters")
		return
	}
	if req.Name == "" || req.Type == "" {
		writeError(w, http.StatusBadRequest, "missing_parameters")
		return
	}

	sess, err := s.sessionService.Create(r.Context(), req.Name, req.Type, req.Password)
	if err != nil {
		logger.Log.Errorf("Failed to create session: %v", err)
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	writeJSON(w, http.StatusOK, createSessionResponse{ID: sess.Room, Code: sess.Code})
}

func (s *GameServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "No session ID provided")
		return
	}

	sess, err := s.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (s *GameServer) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "No game ID provided")
		return
	}

	game, err := s.gameService.Get(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Game not found")
		return
	}

	writeJSON(w, http.StatusOK, game)
}

func (s *GameServer) handleGameModes(w http.ResponseWriter, r *http.Request) {
	modes, err := s.gameService.GameModes(r.Context())
	if err != nil {
		logger.Log.Errorf("Failed to list game modes: %v", err)
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	writeJSON(w, http.StatusOK, modes)
}

func (s *GameServer) handleQuestionCount(w http.ResponseWriter, r *http.Request) {
	total, err := s.gameService.TotalQuestions(r.Context())
	if err != nil {
		logger.Log.Errorf("Failed to count questions: %v", err)
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"totalQuestions": total})
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
