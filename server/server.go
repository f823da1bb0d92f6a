// Package server exposes the attendant over HTTP for the UI boundary:
// one chat endpoint per turn, plus session snapshot and reset.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	contractx "github.com/graphmind/pastelaria/agent/contract"
)

type Config struct {
	Addr string `split_words:"true" default:":8080"`
}

// Conversation is the slice of the attendant the HTTP layer needs.
type Conversation interface {
	HandleMessage(ctx context.Context, sessionID string, text string) (contractx.Reply, error)
	Reset(sessionID string) contractx.Snapshot
	Snapshot(sessionID string) (contractx.Snapshot, bool)
}

type Server struct {
	conversation Conversation
}

func New(conversation Conversation) *Server {
	return &Server{conversation: conversation}
}

// Handler builds the HTTP routing tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/chat", s.handleChat)
		api.Get("/sessions/{sessionID}", s.handleGetSession)
		api.Post("/sessions/{sessionID}/reset", s.handleResetSession)
	})

	return r
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type turnResponse struct {
	SessionID  string                `json:"session_id"`
	Reply      string                `json:"reply,omitempty"`
	Cart       cartPayload           `json:"cart"`
	Profile    contractx.ProfileView `json:"profile"`
	OrderReady bool                  `json:"order_ready"`
}

type cartPayload struct {
	Items []contractx.CartItemView `json:"items"`
	Total string                   `json:"total"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.conversation.HandleMessage(r.Context(), payload.SessionID, payload.Message)
	if err != nil {
		if errors.Is(err, contractx.ErrValidation) {
			respondError(w, http.StatusBadRequest, "message is required")
			return
		}
		log.Error().Err(err).Str("session_id", payload.SessionID).Msg("server: turn failed")
		respondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	respondJSON(w, http.StatusOK, toTurnResponse(reply.Text, reply.Snapshot))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap, ok := s.conversation.Snapshot(sessionID)
	if !ok {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, toTurnResponse("", snap))
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snap := s.conversation.Reset(sessionID)
	respondJSON(w, http.StatusOK, toTurnResponse("", snap))
}

func toTurnResponse(reply string, snap contractx.Snapshot) turnResponse {
	items := snap.Items
	if items == nil {
		items = []contractx.CartItemView{}
	}
	return turnResponse{
		SessionID: snap.SessionID,
		Reply:     reply,
		Cart: cartPayload{
			Items: items,
			Total: snap.Total.StringFixed(2),
		},
		Profile:    snap.Profile,
		OrderReady: snap.OrderReady,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("server: encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
