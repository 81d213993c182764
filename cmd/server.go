package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"chat-relay/domain"
	"chat-relay/domain/event"
	domainerrors "chat-relay/errors"
	"chat-relay/internal"
	"chat-relay/observability"
	"chat-relay/realtime"
	"chat-relay/services"
	"chat-relay/transport"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// Server exposes the realtime core over HTTP: token issuance, presence and
// status endpoints, a websocket attach point for the local transport, and a
// dev surface to seed memberships and publish events without a CRUD backend.
type Server struct {
	log         *slog.Logger
	service     services.IRealtimeService
	local       *transport.Local
	tracker     *realtime.PresenceTracker
	memberships *internal.MembershipStore
	monitor     *observability.PublishMonitor
	upgrader    websocket.Upgrader
}

func NewServer(
	log *slog.Logger,
	service services.IRealtimeService,
	local *transport.Local,
	tracker *realtime.PresenceTracker,
	memberships *internal.MembershipStore,
	monitor *observability.PublishMonitor,
) *Server {
	return &Server{
		log:         log,
		service:     service,
		local:       local,
		tracker:     tracker,
		memberships: memberships,
		monitor:     monitor,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/v1/realtime/token", s.IssueToken).Methods("GET")
	r.HandleFunc("/v1/realtime/status", s.SetStatus).Methods("POST")
	r.HandleFunc("/v1/realtime/presence/enter", s.EnterPresence).Methods("POST")
	r.HandleFunc("/v1/realtime/presence/leave", s.LeavePresence).Methods("POST")
	r.HandleFunc("/ws", s.Attach).Methods("GET")
	r.HandleFunc("/dev/memberships", s.SeedMemberships).Methods("POST")
	r.HandleFunc("/dev/messages", s.PublishMessage).Methods("POST")
	r.HandleFunc("/debug/stats", s.Stats).Methods("GET")
	return r
}

// IssueToken returns a signed connection token for the user identified by the
// X-User-ID header. Authentication of that header belongs to the CRUD layer's
// session middleware, which fronts this endpoint in production.
func (s *Server) IssueToken(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		http.Error(w, "missing X-User-ID header", http.StatusUnauthorized)
		return
	}

	request, err := s.service.IssueConnectionToken(r.Context(), userID)
	if err != nil {
		s.log.Error("Token issuance failed", "user_id", userID, "error", err)
		http.Error(w, "token issuance failed", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, request)
}

type statusBody struct {
	Status   string         `json:"status"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		http.Error(w, "missing X-User-ID header", http.StatusUnauthorized)
		return
	}

	var body statusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := s.service.SetUserStatus(r.Context(), userID, body.Status, body.Metadata); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type presenceBody struct {
	ChannelType string         `json:"channel_type"`
	ChannelID   string         `json:"channel_id"`
	Metadata    map[string]any `json:"metadata"`
}

func (s *Server) EnterPresence(w http.ResponseWriter, r *http.Request) {
	s.presence(w, r, s.service.EnterPresence)
}

func (s *Server) LeavePresence(w http.ResponseWriter, r *http.Request) {
	s.presence(w, r, s.service.LeavePresence)
}

func (s *Server) presence(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, userID, channelType, channelID string, metadata map[string]any) error,
) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		http.Error(w, "missing X-User-ID header", http.StatusUnauthorized)
		return
	}

	var body presenceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := apply(r.Context(), userID, body.ChannelType, body.ChannelID, body.Metadata); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Attach upgrades the connection to a websocket, validates the connection
// token, and subscribes the session to every channel its grant allows
// subscription on. Disconnect detaches the session everywhere and clears the
// user's presence.
func (s *Server) Attach(w http.ResponseWriter, r *http.Request) {
	claims, err := s.local.Validate(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	userID := claims.ClientID
	var session *transport.Session
	session = transport.NewSession(s.log, ws, func() {
		s.local.Unsubscribe(session.ID)
		s.tracker.LeaveAll(context.Background(), userID)
	})

	for name, permissions := range claims.Capability {
		if lo.Contains(permissions, domain.PermSubscribe) {
			s.local.Subscribe(name, session.ID, session)
		}
	}

	s.log.Info("Session attached", "user_id", userID, "session_id", session.ID)
	go session.WriteLoop()
	go session.ReadLoop()
}

type roomRef struct {
	ServerID string `json:"server_id"`
	RoomID   string `json:"room_id"`
}

type seedBody struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Servers       []string  `json:"servers"`
	Rooms         []roomRef `json:"rooms"`
	Conversations []string  `json:"conversations"`
	Friends       []string  `json:"friends"`
}

// SeedMemberships populates the in-memory membership store. Dev only; the
// production deployment reads memberships from the CRUD database.
func (s *Server) SeedMemberships(w http.ResponseWriter, r *http.Request) {
	var body seedBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.UserID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	s.memberships.PutUser(domain.UserSnapshot{ID: body.UserID, Username: body.Username})
	for _, serverID := range body.Servers {
		s.memberships.JoinServer(body.UserID, serverID)
	}
	for _, room := range body.Rooms {
		s.memberships.JoinRoom(body.UserID, room.ServerID, room.RoomID)
	}
	for _, conversationID := range body.Conversations {
		s.memberships.JoinConversation(body.UserID, conversationID)
	}
	for _, friendID := range body.Friends {
		s.memberships.Befriend(body.UserID, friendID)
	}
	w.WriteHeader(http.StatusNoContent)
}

type publishBody struct {
	ServerID       string `json:"server_id"`
	RoomID         string `json:"room_id"`
	ConversationID string `json:"conversation_id"`
	event.MessagePayload
}

// PublishMessage fans a message.created event into a room or conversation.
// Dev only; production events originate from the CRUD handlers.
func (s *Server) PublishMessage(w http.ResponseWriter, r *http.Request) {
	var body publishBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	var (
		target services.MessageTarget
		err    error
	)
	if body.ConversationID != "" {
		target, err = services.ConversationTarget(body.ConversationID)
	} else {
		target, err = services.RoomTarget(body.ServerID, body.RoomID)
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	// The outer routing fields shadow the embedded payload's on decode
	body.MessagePayload.RoomID = body.RoomID
	body.MessagePayload.ConversationID = body.ConversationID
	if body.ID == "" {
		body.ID = uuid.NewString()
	}
	if body.CreatedAt.IsZero() {
		body.CreatedAt = time.Now().UTC()
	}

	outcome := s.service.PublishMessageCreated(r.Context(), target, body.MessagePayload)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  outcome.Status,
		"channel": outcome.Channel,
	})
}

func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.monitor.Snapshot())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Warn("Response encoding failed", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidScope),
		errors.Is(err, domainerrors.ErrInvalidChannelType),
		errors.Is(err, domainerrors.ErrUnknownStatus):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
