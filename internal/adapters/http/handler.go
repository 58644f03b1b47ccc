package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/williskipsjr/SoulSync-Beta/internal/app/account"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/conversation"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/emergency"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/mood"
	"github.com/williskipsjr/SoulSync-Beta/internal/app/status"
	"github.com/williskipsjr/SoulSync-Beta/internal/auth"
	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
	"github.com/williskipsjr/SoulSync-Beta/internal/observability"
)

// Deps are the services the API exposes. Tokens may be nil, in which case
// no bearer token is issued and RequireAuth cannot be honoured.
type Deps struct {
	Accounts      *account.Service
	Conversations *conversation.Service
	Mood          *mood.Service
	Emergency     *emergency.Service
	Status        *status.Service
	Tokens        *auth.Issuer

	RequireAuth bool
	CORSOrigins []string
}

type Server struct {
	Deps
}

func NewServer(deps Deps) http.Handler {
	s := &Server{Deps: deps}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/{$}", s.handleRoot)

	mux.HandleFunc("POST /api/status", s.handleCreateStatus)
	mux.HandleFunc("GET /api/status", s.handleListStatus)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/users/{userID}", s.handleGetUser)
	mux.HandleFunc("PATCH /api/users/{userID}", s.handlePatchUser)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/conversations/{userID}", s.handleListConversations)
	mux.HandleFunc("GET /api/conversations/{userID}/{conversationID}", s.handleGetConversation)
	mux.HandleFunc("PATCH /api/conversations/{userID}/{conversationID}", s.handleRenameConversation)
	mux.HandleFunc("DELETE /api/conversations/{userID}/{conversationID}", s.handleDeleteConversation)

	mux.HandleFunc("POST /api/mood", s.handleCreateMood)
	mux.HandleFunc("GET /api/mood/{userID}", s.handleListMood)
	mux.HandleFunc("GET /api/mood/{userID}/stats", s.handleMoodStats)

	mux.HandleFunc("POST /api/emergency/notify", s.handleNotifyEmergency)

	return chainMiddlewares(mux,
		withCORS(deps.CORSOrigins),
		withLogging,
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type userResponse struct {
	ID                  string                   `json:"id"`
	Email               string                   `json:"email"`
	Name                string                   `json:"name"`
	CreatedAt           time.Time                `json:"created_at"`
	EmergencyContact    *domain.EmergencyContact `json:"emergency_contact,omitempty"`
	OnboardingCompleted bool                     `json:"onboarding_completed"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token,omitempty"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type patchUserRequest struct {
	Name                *string                  `json:"name"`
	EmergencyContact    *domain.EmergencyContact `json:"emergency_contact"`
	OnboardingCompleted *bool                    `json:"onboarding_completed"`
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
}

type chatResponse struct {
	Response          string `json:"response"`
	CrisisDetected    bool   `json:"crisis_detected"`
	ConversationID    string `json:"conversation_id"`
	EmergencyNotified bool   `json:"emergency_notified"`
}

type renameRequest struct {
	Title string `json:"title"`
}

type moodRequest struct {
	UserID    string   `json:"user_id"`
	MoodScore int      `json:"mood_score"`
	Emotions  []string `json:"emotions"`
	Notes     string   `json:"notes,omitempty"`
}

type notifyRequest struct {
	UserID string `json:"user_id"`
}

type statusRequest struct {
	ClientName string `json:"client_name"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

func (s *Server) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}

	check, err := s.Status.Create(r.Context(), req.ClientName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleListStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status.List(r.Context()))
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := s.Accounts.Register(r.Context(), account.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeAuth(w, r, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := s.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.writeAuth(w, r, http.StatusOK, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userID"))
	if !s.authorize(w, r, userID) {
		return
	}

	user, err := s.Accounts.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userID"))
	if !s.authorize(w, r, userID) {
		return
	}

	var req patchUserRequest
	if !decode(w, r, &req) {
		return
	}

	patch := domain.UserPatch{
		Name:                req.Name,
		EmergencyContact:    req.EmergencyContact,
		OnboardingCompleted: req.OnboardingCompleted,
	}
	if patch.Empty() {
		badRequest(w, "no updatable fields supplied")
		return
	}

	user, err := s.Accounts.Patch(r.Context(), userID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decode(w, r, &req) {
		return
	}

	userID := domain.UserID(req.UserID)
	if userID != "" && !s.authorize(w, r, userID) {
		return
	}

	out, err := s.Conversations.Chat(r.Context(), conversation.ChatInput{
		Message:        req.Message,
		ConversationID: domain.ConversationID(req.ConversationID),
		UserID:         userID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:          out.Response,
		CrisisDetected:    out.CrisisDetected,
		ConversationID:    string(out.ConversationID),
		EmergencyNotified: out.EmergencyNotified,
	})
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userID"))
	if !s.authorize(w, r, userID) {
		return
	}
	writeJSON(w, http.StatusOK, s.Conversations.List(r.Context(), userID))
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userID"))
	if !s.authorize(w, r, userID) {
		return
	}

	conv, err := s.Conversations.Get(r.Context(), userID, domain.ConversationID(r.PathValue("conversationID")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleRenameConversation(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userID"))
	if !s.authorize(w, r, userID) {
		return
	}

	var req renameRequest
	if !decode(w, r, &req) {
		return
	}

	conv, err := s.Conversations.Rename(r.Context(), userID, domain.ConversationID(r.PathValue("conversationID")), req.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userID"))
	if !s.authorize(w, r, userID) {
		return
	}

	if err := s.Conversations.Delete(r.Context(), userID, domain.ConversationID(r.PathValue("conversationID"))); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleCreateMood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if !decode(w, r, &req) {
		return
	}

	userID := domain.UserID(req.UserID)
	if !s.authorize(w, r, userID) {
		return
	}

	entry, err := s.Mood.Create(r.Context(), mood.CreateEntryInput{
		UserID:    userID,
		MoodScore: req.MoodScore,
		Emotions:  req.Emotions,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListMood(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userID"))
	if !s.authorize(w, r, userID) {
		return
	}

	limit, ok := intQuery(w, r, "limit", mood.DefaultListLimit)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Mood.List(r.Context(), userID, limit))
}

func (s *Server) handleMoodStats(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserID(r.PathValue("userID"))
	if !s.authorize(w, r, userID) {
		return
	}

	days, ok := intQuery(w, r, "days", mood.DefaultStatsDays)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Mood.Stats(r.Context(), userID, days))
}

func (s *Server) handleNotifyEmergency(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if !decode(w, r, &req) {
		return
	}

	userID := domain.UserID(req.UserID)
	if !s.authorize(w, r, userID) {
		return
	}

	writeJSON(w, http.StatusOK, s.Emergency.Notify(r.Context(), userID))
}

// ─────────────────────────────────────────────
// Auth helpers
// ─────────────────────────────────────────────

func (s *Server) writeAuth(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	resp := authResponse{User: toUserResponse(user)}

	if s.Tokens != nil {
		token, err := s.Tokens.GenerateToken(string(user.ID))
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Token = token
	}
	writeJSON(w, status, resp)
}

// authorize enforces that the bearer token belongs to userID. It is a no-op
// unless RequireAuth is set.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, userID domain.UserID) bool {
	if !s.RequireAuth {
		return true
	}
	if s.Tokens == nil {
		writeError(w, r, errors.New("auth required but no token issuer configured"))
		return false
	}

	claims, err := s.Tokens.ValidateToken(r.Header.Get("Authorization"))
	if err != nil || domain.UserID(claims.UserID) != userID {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return false
	}
	return true
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:                  string(u.ID),
		Email:               u.Email,
		Name:                u.Name,
		CreatedAt:           u.CreatedAt,
		EmergencyContact:    u.EmergencyContact,
		OnboardingCompleted: u.OnboardingCompleted,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func intQuery(w http.ResponseWriter, r *http.Request, key string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(w, key+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

// writeError maps domain sentinels to status codes. Unknown errors are
// logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidInput):
		code = http.StatusBadRequest
	}

	if code == http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		writeJSON(w, code, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
