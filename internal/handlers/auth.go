package handlers

import (
	"net/http"

	"github.com/AnshRaj112/afterthedoll-backend/internal/middleware"
	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/services"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/auth"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *services.SessionService
	log      *zap.Logger
}

func NewAuthHandler(users *services.UserService, sessions *services.SessionService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, log: log}
}

// AuthResponse carries the session token and the signed-in profile.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// Signup registers a user and signs them in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Register(r.Context(), services.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.RecoveryEmail,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), u.UID)
	if err != nil {
		h.log.Error("create session after signup", zap.String("uid", u.UID), zap.Error(err))
		writeJSON(w, http.StatusCreated, AuthResponse{
			Success: true,
			Message: "Account created. Please sign in.",
			User:    u,
		})
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		Token:   token,
		User:    u,
	})
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.sessions.Create(r.Context(), u.UID)
	if err != nil {
		h.log.Error("create session", zap.String("uid", u.UID), zap.Error(err))
		writeMessage(w, http.StatusServiceUnavailable, false, "Action failed, please try again")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Signed in successfully",
		Token:   token,
		User:    u,
	})
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Invalidate(r.Context(), auth.ExtractBearerToken(r)); err != nil {
		h.log.Warn("invalidate session", zap.Error(err))
	}
	writeMessage(w, http.StatusOK, true, "Signed out")
}

// Me returns the signed-in user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), middleware.UIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{Success: true, Message: "OK", User: u})
}

func (h *AuthHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	var req CheckUsernameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	available, err := h.users.UsernameAvailable(r.Context(), req.Username)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	message := "Username is already taken"
	if available {
		message = "Username is available"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"available": available,
		"username":  req.Username,
		"message":   message,
	})
}
