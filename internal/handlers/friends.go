package handlers

import (
	"net/http"

	"github.com/AnshRaj112/afterthedoll-backend/internal/middleware"
	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FriendHandler struct {
	friends *services.FriendshipService
	log     *zap.Logger
}

func NewFriendHandler(friends *services.FriendshipService, log *zap.Logger) *FriendHandler {
	return &FriendHandler{friends: friends, log: log}
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var req FriendRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fr, err := h.friends.SendRequest(r.Context(), middleware.UIDFromContext(r.Context()), req.Username)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Friend request sent",
		"request": fr,
	})
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fr, err := h.friends.Respond(r.Context(), middleware.UIDFromContext(r.Context()), chi.URLParam(r, "requestID"), models.FriendRequestStatus(req.Decision))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	message := "Friend request declined"
	if fr.Status == models.FriendRequestAccepted {
		message = "Friend request accepted"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"request": fr,
	})
}

func (h *FriendHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.friends.PendingRequests(r.Context(), middleware.UIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"requests": reqs,
	})
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.friends.ListFriends(r.Context(), middleware.UIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"friends": friends,
	})
}
