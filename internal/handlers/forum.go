package handlers

import (
	"net/http"

	"github.com/AnshRaj112/afterthedoll-backend/internal/middleware"
	"github.com/AnshRaj112/afterthedoll-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ForumHandler struct {
	forum *services.ForumService
	log   *zap.Logger
}

func NewForumHandler(forum *services.ForumService, log *zap.Logger) *ForumHandler {
	return &ForumHandler{forum: forum, log: log}
}

func (h *ForumHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.forum.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": cats,
	})
}

func (h *ForumHandler) ListThreads(w http.ResponseWriter, r *http.Request) {
	cat, threads, err := h.forum.ListThreads(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"category": cat,
		"threads":  threads,
	})
}

func (h *ForumHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	t, replies, err := h.forum.GetThread(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"thread":  t,
		"replies": replies,
	})
}

func (h *ForumHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	var req ThreadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.forum.CreateThread(r.Context(), middleware.UIDFromContext(r.Context()), req.CategoryID, req.Title, req.Body)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Thread created",
		"thread":  t,
	})
}

func (h *ForumHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.forum.Reply(r.Context(), middleware.UIDFromContext(r.Context()), chi.URLParam(r, "threadID"), req.Body)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Reply posted",
		"reply":   reply,
	})
}
