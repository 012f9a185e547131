package handlers

import (
	"net/http"

	"github.com/AnshRaj112/afterthedoll-backend/internal/middleware"
	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	users   *services.UserService
	journal *services.JournalService
	avatars *services.AvatarService
	log     *zap.Logger
}

// NewUserHandler wires the profile endpoints. avatars may be nil when image
// uploads are not configured.
func NewUserHandler(users *services.UserService, journal *services.JournalService, avatars *services.AvatarService, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, journal: journal, avatars: avatars, log: log}
}

// Profile returns a user's page with the entries the caller may read.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.UIDFromContext(r.Context())
	page, err := h.journal.Profile(r.Context(), viewer, chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"profile": page,
	})
}

func (h *UserHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := models.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
	}
	if req.ThemePreset != nil {
		theme := models.ThemePreset(*req.ThemePreset)
		upd.ThemePreset = &theme
	}

	u, err := h.users.UpdateProfile(r.Context(), middleware.UIDFromContext(r.Context()), upd)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Settings saved",
		"user":    u,
	})
}

// UploadAvatar stores the multipart "file" field as the caller's avatar.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.avatars == nil {
		writeMessage(w, http.StatusServiceUnavailable, false, "Avatar uploads are not available")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarBytes+(1<<20))
	if err := r.ParseMultipartForm(services.MaxAvatarBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Failed to parse form")
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, false, "No file provided")
		return
	}
	defer file.Close()

	url, err := h.avatars.Upload(r.Context(), middleware.UIDFromContext(r.Context()), fileHeader)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Avatar updated",
		"url":     url,
	})
}
