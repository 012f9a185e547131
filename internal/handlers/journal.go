package handlers

import (
	"net/http"

	"github.com/AnshRaj112/afterthedoll-backend/internal/middleware"
	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
	"github.com/AnshRaj112/afterthedoll-backend/internal/services"
	"github.com/AnshRaj112/afterthedoll-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// JournalHandler serves archives, entries, comments and the dashboard.
type JournalHandler struct {
	journal *services.JournalService
	log     *zap.Logger
}

func NewJournalHandler(journal *services.JournalService, log *zap.Logger) *JournalHandler {
	return &JournalHandler{journal: journal, log: log}
}

func (h *JournalHandler) CreateArchive(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.journal.CreateArchive(r.Context(), middleware.UIDFromContext(r.Context()), req.Title, req.Description)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Archive created",
		"archive": a,
	})
}

func (h *JournalHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	archives, err := h.journal.ListArchives(r.Context(), middleware.UIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"archives": archives,
	})
}

// GetArchive returns the archive with the entries the caller may read.
func (h *JournalHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.UIDFromContext(r.Context())
	a, entries, err := h.journal.ArchiveView(r.Context(), viewer, chi.URLParam(r, "archiveID"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"archive": a,
		"entries": entries,
	})
}

func (h *JournalHandler) UpdateArchive(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.journal.UpdateArchive(r.Context(), middleware.UIDFromContext(r.Context()), chi.URLParam(r, "archiveID"), req.Title, req.Description)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Archive updated",
		"archive": a,
	})
}

func (h *JournalHandler) DeleteArchive(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteArchive(r.Context(), middleware.UIDFromContext(r.Context()), chi.URLParam(r, "archiveID")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, true, "Archive deleted")
}

func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tags := req.Tags
	if req.TagsRaw != "" {
		tags = append(tags, utils.ParseTags(req.TagsRaw)...)
	}

	e, err := h.journal.CreateEntry(r.Context(), middleware.UIDFromContext(r.Context()), services.EntryInput{
		ArchiveID:  req.ArchiveID,
		Title:      req.Title,
		Body:       req.Body,
		Tags:       tags,
		Visibility: models.Visibility(req.Visibility),
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Entry saved",
		"entry":   e,
	})
}

// GetEntry returns an entry the caller may read. Hidden entries are 404.
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.UIDFromContext(r.Context())
	e, err := h.journal.GetEntry(r.Context(), viewer, chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entry":   e,
	})
}

func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := models.EntryUpdate{Title: req.Title, Body: req.Body}
	if req.Tags != nil || req.TagsRaw != nil {
		upd.SetTags = true
		upd.Tags = req.Tags
		if req.TagsRaw != nil {
			upd.Tags = append(upd.Tags, utils.ParseTags(*req.TagsRaw)...)
		}
	}
	if req.Visibility != nil {
		v := models.Visibility(*req.Visibility)
		upd.Visibility = &v
	}

	e, err := h.journal.UpdateEntry(r.Context(), middleware.UIDFromContext(r.Context()), chi.URLParam(r, "entryID"), upd)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Entry updated",
		"entry":   e,
	})
}

func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteEntry(r.Context(), middleware.UIDFromContext(r.Context()), chi.URLParam(r, "entryID")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeMessage(w, http.StatusOK, true, "Entry deleted")
}

func (h *JournalHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.UIDFromContext(r.Context())
	comments, err := h.journal.ListComments(r.Context(), viewer, chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"comments": comments,
	})
}

func (h *JournalHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.journal.AddComment(r.Context(), middleware.UIDFromContext(r.Context()), chi.URLParam(r, "entryID"), models.CommentType(req.Type), req.Body)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Comment posted",
		"comment": c,
	})
}

// Dashboard lists the caller's own entries by month; ?tag= filters by tag.
func (h *JournalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.journal.Dashboard(r.Context(), middleware.UIDFromContext(r.Context()), r.URL.Query().Get("tag"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"dashboard": d,
	})
}
