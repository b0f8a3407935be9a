package handler

import (
	"log/slog"
	"net/http"

	"github.com/rahat/chatterpoint/internal/service"
)

// SiteHandler serves the site-wide endpoints: stats, announcements, and the
// curated tag list.
type SiteHandler struct {
	site   *service.SiteService
	logger *slog.Logger
}

func NewSiteHandler(site *service.SiteService, logger *slog.Logger) *SiteHandler {
	return &SiteHandler{site: site, logger: logger}
}

// Stats handles GET /stats.
func (h *SiteHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.site.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CreateAnnouncement handles POST /announcements. The author is the
// authenticated caller.
func (h *SiteHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	email, err := callerEmail(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	var in service.AnnouncementInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	a, err := h.site.CreateAnnouncement(r.Context(), email, in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":      "Announcement published",
		"announcement": a,
	})
}

// ListAnnouncements handles GET /announcements.
func (h *SiteHandler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, info, err := h.site.ListAnnouncements(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"announcements": announcements,
		"totalCount":    info.TotalCount,
		"totalPages":    info.TotalPages,
		"currentPage":   info.CurrentPage,
	})
}

// CreateTag handles POST /tags.
func (h *SiteHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	tag, err := h.site.CreateTag(r.Context(), in.Name)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Tag created",
		"tag":     tag,
	})
}

// ListTags handles GET /tags.
func (h *SiteHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.site.ListTags(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}
