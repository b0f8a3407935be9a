package handler

import (
	"log/slog"
	"net/http"

	"github.com/rahat/chatterpoint/internal/service"
)

// ReportHandler serves report submission, listing, and resolution.
type ReportHandler struct {
	reports *service.ReportService
	logger  *slog.Logger
}

func NewReportHandler(reports *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// Submit handles POST /report.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in service.ReportInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	report, err := h.reports.Submit(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Report submitted",
		"report":  report,
	})
}

// List handles GET /report.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, info, err := h.reports.List(r.Context(), pageRequest(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reports":     reports,
		"totalCount":  info.TotalCount,
		"totalPages":  info.TotalPages,
		"currentPage": info.CurrentPage,
	})
}

// Resolve handles DELETE /report?id=&commentId=&action=.
func (h *ReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	err := h.reports.Resolve(r.Context(), q.Get("id"), q.Get("commentId"), q.Get("action"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Report resolved"})
}
