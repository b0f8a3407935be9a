package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rahat/chatterpoint/internal/service"
)

// CommentHandler serves comment creation and per-post listing.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// Create handles POST /comment.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Comment added",
		"comment": comment,
	})
}

// ListByPost handles GET /comments/{post}.
func (h *CommentHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	comments, info, err := h.comments.ListByPost(r.Context(), chi.URLParam(r, "post"), pageRequest(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"comments":    comments,
		"totalCount":  info.TotalCount,
		"totalPages":  info.TotalPages,
		"currentPage": info.CurrentPage,
	})
}
