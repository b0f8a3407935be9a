package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/auth"
	"github.com/rahat/chatterpoint/internal/service"
)

// PostHandler serves the post feed and per-post endpoints.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// callerEmail pulls the authenticated email set by the auth middleware. A
// handler mounted without the middleware has no caller.
func callerEmail(r *http.Request) (string, error) {
	email, ok := auth.EmailFromContext(r.Context())
	if !ok {
		return "", apperror.Unauthorized("no token provided")
	}
	return email, nil
}

// Create handles POST /posts. The post's owner is the token's email, never a
// body field.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, err := callerEmail(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	var in service.PostInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	post, err := h.posts.Create(r.Context(), email, in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Post created",
		"post":    post,
	})
}

// List handles GET /posts with page/limit/tag/sort query parameters.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	in := service.ListInput{
		PageRequest: pageRequest(r),
		Tag:         r.URL.Query().Get("tag"),
		Sort:        r.URL.Query().Get("sort"),
	}

	posts, info, err := h.posts.List(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts":       posts,
		"totalCount":  info.TotalCount,
		"totalPages":  info.TotalPages,
		"currentPage": info.CurrentPage,
	})
}

// ListMine handles GET /my-posts/{email}.
func (h *PostHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	posts, info, err := h.posts.ListByOwner(r.Context(), chi.URLParam(r, "email"), pageRequest(r))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts":       posts,
		"totalCount":  info.TotalCount,
		"totalPages":  info.TotalPages,
		"currentPage": info.CurrentPage,
	})
}

// Get handles GET /post/{id}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Update handles PUT /post/{id}. Owner only.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	email, err := callerEmail(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	var in service.PostInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	post, err := h.posts.Update(r.Context(), email, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Post updated",
		"post":    post,
	})
}

// Delete handles DELETE /post/{id}. Owner only; comments go with the post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, err := callerEmail(r)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	if err := h.posts.Delete(r.Context(), email, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

// Vote handles POST /post/{id}/vote with body {"vote": 1} or {"vote": -1}.
func (h *PostHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Vote int `json:"vote"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	if err := h.posts.Vote(r.Context(), chi.URLParam(r, "id"), in.Vote); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vote recorded"})
}

// CountByOwner handles GET /post-count/{email}.
func (h *PostHandler) CountByOwner(w http.ResponseWriter, r *http.Request) {
	count, err := h.posts.CountByOwner(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}
