package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rahat/chatterpoint/internal/apperror"
	"github.com/rahat/chatterpoint/internal/auth"
)

// TokenHandler issues JWTs. The endpoint is public and does not check that
// the email belongs to a registered account; the token only becomes useful
// on routes that compare it against stored data.
type TokenHandler struct {
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewTokenHandler(tokens *auth.TokenService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{tokens: tokens, logger: logger}
}

// Issue handles POST /jwt with body {"email": ...}.
func (h *TokenHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if strings.TrimSpace(in.Email) == "" {
		writeError(w, h.logger, r, apperror.ValidationFailed("email", "Email is required"))
		return
	}

	token, err := h.tokens.Issue(in.Email)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
