package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	socialerrors "veilian/contexts/community-experience/social-service/domain/errors"
	socialhttp "veilian/contexts/community-experience/social-service/transport/http"
	accesserrors "veilian/contexts/identity-access/access-control/domain/errors"
)

func writeSocialError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, socialhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeSocialDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, socialerrors.ErrInvalidRequest):
		writeSocialError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, socialerrors.ErrIdempotencyKeyRequired):
		writeSocialError(w, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED", err.Error())
	case errors.Is(err, socialerrors.ErrIdempotencyConflict):
		writeSocialError(w, http.StatusConflict, "IDEMPOTENCY_CONFLICT", err.Error())
	case errors.Is(err, socialerrors.ErrPostNotFound):
		writeSocialError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, accesserrors.ErrAuthenticationRequired):
		writeSocialError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", err.Error())
	case errors.Is(err, accesserrors.ErrForbidden):
		writeSocialError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, accesserrors.ErrPermissionDenied):
		writeSocialError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error())
	default:
		writeSocialError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func requireSocialUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	handle := strings.TrimSpace(r.Header.Get("X-User-Handle"))
	if handle == "" {
		writeSocialError(w, http.StatusUnauthorized, "USER_REQUIRED", "X-User-Handle header is required")
		return "", false
	}
	return handle, true
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	author, ok := requireSocialUser(w, r)
	if !ok {
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		writeSocialError(w, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED", "Idempotency-Key header is required")
		return
	}
	var req socialhttp.CreatePostRequest
	if !s.decodeJSON(w, r, &req, writeSocialError) {
		return
	}
	resp, err := s.social.Handler.CreatePostHandler(r.Context(), key, author, req)
	if err != nil {
		writeSocialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListFeed(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireSocialUser(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeSocialError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer")
			return
		}
		limit = parsed
	}
	resp, err := s.social.Handler.ListFeedHandler(r.Context(), viewer, limit)
	if err != nil {
		writeSocialDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
