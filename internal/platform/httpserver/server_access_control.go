package httpserver

import (
	"errors"
	"net/http"
	"strings"

	accesserrors "veilian/contexts/identity-access/access-control/domain/errors"
	accesshttp "veilian/contexts/identity-access/access-control/transport/http"
)

func writeAccessError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accesshttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAccessDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accesserrors.ErrInvalidRequest),
		errors.Is(err, accesserrors.ErrInvalidChannel):
		writeAccessError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, accesserrors.ErrIdempotencyKeyRequired):
		writeAccessError(w, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED", err.Error())
	case errors.Is(err, accesserrors.ErrIdempotencyConflict):
		writeAccessError(w, http.StatusConflict, "IDEMPOTENCY_CONFLICT", err.Error())
	case errors.Is(err, accesserrors.ErrAuthenticationRequired):
		writeAccessError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", err.Error())
	case errors.Is(err, accesserrors.ErrPermissionDenied):
		writeAccessError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error())
	case errors.Is(err, accesserrors.ErrForbidden):
		writeAccessError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, accesserrors.ErrNotFound),
		errors.Is(err, accesserrors.ErrGrantNotFound):
		writeAccessError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		writeAccessError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func requireAccessUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	handle := strings.TrimSpace(r.Header.Get("X-User-Handle"))
	if handle == "" {
		writeAccessError(w, http.StatusUnauthorized, "USER_REQUIRED", "X-User-Handle header is required")
		return "", false
	}
	return handle, true
}

func requireAccessIdempotency(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		writeAccessError(w, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED", "Idempotency-Key header is required")
		return "", false
	}
	return key, true
}

func (s *Server) handleBan(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAccessUser(w, r)
	if !ok {
		return
	}
	key, ok := requireAccessIdempotency(w, r)
	if !ok {
		return
	}
	var req accesshttp.BanRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.BanHandler(r.Context(), key, actor, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnban(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAccessUser(w, r)
	if !ok {
		return
	}
	key, ok := requireAccessIdempotency(w, r)
	if !ok {
		return
	}
	var req accesshttp.UnbanRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.UnbanHandler(r.Context(), key, actor, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePromoteModerator(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireAccessUser(w, r)
	if !ok {
		return
	}
	key, ok := requireAccessIdempotency(w, r)
	if !ok {
		return
	}
	var req accesshttp.PromoteModeratorRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.PromoteModeratorHandler(r.Context(), key, actor, req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckAccess(w http.ResponseWriter, r *http.Request) {
	var req accesshttp.CheckAccessRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.CheckAccessHandler(r.Context(), req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePermittedChannels(w http.ResponseWriter, r *http.Request) {
	handle, ok := requireAccessUser(w, r)
	if !ok {
		return
	}
	resp, err := s.access.Handler.PermittedChannelsHandler(r.Context(), handle)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req accesshttp.OpenSessionRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.OpenSessionHandler(r.Context(), req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefreshSession(w http.ResponseWriter, r *http.Request) {
	var req accesshttp.RefreshSessionRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.RefreshSessionHandler(r.Context(), req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	handle, ok := requireAccessUser(w, r)
	if !ok {
		return
	}
	if err := s.access.Handler.RevokeSessionsHandler(r.Context(), handle); err != nil {
		writeAccessDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRealtimeAuth(w http.ResponseWriter, r *http.Request) {
	var req accesshttp.RealtimeAuthRequest
	if !s.decodeJSON(w, r, &req, writeAccessError) {
		return
	}
	resp, err := s.access.Handler.RealtimeAuthHandler(r.Context(), req)
	if err != nil {
		writeAccessDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
