package httpserver

import (
	"errors"
	"net/http"
	"strings"

	accounterrors "veilian/contexts/identity-access/account-service/domain/errors"
	accounthttp "veilian/contexts/identity-access/account-service/transport/http"
)

func writeAccountError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, accounthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAccountDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, accounterrors.ErrInvalidRequest):
		writeAccountError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, accounterrors.ErrHandleTaken):
		writeAccountError(w, http.StatusConflict, "HANDLE_TAKEN", err.Error())
	case errors.Is(err, accounterrors.ErrAuthenticationRequired):
		writeAccountError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", err.Error())
	case errors.Is(err, accounterrors.ErrForbidden):
		writeAccountError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, accounterrors.ErrNotFound):
		writeAccountError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		writeAccountError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func requireAccountUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	handle := strings.TrimSpace(r.Header.Get("X-User-Handle"))
	if handle == "" {
		writeAccountError(w, http.StatusUnauthorized, "USER_REQUIRED", "X-User-Handle header is required")
		return "", false
	}
	return handle, true
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.SignupRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.SignupHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req accounthttp.LoginRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.LoginHandler(r.Context(), req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	resp, err := s.accounts.Handler.ProfileHandler(r.Context(), r.PathValue("handle"))
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateBio(w http.ResponseWriter, r *http.Request) {
	handle, ok := requireAccountUser(w, r)
	if !ok {
		return
	}
	var req accounthttp.UpdateBioRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.UpdateBioHandler(r.Context(), handle, req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	handle, ok := requireAccountUser(w, r)
	if !ok {
		return
	}
	var req accounthttp.UpdateAvatarRequest
	if !s.decodeJSON(w, r, &req, writeAccountError) {
		return
	}
	resp, err := s.accounts.Handler.UpdateAvatarHandler(r.Context(), handle, req)
	if err != nil {
		writeAccountDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
