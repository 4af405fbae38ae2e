package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	chaterrors "veilian/contexts/community-experience/chat-service/domain/errors"
	chathttp "veilian/contexts/community-experience/chat-service/transport/http"
	accesserrors "veilian/contexts/identity-access/access-control/domain/errors"
)

func writeChatError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, chathttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// The chat surface forwards gate denials from access-control, so its error
// switch covers both taxonomies.
func writeChatDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chaterrors.ErrInvalidRequest):
		writeChatError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, chaterrors.ErrIdempotencyKeyRequired):
		writeChatError(w, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED", err.Error())
	case errors.Is(err, chaterrors.ErrIdempotencyConflict):
		writeChatError(w, http.StatusConflict, "IDEMPOTENCY_CONFLICT", err.Error())
	case errors.Is(err, chaterrors.ErrMessageNotFound):
		writeChatError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, accesserrors.ErrInvalidRequest),
		errors.Is(err, accesserrors.ErrInvalidChannel):
		writeChatError(w, http.StatusBadRequest, "INVALID_CHANNEL", err.Error())
	case errors.Is(err, accesserrors.ErrAuthenticationRequired):
		writeChatError(w, http.StatusUnauthorized, "AUTHENTICATION_REQUIRED", err.Error())
	case errors.Is(err, accesserrors.ErrForbidden):
		writeChatError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, accesserrors.ErrPermissionDenied):
		writeChatError(w, http.StatusForbidden, "PERMISSION_DENIED", err.Error())
	case errors.Is(err, accesserrors.ErrNotFound):
		writeChatError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		writeChatError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func requireChatUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	handle := strings.TrimSpace(r.Header.Get("X-User-Handle"))
	if handle == "" {
		writeChatError(w, http.StatusUnauthorized, "USER_REQUIRED", "X-User-Handle header is required")
		return "", false
	}
	return handle, true
}

func requireChatIdempotency(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		writeChatError(w, http.StatusBadRequest, "IDEMPOTENCY_KEY_REQUIRED", "Idempotency-Key header is required")
		return "", false
	}
	return key, true
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	author, ok := requireChatUser(w, r)
	if !ok {
		return
	}
	key, ok := requireChatIdempotency(w, r)
	if !ok {
		return
	}
	var req chathttp.PostMessageRequest
	if !s.decodeJSON(w, r, &req, writeChatError) {
		return
	}
	resp, err := s.chat.Handler.PostMessageHandler(r.Context(), key, author, req)
	if err != nil {
		writeChatDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handlePostPrivateMessage(w http.ResponseWriter, r *http.Request) {
	author, ok := requireChatUser(w, r)
	if !ok {
		return
	}
	key, ok := requireChatIdempotency(w, r)
	if !ok {
		return
	}
	var req chathttp.PostPrivateMessageRequest
	if !s.decodeJSON(w, r, &req, writeChatError) {
		return
	}
	resp, err := s.chat.Handler.PostPrivateMessageHandler(r.Context(), key, author, req)
	if err != nil {
		writeChatDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	viewer, ok := requireChatUser(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	channel := query.Get("channel")

	var afterSequence int64
	if raw := query.Get("after_sequence"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeChatError(w, http.StatusBadRequest, "INVALID_AFTER_SEQUENCE", "after_sequence must be an integer")
			return
		}
		afterSequence = parsed
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeChatError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer")
			return
		}
		limit = parsed
	}

	resp, err := s.chat.Handler.ListMessagesHandler(r.Context(), viewer, channel, afterSequence, limit)
	if err != nil {
		writeChatDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
