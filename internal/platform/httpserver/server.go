package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	chatservice "veilian/contexts/community-experience/chat-service"
	socialservice "veilian/contexts/community-experience/social-service"
	accesscontrol "veilian/contexts/identity-access/access-control"
	accountservice "veilian/contexts/identity-access/account-service"
	_ "veilian/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	accounts accountservice.Module
	access   accesscontrol.Module
	chat     chatservice.Module
	social   socialservice.Module
}

func New(
	accounts accountservice.Module,
	access accesscontrol.Module,
	chat chatservice.Module,
	social socialservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		accounts: accounts,
		access:   access,
		chat:     chat,
		social:   social,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/v1/accounts/signup", s.handleSignup)
	s.mux.HandleFunc("POST /api/v1/accounts/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/v1/accounts/{handle}/profile", s.handleProfile)
	s.mux.HandleFunc("POST /api/v1/accounts/me/bio", s.handleUpdateBio)
	s.mux.HandleFunc("POST /api/v1/accounts/me/avatar", s.handleUpdateAvatar)

	s.mux.HandleFunc("POST /api/v1/moderation/ban", s.handleBan)
	s.mux.HandleFunc("POST /api/v1/moderation/unban", s.handleUnban)
	s.mux.HandleFunc("POST /api/v1/moderation/promote", s.handlePromoteModerator)
	s.mux.HandleFunc("POST /api/v1/access/check", s.handleCheckAccess)
	s.mux.HandleFunc("GET /api/v1/access/channels", s.handlePermittedChannels)
	s.mux.HandleFunc("POST /api/v1/sessions", s.handleOpenSession)
	s.mux.HandleFunc("POST /api/v1/sessions/refresh", s.handleRefreshSession)
	s.mux.HandleFunc("DELETE /api/v1/sessions", s.handleRevokeSessions)
	s.mux.HandleFunc("POST /api/v1/realtime/auth", s.handleRealtimeAuth)

	s.mux.HandleFunc("POST /api/v1/chat/messages", s.handlePostMessage)
	s.mux.HandleFunc("POST /api/v1/chat/private-messages", s.handlePostPrivateMessage)
	s.mux.HandleFunc("GET /api/v1/chat/messages", s.handleListMessages)

	s.mux.HandleFunc("POST /api/v1/social/posts", s.handleCreatePost)
	s.mux.HandleFunc("GET /api/v1/social/feed", s.handleListFeed)
}

// RegisterRealtime mounts the WebSocket upgrade endpoint. The gateway is
// wired after the access module, so it registers itself here instead of in
// registerRoutes.
func (s *Server) RegisterRealtime(handler http.HandlerFunc) {
	s.mux.HandleFunc("GET /realtime", handler)
}

func (s *Server) decodeJSON(
	w http.ResponseWriter,
	r *http.Request,
	dst any,
	writeError func(http.ResponseWriter, int, string, string),
) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
