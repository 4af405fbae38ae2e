package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	accesshttp "veilian/contexts/identity-access/access-control/transport/http"
)

func openSession(t *testing.T, server *Server, handle string) accesshttp.SessionResponse {
	t.Helper()
	body := []byte(`{"handle":"` + handle + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("open session: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp accesshttp.SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return resp
}

func TestSessionsOpenRejectsUnknownHandle(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"handle":"ghost"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSessionsOpenRejectsBanned(t *testing.T) {
	server := newTestServer()
	server.seedSupreme(t, "nova")
	server.seedAccount(t, "theo")

	ban := []byte(`{"target":"theo","reason":"spam"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderation/ban", bytes.NewReader(ban))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "nova")
	req.Header.Set("Idempotency-Key", "idem-ban-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("ban: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	body := []byte(`{"handle":"theo"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSessionsBanInvalidatesRefresh(t *testing.T) {
	server := newTestServer()
	server.seedSupreme(t, "nova")
	server.seedAccount(t, "theo")

	session := openSession(t, server, "theo")

	ban := []byte(`{"target":"theo","reason":"spam"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderation/ban", bytes.NewReader(ban))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "nova")
	req.Header.Set("Idempotency-Key", "idem-ban-2")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("ban: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	refresh := []byte(`{"token":"` + session.Data.Token + `"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions/refresh", bytes.NewReader(refresh))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after ban, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSessionsRevokeRequiresAuthorization(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSessionsRevokeThenRefreshGone(t *testing.T) {
	server := newTestServer()
	server.seedAccount(t, "mira")
	session := openSession(t, server, "mira")

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/sessions", nil)
	req.Header.Set("X-User-Handle", "mira")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d body=%s", rr.Code, rr.Body.String())
	}

	refresh := []byte(`{"token":"` + session.Data.Token + `"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sessions/refresh", bytes.NewReader(refresh))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after revoke, got %d body=%s", rr.Code, rr.Body.String())
	}
}
