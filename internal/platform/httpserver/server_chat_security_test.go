package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatPostMessageRequiresAuthorization(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"channel":"main","content":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "idem-chat-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestChatPostMessageRequiresIdempotencyKey(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"channel":"main","content":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "mira")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestChatBannedAuthorForbidden(t *testing.T) {
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

	body := []byte(`{"channel":"main","content":"still here"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/chat/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "theo")
	req.Header.Set("Idempotency-Key", "idem-chat-2")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestChatModeratorChannelClosedToMembers(t *testing.T) {
	server := newTestServer()
	server.seedAccount(t, "mira")

	body := []byte(`{"channel":"moderator","content":"let me in"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "mira")
	req.Header.Set("Idempotency-Key", "idem-chat-3")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestChatListMessagesRequiresAuthorization(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/messages?channel=main&limit=20", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestChatPrivateMessageUnknownCounterpart(t *testing.T) {
	server := newTestServer()
	server.seedAccount(t, "zoe")

	body := []byte(`{"to":"ghost","content":"anyone there"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/private-messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "zoe")
	req.Header.Set("Idempotency-Key", "idem-dm-ghost")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestChatPrivateMessageRoundTrip(t *testing.T) {
	server := newTestServer()
	server.seedAccount(t, "zoe")
	server.seedAccount(t, "adam")

	body := []byte(`{"to":"adam","content":"hey"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/private-messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "zoe")
	req.Header.Set("Idempotency-Key", "idem-dm-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/chat/messages?channel=private:adam:zoe", nil)
	req.Header.Set("X-User-Handle", "adam")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	// An uninvolved member cannot read the pair.
	server.seedAccount(t, "eve")
	req = httptest.NewRequest(http.MethodGet, "/api/v1/chat/messages?channel=private:adam:zoe", nil)
	req.Header.Set("X-User-Handle", "eve")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}
