package httpserver

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestModerationBanRequiresAuthorization(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"target":"theo","reason":"spam"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderation/ban", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "idem-ban-1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestModerationBanRequiresIdempotencyKey(t *testing.T) {
	server := newTestServer()
	body := []byte(`{"target":"theo","reason":"spam"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderation/ban", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "nova")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestModerationBanByMemberDenied(t *testing.T) {
	server := newTestServer()
	server.seedAccount(t, "mira")
	server.seedAccount(t, "theo")

	body := []byte(`{"target":"theo","reason":"personal"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderation/ban", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "mira")
	req.Header.Set("Idempotency-Key", "idem-ban-2")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestModerationPromoteByModeratorDenied(t *testing.T) {
	server := newTestServer()
	server.seedSupreme(t, "nova")
	server.seedAccount(t, "mod")
	server.seedAccount(t, "theo")

	promote := []byte(`{"target":"mod"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderation/promote", bytes.NewReader(promote))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "nova")
	req.Header.Set("Idempotency-Key", "idem-promote-1")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Moderators cannot mint other moderators.
	escalate := []byte(`{"target":"theo"}`)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/moderation/promote", bytes.NewReader(escalate))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "mod")
	req.Header.Set("Idempotency-Key", "idem-promote-2")
	rr = httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestModerationBanReplaySameKeyOK(t *testing.T) {
	server := newTestServer()
	server.seedSupreme(t, "nova")
	server.seedAccount(t, "theo")

	body := []byte(`{"target":"theo","reason":"spam"}`)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/moderation/ban", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-Handle", "nova")
		req.Header.Set("Idempotency-Key", "idem-ban-replay")
		rr := httptest.NewRecorder()
		server.mux.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d body=%s", i, rr.Code, rr.Body.String())
		}
	}

	// Same key with a different target is a conflict.
	server.seedAccount(t, "zoe")
	conflict := []byte(`{"target":"zoe","reason":"spam"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderation/ban", bytes.NewReader(conflict))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Handle", "nova")
	req.Header.Set("Idempotency-Key", "idem-ban-replay")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}
