package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEventsFirstSnapshot(t *testing.T) {
	svc := newFakeConsultService()
	if _, err := svc.StartSession(context.Background(), "doc-1", "Asha", ""); err != nil {
		t.Fatalf("StartSession err: %v", err)
	}
	session := svc.sessions["sess-1"]
	session.Transcript = "I have a headache"
	svc.sessions["sess-1"] = session

	r := setupRouter(svc)

	// A pre-cancelled context stops the stream right after the initial
	// snapshot, so the handler returns synchronously.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/sessions/sess-1/events", nil).WithContext(ctx)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", got)
	}

	body := resp.Body.String()
	if !strings.Contains(body, "event: snapshot") {
		t.Fatalf("missing snapshot event: %q", body)
	}
	if !strings.Contains(body, `"transcriptLength":17`) {
		t.Fatalf("snapshot missing transcript length: %q", body)
	}
	if !strings.Contains(body, `"sessionId":"sess-1"`) {
		t.Fatalf("snapshot missing session id: %q", body)
	}
}

func TestEventsUnknownSession(t *testing.T) {
	r := setupRouter(newFakeConsultService())

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing/events", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestEventsEndedSessionClosesStream(t *testing.T) {
	svc := newFakeConsultService()
	ctx := context.Background()
	if _, err := svc.StartSession(ctx, "doc-1", "Asha", ""); err != nil {
		t.Fatalf("StartSession err: %v", err)
	}
	if _, err := svc.EndSession(ctx, "sess-1"); err != nil {
		t.Fatalf("EndSession err: %v", err)
	}

	r := setupRouter(svc)

	// No cancellation here: the handler itself must finish the stream for
	// an ended session instead of ticking forever.
	req := httptest.NewRequest(http.MethodGet, "/sessions/sess-1/events", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	body := resp.Body.String()
	if !strings.Contains(body, "event: snapshot") {
		t.Fatalf("missing snapshot event: %q", body)
	}
	if !strings.Contains(body, "event: ended") {
		t.Fatalf("missing terminal ended event: %q", body)
	}
}
