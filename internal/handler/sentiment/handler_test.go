package sentiment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func postSentiment(t *testing.T, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	handler := New()
	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/sentiment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestAnalyzeDistressedText(t *testing.T) {
	payload, _ := json.Marshal(map[string]string{"text": "severe chest pain, help me"})
	resp := postSentiment(t, payload)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if body["sentiment"] != "distressed" {
		t.Fatalf("expected distressed, got %v", body["sentiment"])
	}
	if body["recommendation"] == "" {
		t.Fatalf("expected a recommendation")
	}
}

func TestAnalyzeRequiresText(t *testing.T) {
	payload, _ := json.Marshal(map[string]string{"text": "   "})
	resp := postSentiment(t, payload)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestAnalyzeInvalidBody(t *testing.T) {
	resp := postSentiment(t, []byte("{broken"))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
