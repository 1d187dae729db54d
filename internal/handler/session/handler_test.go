package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arogya-ai/consult-backend/internal/model/assist"
	consultmodel "github.com/arogya-ai/consult-backend/internal/model/consult"
	consultservice "github.com/arogya-ai/consult-backend/internal/service/consult"
)

type fakeConsultService struct {
	sessions map[string]consultmodel.Session

	startErr    error
	endErr      error
	followUpErr error
}

func newFakeConsultService() *fakeConsultService {
	return &fakeConsultService{sessions: map[string]consultmodel.Session{}}
}

func (f *fakeConsultService) StartSession(_ context.Context, doctorID, patientName, sessionType string) (consultmodel.Session, error) {
	if f.startErr != nil {
		return consultmodel.Session{}, f.startErr
	}
	session := consultmodel.Session{
		ID:             "sess-1",
		DoctorID:       doctorID,
		PatientName:    patientName,
		SessionType:    sessionType,
		Status:         consultmodel.StatusActive,
		StartTime:      time.Now(),
		MedicalHistory: []string{},
		QuestionLog:    []consultmodel.QuestionRecord{},
	}
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakeConsultService) UpdateContext(_ context.Context, id, contextText string, medicalHistory []string) error {
	session, ok := f.sessions[id]
	if !ok {
		return consultmodel.ErrNotFound
	}
	session.Context = contextText
	session.MedicalHistory = medicalHistory
	f.sessions[id] = session
	return nil
}

func (f *fakeConsultService) GetContext(_ context.Context, id string) (consultmodel.Session, error) {
	session, ok := f.sessions[id]
	if !ok {
		return consultmodel.Session{}, consultmodel.ErrNotFound
	}
	return session, nil
}

func (f *fakeConsultService) EndSession(_ context.Context, id string) (consultmodel.Summary, error) {
	if f.endErr != nil {
		return consultmodel.Summary{}, f.endErr
	}
	session, ok := f.sessions[id]
	if !ok {
		return consultmodel.Summary{}, consultmodel.ErrNotFound
	}
	session.Status = consultmodel.StatusEnded
	f.sessions[id] = session
	return consultmodel.Summary{SessionID: id, DoctorID: session.DoctorID}, nil
}

func (f *fakeConsultService) RequestFollowUps(_ context.Context, id, _, _, _ string) (*assist.QuestionResult, error) {
	if _, ok := f.sessions[id]; !ok {
		return nil, consultmodel.ErrNotFound
	}
	if f.followUpErr != nil {
		return nil, f.followUpErr
	}
	return &assist.QuestionResult{
		Questions:         []string{"How long has this been going on?"},
		SuggestedQuestion: "How long has this been going on?",
	}, nil
}

func setupRouter(svc ConsultService) *chi.Mux {
	handler := New(svc)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Marshal err: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestStartSessionCreated(t *testing.T) {
	svc := newFakeConsultService()
	r := setupRouter(svc)

	resp := postJSON(t, r, "/sessions/start", map[string]string{
		"doctorId":    "doc-1",
		"patientName": "Asha",
	})

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if body["sessionId"] != "sess-1" {
		t.Fatalf("unexpected sessionId: %v", body["sessionId"])
	}
	if body["status"] != string(consultmodel.StatusActive) {
		t.Fatalf("unexpected status: %v", body["status"])
	}
}

func TestStartSessionValidationError(t *testing.T) {
	svc := newFakeConsultService()
	svc.startErr = consultservice.ErrDoctorRequired
	r := setupRouter(svc)

	resp := postJSON(t, r, "/sessions/start", map[string]string{"patientName": "Asha"})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestStartSessionInvalidBody(t *testing.T) {
	r := setupRouter(newFakeConsultService())

	req := httptest.NewRequest(http.MethodPost, "/sessions/start", bytes.NewReader([]byte("{not json")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUpdateAndGetContext(t *testing.T) {
	svc := newFakeConsultService()
	r := setupRouter(svc)

	if resp := postJSON(t, r, "/sessions/start", map[string]string{"doctorId": "doc-1", "patientName": "Asha"}); resp.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", resp.Code)
	}

	payload, _ := json.Marshal(map[string]any{
		"context":        "fever since yesterday",
		"medicalHistory": []string{"diabetes"},
	})
	req := httptest.NewRequest(http.MethodPut, "/sessions/sess-1/context", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/sessions/sess-1/context", nil)
	getResp := httptest.NewRecorder()
	r.ServeHTTP(getResp, getReq)

	if getResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(getResp.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if body["context"] != "fever since yesterday" {
		t.Fatalf("unexpected context: %v", body["context"])
	}
}

func TestGetContextUnknownSession(t *testing.T) {
	r := setupRouter(newFakeConsultService())

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing/context", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestEndSessionReturnsSummary(t *testing.T) {
	svc := newFakeConsultService()
	r := setupRouter(svc)

	if resp := postJSON(t, r, "/sessions/start", map[string]string{"doctorId": "doc-1", "patientName": "Asha"}); resp.Code != http.StatusCreated {
		t.Fatalf("start failed: %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/sessions/sess-1/end", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Success bool                 `json:"success"`
		Summary consultmodel.Summary `json:"summary"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal err: %v", err)
	}
	if !body.Success {
		t.Fatalf("expected success true")
	}
	if body.Summary.SessionID != "sess-1" {
		t.Fatalf("unexpected summary session: %s", body.Summary.SessionID)
	}
}

func TestEndSessionConflict(t *testing.T) {
	svc := newFakeConsultService()
	svc.endErr = consultservice.ErrSessionEnded
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/sessions/sess-1/end", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}
