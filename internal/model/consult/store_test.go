package consult

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestSession(id string) Session {
	return Session{
		ID:          id,
		DoctorID:    "doc1",
		PatientName: "Alice",
		SessionType: "audio",
		Status:      StatusActive,
		StartTime:   time.Now().UTC(),
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Create(newTestSession("s1")); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	got, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.DoctorID != "doc1" || got.Status != StatusActive {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestStoreCreateDuplicate(t *testing.T) {
	store := NewMemoryStore()

	if err := store.Create(newTestSession("s1")); err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if err := store.Create(newTestSession("s1")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreUpdateNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Update("missing", func(s *Session) error { return nil })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreUpdateMutatorErrorDiscardsChanges(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(newTestSession("s1")); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	boom := errors.New("boom")
	_, err := store.Update("s1", func(s *Session) error {
		s.Transcript = "should not persist"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}

	got, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.Transcript != "" {
		t.Fatalf("mutation leaked after error: %q", got.Transcript)
	}
}

func TestStoreGetReturnsIsolatedCopy(t *testing.T) {
	store := NewMemoryStore()
	session := newTestSession("s1")
	session.QuestionLog = []QuestionRecord{{SuggestedQuestion: "How long?", GeneratedQuestions: []string{"q1"}}}
	session.MedicalHistory = []string{"diabetes"}
	if err := store.Create(session); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	got, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	got.QuestionLog[0].GeneratedQuestions[0] = "mutated"
	got.MedicalHistory[0] = "mutated"

	fresh, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if fresh.QuestionLog[0].GeneratedQuestions[0] != "q1" {
		t.Fatalf("stored question log mutated through copy")
	}
	if fresh.MedicalHistory[0] != "diabetes" {
		t.Fatalf("stored medical history mutated through copy")
	}
}

func TestStoreConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Create(newTestSession("s1")); err != nil {
		t.Fatalf("Create err: %v", err)
	}

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := store.Update("s1", func(s *Session) error {
				s.Transcript = AppendChunk(s.Transcript, fmt.Sprintf("chunk%d", n))
				return nil
			})
			if err != nil {
				t.Errorf("Update err: %v", err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	chunks := strings.Split(got.Transcript, " ")
	if len(chunks) != workers {
		t.Fatalf("expected %d chunks, got %d: %q", workers, len(chunks), got.Transcript)
	}
	seen := make(map[string]bool, workers)
	for _, chunk := range chunks {
		seen[chunk] = true
	}
	if len(seen) != workers {
		t.Fatalf("lost updates: only %d distinct chunks", len(seen))
	}
}
