package consult

import (
	"errors"
	"sync"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrDuplicate = errors.New("session id already exists")
)

// Store exposes keyed session state with atomic read-modify-write updates.
type Store interface {
	Create(session Session) error
	Get(id string) (Session, error)
	// Update applies mutate to the current session value and stores the
	// result. Updates on the same id serialize; distinct ids do not block
	// one another. A non-nil error from mutate discards the mutation.
	Update(id string, mutate func(*Session) error) (Session, error)
}

type sessionEntry struct {
	mu      sync.Mutex
	session Session
}

// MemoryStore implements Store with a per-session lock so concurrent
// updates on one session cannot lose writes.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*sessionEntry)}
}

// Create registers a new session, rejecting id collisions.
func (s *MemoryStore) Create(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[session.ID]; ok {
		return ErrDuplicate
	}
	s.entries[session.ID] = &sessionEntry{session: cloneSession(session)}
	return nil
}

// Get returns a copy of the stored session.
func (s *MemoryStore) Get(id string) (Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneSession(entry.session), nil
}

// Update runs mutate against a copy of the current value and commits the
// result only when mutate succeeds.
func (s *MemoryStore) Update(id string, mutate func(*Session) error) (Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next := cloneSession(entry.session)
	if err := mutate(&next); err != nil {
		return Session{}, err
	}
	entry.session = next
	return cloneSession(next), nil
}

// cloneSession copies the session including its slices so callers cannot
// mutate stored state behind the lock.
func cloneSession(session Session) Session {
	copied := session
	if session.EndTime != nil {
		end := *session.EndTime
		copied.EndTime = &end
	}
	if session.MedicalHistory != nil {
		copied.MedicalHistory = append([]string(nil), session.MedicalHistory...)
	}
	if session.QuestionLog != nil {
		copied.QuestionLog = make([]QuestionRecord, len(session.QuestionLog))
		for i, record := range session.QuestionLog {
			copied.QuestionLog[i] = record
			copied.QuestionLog[i].GeneratedQuestions = append([]string(nil), record.GeneratedQuestions...)
		}
	}
	return copied
}
