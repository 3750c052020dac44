package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"videoninja/models"
)

// Session is the state of one merge screen: the three slots a user fills
// before merging. Slots are replaced, never mutated. Owner is the subject
// that created it; an empty Owner accepts any subject.
type Session struct {
	ID        string
	Owner     string
	CreatedAt time.Time

	mu      sync.Mutex
	first   *models.AssetRef
	second  *models.AssetRef
	audio   *models.AssetRef
	merging bool
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{ID: uuid.New().String(), CreatedAt: time.Now()}
}

// Assign places asset into slot, replacing what was there.
func (s *Session) Assign(slot models.Slot, asset *models.AssetRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch slot {
	case models.SlotFirstVideo:
		s.first = asset
	case models.SlotSecondVideo:
		s.second = asset
	case models.SlotAudio:
		s.audio = asset
	}
}

// Assets returns the current slot contents.
func (s *Session) Assets() (first, second, audio *models.AssetRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first, s.second, s.audio
}

func (s *Session) tryBeginMerge() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.merging {
		return false
	}
	s.merging = true
	return true
}

func (s *Session) endMerge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merging = false
}

// Merging reports whether an export for this session is in flight.
func (s *Session) Merging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merging
}

// SessionStore keeps sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create starts a session owned by owner.
func (st *SessionStore) Create(owner string) *Session {
	s := NewSession()
	s.Owner = owner
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// OwnedBy reports whether subject may use the session.
func (s *Session) OwnedBy(subject string) bool {
	return s.Owner == "" || s.Owner == subject
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
