package draft

import (
	"sync"
	"time"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
)

// DefaultSessionTTL is how long an idle draft survives between edits.
const DefaultSessionTTL = 2 * time.Hour

type sessionEntry struct {
	draft   *DocumentDraft
	touched time.Time
}

// Store holds live draft sessions in memory. Drafts are working state,
// not documents: a lost session costs the user unsaved edits, never
// committed data, so there is no persistence behind it.
type Store struct {
	mu       sync.Mutex
	sessions map[id.ID]*sessionEntry
	ttl      time.Duration

	now func() time.Time
}

// NewStore creates a session store with the given idle TTL.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{
		sessions: make(map[id.ID]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put registers a draft session.
func (s *Store) Put(d *DocumentDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	s.sessions[d.ID] = &sessionEntry{draft: d, touched: s.now()}
}

// Get returns a live draft and refreshes its idle timer.
func (s *Store) Get(draftID id.ID) (*DocumentDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	entry, ok := s.sessions[draftID]
	if !ok {
		return nil, apperror.NewNotFound("draft", draftID.String())
	}
	entry.touched = s.now()
	return entry.draft, nil
}

// Delete removes a draft session. Removing an unknown ID is a no-op.
func (s *Store) Delete(draftID id.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, draftID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()
	return len(s.sessions)
}

// evictExpired drops idle sessions. Caller must hold the lock.
func (s *Store) evictExpired() {
	cutoff := s.now().Add(-s.ttl)
	for draftID, entry := range s.sessions {
		if entry.touched.Before(cutoff) {
			delete(s.sessions, draftID)
		}
	}
}
