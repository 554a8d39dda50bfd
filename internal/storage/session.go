package storage

import (
	"sync"
	"time"

	"github.com/iGoriLLapshin/telegram-bot-test/internal/domain/entities"
)

// Entry wraps an active session together with its per-user event lock and
// the timers the session owns. All events for one user are applied under
// mu, so a double tap or a retried callback can never interleave two
// transitions over the same counters.
type Entry struct {
	mu      sync.Mutex
	Session *entities.QuizSession

	tmu           sync.Mutex
	lastEventAt   time.Time
	deadlineTimer *time.Timer
	cleanupTimer  *time.Timer
}

// Lock serializes event handling for this entry's user.
func (e *Entry) Lock() { e.mu.Lock() }

// Unlock releases the per-user event lock.
func (e *Entry) Unlock() { e.mu.Unlock() }

// Touch records event activity for idle tracking.
func (e *Entry) Touch() {
	e.tmu.Lock()
	e.lastEventAt = time.Now()
	e.tmu.Unlock()
}

// IdleFor returns how long ago the entry last saw an event.
func (e *Entry) IdleFor() time.Duration {
	e.tmu.Lock()
	defer e.tmu.Unlock()
	return time.Since(e.lastEventAt)
}

// SetDeadlineTimer hands the one-shot deadline timer to the entry.
func (e *Entry) SetDeadlineTimer(t *time.Timer) {
	e.tmu.Lock()
	e.deadlineTimer = t
	e.tmu.Unlock()
}

// SetCleanupTimer hands the post-termination cleanup timer to the entry.
func (e *Entry) SetCleanupTimer(t *time.Timer) {
	e.tmu.Lock()
	e.cleanupTimer = t
	e.tmu.Unlock()
}

// StopDeadlineTimer cancels the pending deadline, if any. Called on normal
// completion so a stale timeout cannot fire a duplicate result.
func (e *Entry) StopDeadlineTimer() {
	e.tmu.Lock()
	defer e.tmu.Unlock()
	if e.deadlineTimer != nil {
		e.deadlineTimer.Stop()
		e.deadlineTimer = nil
	}
}

func (e *Entry) stopTimers() {
	e.tmu.Lock()
	defer e.tmu.Unlock()
	if e.deadlineTimer != nil {
		e.deadlineTimer.Stop()
		e.deadlineTimer = nil
	}
	if e.cleanupTimer != nil {
		e.cleanupTimer.Stop()
		e.cleanupTimer = nil
	}
}

// SessionStore is the process-wide mapping from user id to their active quiz
// session. The store mutex guards only the map; per-user serialization lives
// on the entries, so different users never contend beyond map access.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[int64]*Entry
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[int64]*Entry),
	}
}

// Create installs a new session for the user, discarding any previous one.
// Timers of the replaced session are stopped so they cannot fire into the
// fresh session.
func (s *SessionStore) Create(userID int64, session *entities.QuizSession) *Entry {
	entry := &Entry{
		Session:     session,
		lastEventAt: time.Now(),
	}

	s.mu.Lock()
	old := s.entries[userID]
	s.entries[userID] = entry
	s.mu.Unlock()

	if old != nil {
		old.stopTimers()
	}

	return entry
}

// Get returns the active entry for the user.
func (s *SessionStore) Get(userID int64) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[userID]
	return entry, ok
}

// Delete removes the user's session and stops its timers.
func (s *SessionStore) Delete(userID int64) {
	s.mu.Lock()
	entry := s.entries[userID]
	delete(s.entries, userID)
	s.mu.Unlock()

	if entry != nil {
		entry.stopTimers()
	}
}

// DeleteIf removes the user's session only while the given entry is still
// the active one, in a single critical section. Deletion callbacks (cleanup
// timers, the janitor) decide on a snapshot of the entry; without the
// compare a racing restart could install a fresh session between their check
// and the delete, and the callback would drop the wrong session. Reports
// whether the entry was removed.
func (s *SessionStore) DeleteIf(userID int64, entry *Entry) bool {
	s.mu.Lock()
	if s.entries[userID] != entry {
		s.mu.Unlock()
		return false
	}
	delete(s.entries, userID)
	s.mu.Unlock()

	entry.stopTimers()
	return true
}

// Contains reports whether the given entry is still the active one for the
// user. A timer callback that outlived a restart uses this to detect it is
// stale.
func (s *SessionStore) Contains(userID int64, entry *Entry) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[userID] == entry
}

// Len returns the number of active sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ForEach visits a snapshot of the active entries. The callback runs without
// the store lock held, so it may call Delete.
func (s *SessionStore) ForEach(fn func(userID int64, entry *Entry)) {
	s.mu.RLock()
	snapshot := make(map[int64]*Entry, len(s.entries))
	for id, entry := range s.entries {
		snapshot[id] = entry
	}
	s.mu.RUnlock()

	for id, entry := range snapshot {
		fn(id, entry)
	}
}
