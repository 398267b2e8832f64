package docchat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdfchat/src/log"
)

const (
	DefaultSessionTTL = 2 * time.Hour

	reapInterval = 5 * time.Minute
)

// session holds the server-side state of one chat session. Fields are only
// touched while the session mutex is held, which serializes uploads,
// searches, and chat generations within the session.
type session struct {
	mu         sync.Mutex
	id         string
	createdAt  time.Time
	lastActive time.Time
	documents  []DocumentInfo
	history    []ChatMessage
}

// Manager owns the session table and implements SessionService. Each
// session runs one operation at a time; distinct sessions proceed in
// parallel. Idle sessions are reaped after the configured TTL, dropping
// their vector collections.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	index    VectorIndex
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager over the given vector index and
// starts the idle-session reaper. A non-positive ttl falls back to the
// default. Close stops the reaper.
func NewManager(index VectorIndex, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	m := &Manager{
		sessions: make(map[string]*session),
		index:    index,
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go m.reapLoop()

	return m
}

// Close stops the idle-session reaper
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
}

func (m *Manager) Create(ctx context.Context) (*SessionInfo, error) {
	id := uuid.New().String()

	if err := m.index.EnsureCollection(ctx, sessionCollection(id)); err != nil {
		return nil, fmt.Errorf("failed to create session collection: %w", err)
	}

	now := time.Now().UTC()
	s := &session{
		id:         id,
		createdAt:  now,
		lastActive: now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	log.Info("created session", "session_id", id)
	return sessionInfo(s), nil
}

func (m *Manager) Get(ctx context.Context, id string) (*SessionInfo, error) {
	var info *SessionInfo
	err := m.withSession(id, func(s *session) error {
		info = sessionInfo(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	// wait for any in-flight operation before dropping the collection
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := m.index.DeleteCollection(ctx, sessionCollection(id)); err != nil {
		return fmt.Errorf("failed to delete session collection: %w", err)
	}

	log.Info("deleted session", "session_id", id)
	return nil
}

func (m *Manager) ListDocuments(ctx context.Context, id string) ([]DocumentInfo, error) {
	var docs []DocumentInfo
	err := m.withSession(id, func(s *session) error {
		docs = append([]DocumentInfo(nil), s.documents...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (m *Manager) History(ctx context.Context, id string) ([]ChatMessage, error) {
	var history []ChatMessage
	err := m.withSession(id, func(s *session) error {
		history = append([]ChatMessage(nil), s.history...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// withSession runs fn with the session mutex held and refreshes the
// session's last-activity timestamp
func (m *Manager) withSession(id string, fn func(s *session) error) error {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now().UTC()
	return fn(s)
}

func (m *Manager) reapLoop() {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.reapExpired(now.UTC())
		}
	}
}

func (m *Manager) reapExpired(now time.Time) {
	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		// a session busy with an operation is not idle
		if !s.mu.TryLock() {
			continue
		}
		idle := now.Sub(s.lastActive) > m.ttl
		s.mu.Unlock()

		if idle {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		if err := m.Delete(context.Background(), id); err != nil {
			log.Error(err, "failed to reap expired session", "session_id", id)
			continue
		}
		log.Info("reaped expired session", "session_id", id)
	}
}

func sessionInfo(s *session) *SessionInfo {
	return &SessionInfo{
		ID:            s.id,
		CreatedAt:     s.createdAt,
		LastActiveAt:  s.lastActive,
		DocumentCount: len(s.documents),
		MessageCount:  len(s.history),
	}
}

// sessionCollection returns the vector-store collection name for a session
func sessionCollection(id string) string {
	return "session_" + id
}
