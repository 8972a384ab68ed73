package registration

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an idle registration session is kept.
const DefaultSessionTTL = 2 * time.Hour

type sessionEntry struct {
	flow     *Flow
	lastSeen time.Time
}

// SessionStore owns every registration flow, keyed by session id. Idle
// flows expire after the TTL.
type SessionStore struct {
	backend Backend
	cfg     FlowConfig
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.Mutex
	flows map[string]*sessionEntry

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionStore creates a store and starts its cleanup goroutine.
// Call Close to stop it.
func NewSessionStore(backend Backend, ttl time.Duration, cfg FlowConfig) *SessionStore {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &SessionStore{
		backend: backend,
		cfg:     cfg,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		flows:   make(map[string]*sessionEntry),
		stop:    make(chan struct{}),
	}

	go s.cleanup()

	return s
}

// Start creates an empty flow under a new session id.
func (s *SessionStore) Start() (*Flow, error) {
	id := uuid.NewString()

	state, err := NewState(id, s.backend)
	if err != nil {
		return nil, err
	}
	flow := NewFlow(id, state, s.cfg)

	s.mu.Lock()
	s.flows[id] = &sessionEntry{flow: flow, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Debug("registration session started", "registration_id", id)
	return flow, nil
}

// Get returns the flow for id and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*Flow, bool) {
	if id == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.flows[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(entry.lastSeen) > s.ttl {
		s.remove(id)
		return nil, false
	}
	entry.lastSeen = now
	return entry.flow, true
}

// End removes the flow for id and its stored records.
func (s *SessionStore) End(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(id); err != nil {
		return err
	}
	delete(s.flows, id)
	return nil
}

// Len returns the number of live flows.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flows)
}

// Close stops the cleanup goroutine.
func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *SessionStore) cleanup() {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

// sweep drops flows idle for longer than the TTL.
func (s *SessionStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, entry := range s.flows {
		if now.Sub(entry.lastSeen) > s.ttl {
			s.remove(id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("expired registration sessions", "count", removed)
	}
	return removed
}

// remove deletes id; callers hold s.mu.
func (s *SessionStore) remove(id string) {
	if err := s.backend.Delete(id); err != nil {
		s.logger.Warn("failed to delete expired registration", "registration_id", id, "error", err)
	}
	delete(s.flows, id)
}
