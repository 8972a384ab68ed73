package registration

import (
	"sync"

	"github.com/dukerupert/ferrovelho/internal/domain"
)

// Snapshot is the committed data of one registration session.
type Snapshot struct {
	Seller         *SellerRecord
	Representative *RepresentativeRecord
}

func (s Snapshot) clone() Snapshot {
	var out Snapshot
	if s.Seller != nil {
		seller := *s.Seller
		out.Seller = &seller
	}
	if s.Representative != nil {
		rep := *s.Representative
		out.Representative = &rep
	}
	return out
}

// Backend stores committed snapshots by session id.
type Backend interface {
	Load(sessionID string) (Snapshot, bool, error)
	Save(sessionID string, snap Snapshot) error
	Delete(sessionID string) error
}

// MemoryBackend keeps snapshots in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]Snapshot
}

// NewMemoryBackend creates an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]Snapshot)}
}

func (b *MemoryBackend) Load(sessionID string) (Snapshot, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap, ok := b.items[sessionID]
	if !ok {
		return Snapshot{}, false, nil
	}
	return snap.clone(), true, nil
}

func (b *MemoryBackend) Save(sessionID string, snap Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items[sessionID] = snap.clone()
	return nil
}

func (b *MemoryBackend) Delete(sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.items, sessionID)
	return nil
}

// Len returns the number of stored snapshots.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// State holds the committed seller and representative records of one
// registration session. Reads are served from memory; every write goes
// through the Backend first and only updates memory once the backend
// accepted it.
type State struct {
	mu        sync.RWMutex
	sessionID string
	backend   Backend
	snap      Snapshot
}

// NewState loads the snapshot for sessionID, or starts empty.
func NewState(sessionID string, backend Backend) (*State, error) {
	const op = "registration.NewState"

	snap, _, err := backend.Load(sessionID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load registration")
	}
	return &State{sessionID: sessionID, backend: backend, snap: snap}, nil
}

// Seller returns a copy of the committed seller record.
func (s *State) Seller() (SellerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap.Seller == nil {
		return SellerRecord{}, false
	}
	return *s.snap.Seller, true
}

// Representative returns a copy of the committed representative record.
func (s *State) Representative() (RepresentativeRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap.Representative == nil {
		return RepresentativeRecord{}, false
	}
	return *s.snap.Representative, true
}

// CommitSeller replaces the seller record. A backend failure leaves the
// previous record in place and is returned as EINTERNAL.
func (s *State) CommitSeller(r SellerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.clone()
	next.Seller = &r
	return s.save("registration.CommitSeller", next)
}

// CommitRepresentative replaces the representative record.
func (s *State) CommitRepresentative(r RepresentativeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.clone()
	next.Representative = &r
	return s.save("registration.CommitRepresentative", next)
}

// Clear drops both records.
func (s *State) Clear() error {
	const op = "registration.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(s.sessionID); err != nil {
		return domain.Internal(err, op, "failed to clear registration")
	}
	s.snap = Snapshot{}
	return nil
}

func (s *State) save(op string, next Snapshot) error {
	if err := s.backend.Save(s.sessionID, next); err != nil {
		return domain.Internal(err, op, "failed to save registration")
	}
	s.snap = next
	return nil
}
