package output

import "sync"

type slot struct {
	result Result
	seq    uint64
}

// Store is the authoritative result model. Each kind keeps only its latest
// state and the sequence number of the dispatch allowed to settle it.
type Store struct {
	mu       sync.RWMutex
	slots    map[Kind]*slot
	inFlight int
	focus    Kind
}

func NewStore() *Store {
	return &Store{slots: make(map[Kind]*slot, len(Kinds))}
}

func (s *Store) slotLocked(kind Kind) *slot {
	sl, ok := s.slots[kind]
	if !ok {
		sl = &slot{}
		s.slots[kind] = sl
	}
	return sl
}

// Begin starts a new dispatch for kind. The slot becomes Pending, any earlier
// dispatch of the same kind is superseded, and the returned sequence number
// must be handed back to Settle.
func (s *Store) Begin(kind Kind) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slotLocked(kind)
	sl.seq++
	sl.result = Pending()
	s.inFlight++
	return sl.seq
}

// Settle ends the dispatch identified by seq. The in-flight count always
// drops by one; the result is stored only when seq is still the latest
// dispatch for kind. It reports whether the result was applied.
func (s *Store) Settle(kind Kind, seq uint64, result Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight > 0 {
		s.inFlight--
	}
	sl, ok := s.slots[kind]
	if !ok || seq == 0 || sl.seq != seq || sl.result.State != StatePending {
		return false
	}
	if !result.State.Terminal() {
		return false
	}
	sl.result = result
	return true
}

func (s *Store) Get(kind Kind) Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sl, ok := s.slots[kind]; ok {
		return sl.result
	}
	return Idle()
}

// HasAnyContent is true when some slot holds a non-empty result.
func (s *Store) HasAnyContent() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sl := range s.slots {
		if sl.result.State != StateIdle && !sl.result.IsEmpty() {
			return true
		}
	}
	return false
}

// InFlight is the number of dispatches that have not settled yet.
func (s *Store) InFlight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}
