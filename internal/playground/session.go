package playground

import "sync"

const DefaultCode = `fn main() {
    println!("Hello, world!");
}
`

// Snapshot is a by-value copy of the session taken at dispatch time.
type Snapshot struct {
	Code          string
	Configuration Configuration
}

// Session holds the editable state owned by the application root. It is safe
// for concurrent use; readers always receive copies.
type Session struct {
	mu   sync.RWMutex
	code string
	cfg  Configuration
}

func NewSession(code string, cfg Configuration) *Session {
	return &Session{code: code, cfg: cfg}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Code: s.code, Configuration: s.cfg}
}

func (s *Session) Code() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.code
}

func (s *Session) SetCode(code string) {
	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
}

func (s *Session) Configuration() Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Update applies fn to a copy of the configuration and stores the result.
func (s *Session) Update(fn func(*Configuration)) Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.cfg
	if fn != nil {
		fn(&next)
	}
	s.cfg = next
	return next
}
