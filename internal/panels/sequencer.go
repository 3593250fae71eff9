package panels

import "sync"

// Sequencer issues monotonically increasing tokens for one panel. Only the
// holder of the latest token may mutate the panel's container.
type Sequencer struct {
	mu sync.Mutex
	n  uint64
}

// Next issues a new token and runs fn while no other token can be issued or
// committed.
func (s *Sequencer) Next(fn func()) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	if fn != nil {
		fn()
	}
	return s.n
}

// Commit runs fn only if token is still the latest one.
func (s *Sequencer) Commit(token uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.n {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

// Current returns the latest issued token.
func (s *Sequencer) Current() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
