package identity

import "sync"

// MemStore keeps balances in memory. It backs tests and running the
// server without a database path configured; balances are lost on
// restart.
type MemStore struct {
	mu       sync.RWMutex
	balances map[string]int
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty in-memory store
func NewMemStore() *MemStore {
	return &MemStore{balances: make(map[string]int)}
}

// GetBalance returns the player's chip balance.
func (s *MemStore) GetBalance(playerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	balance, ok := s.balances[playerID]
	if !ok {
		return 0, ErrUnknownPlayer
	}
	return balance, nil
}

// SetBalance overwrites the player's balance.
func (s *MemStore) SetBalance(playerID string, chips int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[playerID] = chips
	return nil
}

// EnsureBalance creates the player with the starting balance if absent
// and returns the balance now on record.
func (s *MemStore) EnsureBalance(playerID string, starting int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if balance, ok := s.balances[playerID]; ok {
		return balance, nil
	}
	s.balances[playerID] = starting
	return starting, nil
}

// Close is a no-op for the in-memory store
func (s *MemStore) Close() error {
	return nil
}
