// Package identity stores who a participant is and how many chips they
// hold. Balances live here between hands; while a hand runs the room's
// in-memory stacks are authoritative and are mirrored back after every
// chip-affecting action.
package identity

import "errors"

// ErrUnknownPlayer is returned when a balance is requested for a player
// that has never been seen.
var ErrUnknownPlayer = errors.New("identity: unknown player")

// Store persists player balances.
type Store interface {
	// GetBalance returns the player's chip balance.
	GetBalance(playerID string) (int, error)

	// SetBalance overwrites the player's chip balance, creating the
	// player if needed. Every write is journaled.
	SetBalance(playerID string, chips int) error

	// EnsureBalance creates the player with the starting balance if they
	// have none on record and returns the balance now held.
	EnsureBalance(playerID string, starting int) (int, error)

	// Close releases the underlying storage.
	Close() error
}
