package game

import (
	"github.com/lox/holdem-rooms/internal/deck"
)

// Player represents a seated participant in a room. The room owns this
// record exclusively; chips mirror the identity store's balance, with
// the room authoritative while a hand is running.
type Player struct {
	ID        string
	Chips     int
	HoleCards []deck.Card
	Folded    bool
	AllIn     bool
	Bet       int // chips committed in the current betting round

	acted bool // has acted in the current betting round
}

// CanAct returns true if the player can still take betting actions
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn && p.Chips > 0
}

// InHand returns true if the player was dealt into the current hand and
// has not folded. Only these players can win the pot.
func (p *Player) InHand() bool {
	return len(p.HoleCards) == 2 && !p.Folded
}
