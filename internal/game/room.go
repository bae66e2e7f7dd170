package game

import (
	rand "math/rand/v2"
	"time"

	"github.com/lox/holdem-rooms/internal/deck"
	"github.com/lox/holdem-rooms/internal/handid"
	"github.com/lox/holdem-rooms/internal/randutil"
)

// BalanceSync receives a player's chip total after every chip-affecting
// mutation. The room is authoritative while a hand runs; the sink is a
// write-only mirror and is never read back mid-hand.
type BalanceSync interface {
	SetBalance(playerID string, chips int)
}

// Room is the state machine for one table. It owns the deck, the
// community cards, the pot, and the turn/phase bookkeeping for the
// players seated at it.
//
// A Room is not safe for concurrent use. Callers serialize all access
// per room; distinct rooms are fully independent.
type Room struct {
	ID         string
	BigBlind   int
	SmallBlind int
	MaxPlayers int

	Players      []*Player // seat order is join order and stays stable
	Deck         *deck.Deck
	Community    []deck.Card
	Pot          int
	CurrentBet   int
	DealerIndex  int
	CurrentIndex int // -1 when no hand is active
	Phase        Phase
	HandID       string // empty outside a hand

	rng       *rand.Rand
	balances  BalanceSync
	newHandID func() string
	newDeck   func() *deck.Deck
	subs      []Subscriber
}

// NewRoom creates an empty room in the waiting phase. The small blind
// is half the big blind, truncated for odd big blinds.
func NewRoom(id string, bigBlind int, opts ...RoomOption) *Room {
	cfg := &roomConfig{
		maxPlayers: DefaultMaxPlayers,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.rng == nil {
		cfg.rng = randutil.NewTimeSeeded()
	}
	if cfg.newHandID == nil {
		cfg.newHandID = handid.Generate
	}
	if cfg.newDeck == nil {
		rng := cfg.rng
		cfg.newDeck = func() *deck.Deck { return deck.New(rng) }
	}

	return &Room{
		ID:           id,
		BigBlind:     bigBlind,
		SmallBlind:   bigBlind / 2,
		MaxPlayers:   cfg.maxPlayers,
		Phase:        Waiting,
		CurrentIndex: -1,
		rng:          cfg.rng,
		balances:     cfg.balances,
		newHandID:    cfg.newHandID,
		newDeck:      cfg.newDeck,
	}
}

// Subscribe registers a subscriber for this room's events
func (r *Room) Subscribe(sub Subscriber) {
	r.subs = append(r.subs, sub)
}

func (r *Room) publish(event Event) {
	for _, sub := range r.subs {
		sub.OnEvent(r.ID, event)
	}
}

// Seat adds a participant with the given chip balance. Seat order is
// join order. Joining while a hand is running is allowed, but the new
// player sits out (marked folded) until the next hand starts.
func (r *Room) Seat(playerID string, chips int) error {
	if len(r.Players) >= r.MaxPlayers {
		return ErrRoomFull
	}
	if r.IsSeated(playerID) {
		return ErrAlreadySeated
	}
	if chips < MinBuyInBigBlinds*r.BigBlind {
		return ErrInsufficientChips
	}

	p := &Player{
		ID:     playerID,
		Chips:  chips,
		Folded: r.Phase.Active(),
	}
	r.Players = append(r.Players, p)

	r.publish(PlayerJoinedEvent{
		PlayerID:  playerID,
		Chips:     chips,
		Seat:      len(r.Players) - 1,
		timestamp: time.Now(),
	})
	return nil
}

// Unseat removes a participant's seat. Returns false if the player was
// not seated. If the removal happens mid-hand the engine keeps moving:
// the turn pointer is repaired and, when only one contender remains,
// the hand settles immediately. Chips the player already committed stay
// in the pot.
func (r *Room) Unseat(playerID string) bool {
	idx := -1
	for i, p := range r.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false
	}

	handActive := r.Phase.Active()
	wasCurrent := handActive && idx == r.CurrentIndex

	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	r.publish(PlayerLeftEvent{PlayerID: playerID, timestamp: time.Now()})

	if len(r.Players) == 0 {
		r.Phase = Waiting
		r.Pot = 0
		r.CurrentBet = 0
		r.Community = nil
		r.CurrentIndex = -1
		r.DealerIndex = 0
		r.HandID = ""
		return true
	}

	if idx < r.DealerIndex {
		r.DealerIndex--
	}
	if r.DealerIndex >= len(r.Players) {
		r.DealerIndex = 0
	}

	if !handActive {
		return true
	}

	if idx < r.CurrentIndex {
		r.CurrentIndex--
	} else if r.CurrentIndex >= len(r.Players) {
		r.CurrentIndex = 0
	}

	if r.contenderCount() <= 1 {
		r.settle()
		return true
	}
	if wasCurrent {
		// Removal shifted the next seat into the vacated index, so the
		// scan starts there rather than one past it.
		r.advanceFrom(r.CurrentIndex)
	}
	return true
}

// IsSeated returns true if the participant occupies a seat
func (r *Room) IsSeated(playerID string) bool {
	for _, p := range r.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

// SeatedCount returns the number of occupied seats
func (r *Room) SeatedCount() int {
	return len(r.Players)
}

// Empty returns true when no seats are occupied
func (r *Room) Empty() bool {
	return len(r.Players) == 0
}

// CanStartHand returns true when a new hand may begin
func (r *Room) CanStartHand() bool {
	return r.Phase == Waiting && len(r.Players) >= 2
}

// CurrentPlayerID returns the id of the player whose turn it is, or ""
// when no hand is active.
func (r *Room) CurrentPlayerID() string {
	if !r.Phase.Active() || r.CurrentIndex < 0 || r.CurrentIndex >= len(r.Players) {
		return ""
	}
	return r.Players[r.CurrentIndex].ID
}

func (r *Room) syncBalance(p *Player) {
	if r.balances != nil {
		r.balances.SetBalance(p.ID, p.Chips)
	}
}

// contenders returns the players still eligible to win the pot
func (r *Room) contenders() []*Player {
	var out []*Player
	for _, p := range r.Players {
		if p.InHand() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) contenderCount() int {
	n := 0
	for _, p := range r.Players {
		if p.InHand() {
			n++
		}
	}
	return n
}
