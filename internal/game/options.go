package game

import (
	rand "math/rand/v2"

	"github.com/lox/holdem-rooms/internal/deck"
)

const (
	// DefaultMaxPlayers is the seat capacity of a room unless configured
	// otherwise.
	DefaultMaxPlayers = 6

	// MinBuyInBigBlinds is the minimum balance to take a seat, expressed
	// as a multiple of the room's big blind.
	MinBuyInBigBlinds = 10
)

// RoomOption configures a Room during creation.
type RoomOption func(*roomConfig)

type roomConfig struct {
	maxPlayers int
	rng        *rand.Rand
	balances   BalanceSync
	newHandID  func() string
	newDeck    func() *deck.Deck
}

// WithMaxPlayers sets the seat capacity. Default is DefaultMaxPlayers.
func WithMaxPlayers(n int) RoomOption {
	return func(c *roomConfig) {
		c.maxPlayers = n
	}
}

// WithRand sets the RNG used for shuffles and winner draws. Pass a
// seeded RNG for deterministic tests.
func WithRand(rng *rand.Rand) RoomOption {
	return func(c *roomConfig) {
		c.rng = rng
	}
}

// WithBalanceSync sets the sink that receives a player's chip total
// after every chip-affecting mutation.
func WithBalanceSync(bs BalanceSync) RoomOption {
	return func(c *roomConfig) {
		c.balances = bs
	}
}

// WithHandIDFunc overrides how hand IDs are minted. Default is
// handid.Generate.
func WithHandIDFunc(fn func() string) RoomOption {
	return func(c *roomConfig) {
		c.newHandID = fn
	}
}

// WithDeckFunc overrides how each hand's deck is built. The default
// creates a fresh 52-card deck shuffled with the room's RNG. Tests use
// this to force specific deals or a short deck.
func WithDeckFunc(fn func() *deck.Deck) RoomOption {
	return func(c *roomConfig) {
		c.newDeck = fn
	}
}
