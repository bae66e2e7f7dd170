// Package game implements the room state machine for Texas Hold'em.
//
// The main type is Room, which owns a table's deck, community cards,
// pot, seat list, and the turn-rotation and phase-advancement logic for
// one hand at a time. Rooms are driven entirely by callers: seat and
// unseat players, start a hand, and apply actions for whoever holds the
// turn. The room pushes what happened back out through its Subscriber.
//
// # Basic Usage
//
// Create a room and run a hand:
//
//	r := game.NewRoom("main", 20)
//	r.Seat("alice", 1000)
//	r.Seat("bob", 1000)
//	r.StartHand()
//	r.Apply(r.CurrentPlayerID(), game.Call, 0)
//
// # Deterministic Testing
//
// Randomness (shuffles and the showdown winner draw) comes from a
// single injectable RNG:
//
//	r := game.NewRoom("main", 20, game.WithRand(randutil.New(42)))
//
// # Showdown
//
// There is no hand-strength evaluation. At showdown the winner is drawn
// uniformly at random among the players who have not folded; a single
// remaining player wins outright. This is an intentional simplification.
//
// A Room performs no internal locking; callers serialize all access per
// room. Distinct rooms are fully independent.
package game
