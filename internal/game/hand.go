package game

import (
	"time"

	"github.com/lox/holdem-rooms/internal/deck"
)

// StartHand begins a new hand. Preconditions: the room is waiting and
// at least two players are seated. Effects, in order: fresh shuffled
// deck, blinds posted, two hole cards dealt round-robin, and the turn
// handed to the seat two past the big blind.
func (r *Room) StartHand() error {
	if r.Phase.Active() {
		return ErrHandInProgress
	}
	if len(r.Players) < 2 {
		return ErrNotEnoughPlayers
	}

	// Seats may have gone away since the last hand.
	if r.DealerIndex >= len(r.Players) {
		r.DealerIndex = 0
	}

	r.Deck = r.newDeck()
	r.Community = nil
	r.Pot = 0
	r.CurrentBet = r.BigBlind
	r.Phase = Preflop
	r.HandID = r.newHandID()

	for _, p := range r.Players {
		p.HoleCards = nil
		p.Bet = 0
		p.Folded = false
		p.AllIn = false
		p.acted = false
	}

	playerIDs := make([]string, len(r.Players))
	for i, p := range r.Players {
		playerIDs[i] = p.ID
	}
	r.publish(HandStartEvent{
		HandID:     r.HandID,
		PlayerIDs:  playerIDs,
		DealerID:   r.Players[r.DealerIndex].ID,
		SmallBlind: r.SmallBlind,
		BigBlind:   r.BigBlind,
		timestamp:  time.Now(),
	})

	n := len(r.Players)
	r.postBlind((r.DealerIndex+1)%n, r.SmallBlind, "small")
	r.postBlind((r.DealerIndex+2)%n, r.BigBlind, "big")

	if !r.dealHoleCards() {
		return nil
	}

	// Under the gun: two seats past the big blind.
	r.CurrentIndex = (r.DealerIndex + 3) % n
	if !r.needsAction(r.Players[r.CurrentIndex]) {
		r.advanceFrom(r.CurrentIndex)
	}
	return nil
}

// Apply processes an action from a participant. Out-of-turn requests
// are dropped without mutating anything: the return value reports
// whether the action was applied, and rejected callers simply act
// again off their next snapshot.
func (r *Room) Apply(playerID string, action Action, amount int) bool {
	if !r.Phase.Active() {
		return false
	}
	if r.CurrentIndex < 0 || r.CurrentIndex >= len(r.Players) {
		return false
	}
	p := r.Players[r.CurrentIndex]
	if p.ID != playerID {
		return false
	}

	switch action {
	case Fold:
		p.Folded = true

	case Check, Call:
		// A check facing a bet is treated as a call.
		if r.commit(p, r.CurrentBet-p.Bet) > 0 {
			action = Call
		}

	case Raise:
		raiseBy := amount
		if raiseBy <= 0 {
			raiseBy = r.BigBlind
		}
		target := r.CurrentBet + raiseBy
		r.commit(p, target-p.Bet)
		if p.Bet > r.CurrentBet {
			r.CurrentBet = p.Bet
		}

	case AllIn:
		r.commit(p, p.Chips)
		p.AllIn = true
		if p.Bet > r.CurrentBet {
			r.CurrentBet = p.Bet
		}

	default:
		return false
	}

	// The amount on the wire is the player's standing bet this round,
	// matching how the log lines read ("raises to", "calls").
	amount = p.Bet
	if action == Fold {
		amount = 0
	}

	p.acted = true
	r.syncBalance(p)
	r.publish(PlayerActionEvent{
		PlayerID:  p.ID,
		Action:    action,
		Amount:    amount,
		Pot:       r.Pot,
		AllIn:     p.AllIn,
		timestamp: time.Now(),
	})

	if r.contenderCount() <= 1 {
		r.settle()
		return true
	}
	r.advanceFrom(r.CurrentIndex + 1)
	return true
}

// commit moves up to amount chips from the player's stack into their
// round bet and the pot, returning the amount actually moved. A stack
// that hits zero marks the player all-in so the settled-round invariant
// (every live player matches the current bet) holds.
func (r *Room) commit(p *Player, amount int) int {
	if amount > p.Chips {
		amount = p.Chips
	}
	if amount < 0 {
		amount = 0
	}
	p.Chips -= amount
	p.Bet += amount
	r.Pot += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
	return amount
}

// postBlind is capped at the player's stack; a short post puts the
// player all-in rather than taking them negative.
func (r *Room) postBlind(seat int, amount int, kind string) {
	p := r.Players[seat]
	posted := r.commit(p, amount)
	r.syncBalance(p)
	r.publish(BlindPostedEvent{
		PlayerID:  p.ID,
		Kind:      kind,
		Amount:    posted,
		AllIn:     p.AllIn,
		timestamp: time.Now(),
	})
}

// dealHoleCards deals two passes, one card per seated player per pass.
// The distribution order matters for deterministic replay.
func (r *Room) dealHoleCards() bool {
	for pass := 0; pass < 2; pass++ {
		for _, p := range r.Players {
			card, err := r.Deck.Draw()
			if err != nil {
				r.abortHand("deck exhausted")
				return false
			}
			p.HoleCards = append(p.HoleCards, card)
		}
	}
	return true
}

func (r *Room) dealCommunity(n int) bool {
	cards, err := r.Deck.DrawN(n)
	if err != nil {
		r.abortHand("deck exhausted")
		return false
	}
	r.Community = append(r.Community, cards...)
	return true
}

// needsAction reports whether the player still owes a decision in the
// current betting round: they can act, and either face an unmatched bet
// or have not acted since the round opened (the big blind's option).
func (r *Room) needsAction(p *Player) bool {
	return p.CanAct() && (p.Bet < r.CurrentBet || !p.acted)
}

// advanceFrom scans at most one full lap starting at the given seat and
// hands the turn to the first player who still needs to act, skipping
// folded, all-in, and broke players. If nobody needs to act the betting
// round is over and the phase advances.
func (r *Room) advanceFrom(start int) {
	n := len(r.Players)
	for i := 0; i < n; i++ {
		pos := (start + i) % n
		if r.needsAction(r.Players[pos]) {
			r.CurrentIndex = pos
			return
		}
	}
	r.advancePhase()
}

// advancePhase moves to the next street: round bets reset, community
// cards dealt, and the first actor picked by scanning from the dealer
// seat itself. When nobody can act on the new street (everyone all-in)
// it keeps advancing until showdown.
func (r *Room) advancePhase() {
	for _, p := range r.Players {
		p.Bet = 0
		p.acted = false
	}
	r.CurrentBet = 0

	switch r.Phase {
	case Preflop:
		r.Phase = Flop
		if !r.dealCommunity(3) {
			return
		}
	case Flop:
		r.Phase = Turn
		if !r.dealCommunity(1) {
			return
		}
	case Turn:
		r.Phase = River
		if !r.dealCommunity(1) {
			return
		}
	case River:
		r.Phase = Showdown
		r.publish(PhaseChangeEvent{
			Phase:     r.Phase,
			Community: append([]deck.Card(nil), r.Community...),
			timestamp: time.Now(),
		})
		r.settle()
		return
	default:
		return
	}

	r.publish(PhaseChangeEvent{
		Phase:     r.Phase,
		Community: append([]deck.Card(nil), r.Community...),
		timestamp: time.Now(),
	})

	r.CurrentIndex = r.DealerIndex
	r.advanceFrom(r.CurrentIndex)
}

// settle pays out the pot and returns the room to waiting. A single
// remaining contender wins outright; otherwise the winner is drawn
// uniformly at random among the non-folded players. No hand-strength
// comparison is performed.
func (r *Room) settle() {
	contenders := r.contenders()
	if len(contenders) == 0 {
		handID := r.HandID
		r.resetHand()
		r.publish(HandAbortedEvent{HandID: handID, Reason: "no contenders", timestamp: time.Now()})
		return
	}

	winner := contenders[0]
	showdown := false
	if len(contenders) > 1 {
		winner = contenders[r.rng.IntN(len(contenders))]
		showdown = true
	}

	pot := r.Pot
	winner.Chips += pot
	r.Pot = 0
	r.syncBalance(winner)

	handID := r.HandID
	r.resetHand()
	r.DealerIndex = (r.DealerIndex + 1) % len(r.Players)

	r.publish(HandEndEvent{
		HandID:    handID,
		WinnerID:  winner.ID,
		Pot:       pot,
		Showdown:  showdown,
		timestamp: time.Now(),
	})
}

// abortHand tears down a hand that cannot continue. If exactly one
// contender remains they win by the early-win rule; otherwise the room
// resets to waiting and the pot is not awarded.
func (r *Room) abortHand(reason string) {
	if r.contenderCount() == 1 {
		r.settle()
		return
	}
	handID := r.HandID
	r.resetHand()
	r.publish(HandAbortedEvent{HandID: handID, Reason: reason, timestamp: time.Now()})
}

// resetHand clears all per-hand state and returns the room to waiting.
// The dealer button is advanced by settle, not here.
func (r *Room) resetHand() {
	for _, p := range r.Players {
		p.HoleCards = nil
		p.Bet = 0
		p.Folded = false
		p.AllIn = false
		p.acted = false
	}
	r.Community = nil
	r.Pot = 0
	r.CurrentBet = 0
	r.Phase = Waiting
	r.CurrentIndex = -1
	r.HandID = ""
}
