package game

import (
	"encoding/json"
	"fmt"
)

// Phase represents where a room is in the hand lifecycle
type Phase int

const (
	Waiting Phase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

func (p Phase) String() string {
	return [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown"}[p]
}

// MarshalJSON emits the lowercase phase name
func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses a lowercase phase name
func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for candidate := Waiting; candidate <= Showdown; candidate++ {
		if candidate.String() == s {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("game: unknown phase %q", s)
}

// Active returns true when a hand is in progress
func (p Phase) Active() bool {
	return p != Waiting
}
