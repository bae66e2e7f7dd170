package game

import "errors"

var (
	// ErrRoomFull is returned by Seat when the room is at capacity.
	ErrRoomFull = errors.New("game: room is full")

	// ErrAlreadySeated is returned by Seat when the participant already
	// occupies a seat in the room.
	ErrAlreadySeated = errors.New("game: already seated")

	// ErrInsufficientChips is returned by Seat when the participant's
	// balance is below the minimum buy-in of 10 big blinds.
	ErrInsufficientChips = errors.New("game: insufficient chips for buy-in")

	// ErrHandInProgress is returned by StartHand when a hand is already
	// running.
	ErrHandInProgress = errors.New("game: hand already in progress")

	// ErrNotEnoughPlayers is returned by StartHand with fewer than two
	// seated players.
	ErrNotEnoughPlayers = errors.New("game: need at least 2 players")
)
