package entity

import (
	"math/rand"
)

const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"

	MarkX = "X"
	MarkO = "O"

	// PlayerTie marks a drawn outcome; it is never written into a cell by a
	// move, but a drawn sub-board resolves to it on the meta-board.
	PlayerTie = "-"

	EmptyCell = ""
)

const (
	VariantClassic = "classic"
	VariantSuper   = "super"
)

// Game is the single authoritative record for one room. Exactly one of Board
// and Super is set, chosen by Variant at construction. Revision is the
// optimistic-concurrency token: every accepted transition bumps it, and
// writes to the store are conditional on it.
type Game struct {
	ID                 string      `json:"id"`
	Variant            string      `json:"variant"`
	Board              *Board      `json:"board,omitempty"`
	Super              *SuperBoard `json:"super_board,omitempty"`
	PlayerX            string      `json:"player_x"`
	PlayerO            string      `json:"player_o,omitempty"`
	Turn               string      `json:"player_turn,omitempty"`
	Status             string      `json:"status"`
	Winner             string      `json:"winner,omitempty"`
	RematchRequestedBy string      `json:"rematch_requested_by,omitempty"`
	Revision           int64       `json:"revision"`
}

// NewGame creates a waiting room with the creator seated as X and an empty
// board matching the variant.
func NewGame(id, variant, creatorID string) *Game {
	game := &Game{
		ID:      id,
		Variant: variant,
		PlayerX: creatorID,
		Turn:    MarkX,
		Status:  StatusWaiting,
	}
	game.ResetBoard()

	return game
}

// ResetBoard replaces the board with an empty one of the game's variant.
func (that *Game) ResetBoard() {
	if that.Variant == VariantSuper {
		that.Board = nil
		that.Super = NewSuperBoard()
		return
	}

	that.Board = NewBoard()
	that.Super = nil
}

// Clone returns a deep copy; transitions operate on the copy and never touch
// the input state.
func (that *Game) Clone() *Game {
	clone := *that
	if that.Board != nil {
		clone.Board = that.Board.Clone()
	}
	if that.Super != nil {
		clone.Super = that.Super.Clone()
	}
	return &clone
}

// MarkOf resolves an identity to its mark for this game. The second return
// is false when the identity holds no seat.
func (that *Game) MarkOf(identity string) (string, bool) {
	switch {
	case identity != "" && identity == that.PlayerX:
		return MarkX, true
	case identity != "" && identity == that.PlayerO:
		return MarkO, true
	default:
		return "", false
	}
}

func (that *Game) IsParticipant(identity string) bool {
	_, ok := that.MarkOf(identity)
	return ok
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsCompleted() bool {
	return that.Status == StatusCompleted
}

func (that *Game) IsSuper() bool {
	return that.Variant == VariantSuper
}

// OtherMark returns the opposing mark.
func OtherMark(mark string) string {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}

// RandomMark picks the opening mark for a rematch round.
func RandomMark() string {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return MarkX
	}
	return MarkO
}
