package entity

// Board is a classic 3x3 grid in row-major order. A cell holds MarkX, MarkO
// or EmptyCell.
type Board [9]string

// SuperBoard is a 3x3 grid of Boards. ActiveBoard is the index the next move
// must target; nil means free choice among undecided sub-boards.
type SuperBoard struct {
	Boards      [9]Board `json:"boards"`
	ActiveBoard *int     `json:"active_board"`
}

func NewBoard() *Board {
	return &Board{}
}

func NewSuperBoard() *SuperBoard {
	return &SuperBoard{}
}

func (that *Board) Clone() *Board {
	clone := *that
	return &clone
}

func (that *SuperBoard) Clone() *SuperBoard {
	clone := &SuperBoard{Boards: that.Boards}
	if that.ActiveBoard != nil {
		idx := *that.ActiveBoard
		clone.ActiveBoard = &idx
	}
	return clone
}
