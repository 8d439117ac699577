package engine

import "github.com/rocketscienceinc/supertictactoe-backend/internal/entity"

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate resolves nine cells to a winner mark, entity.PlayerTie for a draw,
// or entity.EmptyCell while the board is still open.
//
// The same function serves the classic board (cells are marks) and the super
// variant's meta-board (cells are sub-board outcomes). drawFills states
// whether a PlayerTie cell is possible: on the meta-board a drawn sub-board
// counts toward the all-filled draw check but never completes a winning line.
// With drawFills false a PlayerTie cell keeps the board open, which a legal
// classic board can never produce.
func Evaluate(cells [9]string, drawFills bool) string {
	for _, combo := range WinCombos {
		a, b, c := cells[combo[0]], cells[combo[1]], cells[combo[2]]
		if a != entity.EmptyCell && a != entity.PlayerTie && a == b && b == c {
			return a
		}
	}

	for _, cell := range cells {
		if cell == entity.EmptyCell {
			return entity.EmptyCell
		}
		if cell == entity.PlayerTie && !drawFills {
			return entity.EmptyCell
		}
	}

	return entity.PlayerTie
}

// EvaluateBoard resolves a classic board.
func EvaluateBoard(board *entity.Board) string {
	return Evaluate(*board, false)
}

// EvaluateSuper resolves each sub-board, then the meta-board they form.
func EvaluateSuper(super *entity.SuperBoard) string {
	var meta [9]string
	for i := range super.Boards {
		meta[i] = Evaluate(super.Boards[i], false)
	}
	return Evaluate(meta, true)
}
