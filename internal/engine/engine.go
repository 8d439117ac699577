package engine

import (
	"fmt"

	"github.com/rocketscienceinc/supertictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/entity"
)

// Move addresses a single cell. SubBoard is meaningful only in the super
// variant and must be 0 for classic games.
type Move struct {
	SubBoard int `json:"sub_board"`
	Cell     int `json:"cell"`
}

// SubmitMove validates a candidate move against the current state and the
// acting identity, and returns the resulting state. The input state is never
// mutated; on rejection it is returned untouched alongside the reason.
func SubmitMove(state *entity.Game, move Move, identity string) (*entity.Game, error) {
	mark, ok := state.MarkOf(identity)
	if !ok {
		return state, apperror.ErrNotParticipant
	}

	// Completed and waiting rooms have no meaningful turn, so the lifecycle
	// check comes first.
	if !state.IsInProgress() {
		return state, apperror.ErrGameNotActive
	}

	if state.Turn != mark {
		return state, apperror.ErrNotYourTurn
	}

	next := state.Clone()

	var err error
	if next.IsSuper() {
		err = applySuper(next.Super, move.SubBoard, move.Cell, mark)
	} else {
		err = applyClassic(next.Board, move, mark)
	}
	if err != nil {
		return state, fmt.Errorf("invalid turn: %w", err)
	}

	resolveOutcome(next, mark)
	next.Revision++

	return next, nil
}

// Join seats an identity as O in a waiting room. Joining a game you already
// sit in is a no-op returning the current state.
func Join(state *entity.Game, identity string) (*entity.Game, error) {
	if state.IsParticipant(identity) {
		return state, nil
	}

	if !state.IsWaiting() || state.PlayerO != "" {
		return state, apperror.ErrGameFull
	}

	next := state.Clone()
	next.PlayerO = identity
	next.Status = entity.StatusInProgress
	next.Revision++

	return next, nil
}

// RequestRematch records a participant's wish for a fresh round after the
// game completed. Re-requesting by the same identity is idempotent.
func RequestRematch(state *entity.Game, identity string) (*entity.Game, error) {
	if !state.IsParticipant(identity) {
		return state, apperror.ErrNotParticipant
	}

	if !state.IsCompleted() {
		return state, apperror.ErrGameNotActive
	}

	if state.RematchRequestedBy == identity {
		return state, nil
	}

	if state.RematchRequestedBy != "" {
		return state, apperror.ErrRematchAlreadyRequested
	}

	next := state.Clone()
	next.RematchRequestedBy = identity
	next.Revision++

	return next, nil
}

// AcceptRematch resets the room for a new round: empty board of the same
// variant, no winner, a re-randomized opening mark. The room id and both
// seats are preserved.
func AcceptRematch(state *entity.Game, identity string) (*entity.Game, error) {
	if !state.IsParticipant(identity) {
		return state, apperror.ErrNotParticipant
	}

	if state.RematchRequestedBy == "" {
		return state, apperror.ErrRematchNotRequested
	}

	if state.RematchRequestedBy == identity {
		return state, apperror.ErrCannotAcceptOwnRequest
	}

	next := state.Clone()
	next.ResetBoard()
	next.Winner = ""
	next.RematchRequestedBy = ""
	next.Turn = entity.RandomMark()
	next.Status = entity.StatusInProgress
	next.Revision++

	return next, nil
}

// applyClassic places a mark on a classic board.
func applyClassic(board *entity.Board, move Move, mark string) error {
	if move.SubBoard != 0 {
		return fmt.Errorf("%w: sub-board %d in a classic game", apperror.ErrInvalidCell, move.SubBoard)
	}

	if move.Cell < 0 || move.Cell >= len(board) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, move.Cell)
	}

	if board[move.Cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	board[move.Cell] = mark

	return nil
}

// applySuper places a mark on a sub-board and advances the active-sub-board
// pointer: the opponent is sent to the board matching the cell index, unless
// that board is already decided, which returns them to free choice.
func applySuper(super *entity.SuperBoard, subBoard, cell int, mark string) error {
	if subBoard < 0 || subBoard >= len(super.Boards) {
		return fmt.Errorf("%w: sub-board %d", apperror.ErrInvalidCell, subBoard)
	}

	if cell < 0 || cell >= len(super.Boards[subBoard]) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
	}

	if Evaluate(super.Boards[subBoard], false) != entity.EmptyCell {
		return apperror.ErrSubBoardDecided
	}

	if super.ActiveBoard != nil && *super.ActiveBoard != subBoard {
		return apperror.ErrWrongSubBoard
	}

	if super.Boards[subBoard][cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	super.Boards[subBoard][cell] = mark

	if Evaluate(super.Boards[cell], false) != entity.EmptyCell {
		super.ActiveBoard = nil
	} else {
		next := cell
		super.ActiveBoard = &next
	}

	return nil
}

// resolveOutcome recomputes the game outcome after a placed mark and either
// completes the game or passes the turn.
func resolveOutcome(state *entity.Game, mark string) {
	var outcome string
	if state.IsSuper() {
		outcome = EvaluateSuper(state.Super)
	} else {
		outcome = EvaluateBoard(state.Board)
	}

	if outcome != entity.EmptyCell {
		state.Winner = outcome
		state.Status = entity.StatusCompleted
		state.Turn = ""
		return
	}

	state.Turn = entity.OtherMark(mark)
}
