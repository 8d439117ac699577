package apperror

import "errors"

var (
	ErrGameNotFound   = errors.New("game not found")
	ErrNotParticipant = errors.New("identity is not a participant of this game")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrGameNotActive  = errors.New("game is not active")
	ErrGameFull       = errors.New("game already has two participants")

	ErrInvalidCell     = errors.New("invalid cell index")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrWrongSubBoard   = errors.New("move must target the active sub-board")
	ErrSubBoardDecided = errors.New("sub-board is already decided")

	ErrRematchNotRequested     = errors.New("no rematch has been requested")
	ErrRematchAlreadyRequested = errors.New("rematch already requested by the opponent")
	ErrCannotAcceptOwnRequest  = errors.New("cannot accept your own rematch request")

	ErrConflict = errors.New("game state changed, please retry")
)
