package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/supertictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/entity"
)

func (that *Server) handleConnect(ctx context.Context, cl *client, msg *Message) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	playerID := ""
	if payloadReq.Player != nil {
		playerID = payloadReq.Player.ID
	}

	player, err := that.uGame.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		return that.sendError(cl, msg.Action, "failed to resolve player", err)
	}

	cl.playerID = player.ID

	return cl.send(msg.Action, Payload{Player: player})
}

func (that *Server) handleNewGame(ctx context.Context, cl *client, msg *Message) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	game, err := that.uGame.CreateGame(ctx, cl.playerID, payloadReq.Variant)
	if err != nil {
		return that.sendError(cl, msg.Action, "failed to create game", err)
	}

	if err = that.watchRoom(ctx, cl, game); err != nil {
		return err
	}

	return cl.send(msg.Action, Payload{Game: game})
}

func (that *Server) handleJoinGame(ctx context.Context, cl *client, msg *Message) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	game, err := that.uGame.JoinGame(ctx, payloadReq.GameID, cl.playerID)
	if err != nil {
		return that.sendError(cl, msg.Action, "failed to join game", err)
	}

	if err = that.watchRoom(ctx, cl, game); err != nil {
		return err
	}

	return cl.send(msg.Action, Payload{Game: game})
}

func (that *Server) handleGameState(ctx context.Context, cl *client, msg *Message) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	gameID := payloadReq.GameID
	if gameID == "" {
		gameID = cl.gameID
	}

	game, err := that.uGame.GetGame(ctx, gameID)
	if err != nil {
		return that.sendError(cl, msg.Action, "failed to get game", err)
	}

	return cl.send(msg.Action, Payload{Game: game})
}

func (that *Server) handleGameTurn(ctx context.Context, cl *client, msg *Message) error {
	payloadReq, err := decodePayload(msg)
	if err != nil {
		return err
	}

	if payloadReq.Move == nil {
		return that.sendError(cl, msg.Action, "move is required", nil)
	}

	game, err := that.uGame.MakeTurn(ctx, cl.gameID, cl.playerID, *payloadReq.Move)
	if err != nil {
		return that.sendRejection(cl, msg.Action, game, err)
	}

	return cl.send(msg.Action, Payload{Game: game})
}

func (that *Server) handleRematchRequest(ctx context.Context, cl *client, msg *Message) error {
	game, err := that.uGame.RequestRematch(ctx, cl.gameID, cl.playerID)
	if err != nil {
		return that.sendRejection(cl, msg.Action, game, err)
	}

	return cl.send(msg.Action, Payload{Game: game})
}

func (that *Server) handleRematchAccept(ctx context.Context, cl *client, msg *Message) error {
	game, err := that.uGame.AcceptRematch(ctx, cl.gameID, cl.playerID)
	if err != nil {
		return that.sendRejection(cl, msg.Action, game, err)
	}

	return cl.send(msg.Action, Payload{Game: game})
}

// sendRejection reports a rejected operation together with the state it was
// judged against, so the client can resync. A conflict asks the client to
// re-read before resubmitting.
func (that *Server) sendRejection(cl *client, action string, game *entity.Game, err error) error {
	reason := "operation rejected"

	switch {
	case errors.Is(err, apperror.ErrConflict):
		reason = "state changed, please retry"
	case errors.Is(err, apperror.ErrNotYourTurn):
		reason = "not your turn"
	case errors.Is(err, apperror.ErrCellOccupied):
		reason = "cell is occupied"
	case errors.Is(err, apperror.ErrWrongSubBoard):
		reason = "wrong sub-board"
	case errors.Is(err, apperror.ErrSubBoardDecided):
		reason = "sub-board already decided"
	case errors.Is(err, apperror.ErrGameNotActive):
		reason = "game is not active"
	}

	that.logger.Error("operation rejected", "action", action, "error", err)

	return cl.send(action, Payload{Game: game, Error: reason})
}

func (that *Server) sendError(cl *client, action, reason string, err error) error {
	that.logger.Error(reason, "action", action, "error", err)

	return cl.send(action, Payload{Error: reason})
}

func decodePayload(msg *Message) (*Payload, error) {
	payload := &Payload{}

	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}
