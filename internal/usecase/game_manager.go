package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/supertictactoe-backend/internal/engine"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/pkg"
)

var ErrUnknownVariant = errors.New("unknown game variant")

type playerRepo interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	CompareAndSwap(ctx context.Context, expectedRevision int64, game *entity.Game) error
	Subscribe(ctx context.Context, gameID string, onChange func(*entity.Game)) (func(), error)
	DeleteByID(ctx context.Context, id string) error
}

// GameManager drives every operation through the same cycle: read the
// authoritative state, run the pure transition, and write the result back
// conditionally on the revision the transition was computed against. A
// failed condition surfaces as apperror.ErrConflict and is never merged or
// retried here; the caller re-reads and decides.
type GameManager struct {
	logger     *slog.Logger
	playerRepo playerRepo
	gameRepo   gameRepo
}

func NewGameManager(logger *slog.Logger, playerRepo playerRepo, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger: logger,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,
	}
}

// GetOrCreatePlayer resolves an identity, minting a guest one when the
// caller has none yet.
func (that *GameManager) GetOrCreatePlayer(ctx context.Context, id string) (*entity.Player, error) {
	if id == "" {
		player := &entity.Player{ID: pkg.GenerateGuestID()}

		if err := that.playerRepo.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

// CreateGame opens a waiting room with the creator seated as X.
func (that *GameManager) CreateGame(ctx context.Context, playerID, variant string) (*entity.Game, error) {
	if variant == "" {
		variant = entity.VariantClassic
	}

	if variant != entity.VariantClassic && variant != entity.VariantSuper {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}

	that.cleanupAbandonedRoom(ctx, playerID)

	newGame := entity.NewGame(pkg.GenerateRoomID(), variant, playerID)

	if err := that.gameRepo.Create(ctx, newGame); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err := that.updatePlayerGame(ctx, playerID, newGame.ID); err != nil {
		return nil, err
	}

	return newGame, nil
}

// cleanupAbandonedRoom drops the player's previous room when starting a new
// game walks away from it. Only finished rooms with no rematch pending are
// collected; the opponent may still be waiting on an answer otherwise. Best
// effort: a failure here never blocks the new room.
func (that *GameManager) cleanupAbandonedRoom(ctx context.Context, playerID string) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil || player.GameID == "" {
		return
	}

	oldGame, err := that.gameRepo.GetByID(ctx, player.GameID)
	if err != nil {
		return
	}

	if !oldGame.IsCompleted() || oldGame.RematchRequestedBy != "" {
		return
	}

	that.logger.Info("collecting abandoned game", "method", "cleanupAbandonedRoom", "playerID", playerID, "gameID", oldGame.ID)
	that.CleanupGame(ctx, oldGame)
}

func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return existingGame, nil
}

// JoinGame seats the player as O when the room is waiting for an opponent.
func (that *GameManager) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	nextGame, err := engine.Join(existingGame, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	if nextGame == existingGame {
		// already seated, nothing to write
		return existingGame, nil
	}

	if err = that.gameRepo.CompareAndSwap(ctx, existingGame.Revision, nextGame); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if err = that.updatePlayerGame(ctx, playerID, gameID); err != nil {
		return nil, err
	}

	return nextGame, nil
}

// MakeTurn applies one move for the acting player.
func (that *GameManager) MakeTurn(ctx context.Context, gameID, playerID string, move engine.Move) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	nextGame, err := engine.SubmitMove(existingGame, move, playerID)
	if err != nil {
		return existingGame, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.gameRepo.CompareAndSwap(ctx, existingGame.Revision, nextGame); err != nil {
		return existingGame, fmt.Errorf("failed to update game: %w", err)
	}

	return nextGame, nil
}

func (that *GameManager) RequestRematch(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	nextGame, err := engine.RequestRematch(existingGame, playerID)
	if err != nil {
		return existingGame, fmt.Errorf("failed to request rematch: %w", err)
	}

	if nextGame == existingGame {
		return existingGame, nil
	}

	if err = that.gameRepo.CompareAndSwap(ctx, existingGame.Revision, nextGame); err != nil {
		return existingGame, fmt.Errorf("failed to update game: %w", err)
	}

	return nextGame, nil
}

func (that *GameManager) AcceptRematch(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	nextGame, err := engine.AcceptRematch(existingGame, playerID)
	if err != nil {
		return existingGame, fmt.Errorf("failed to accept rematch: %w", err)
	}

	if err = that.gameRepo.CompareAndSwap(ctx, existingGame.Revision, nextGame); err != nil {
		return existingGame, fmt.Errorf("failed to update game: %w", err)
	}

	return nextGame, nil
}

// WatchGame forwards room updates to onChange. Delivery from the store is
// at-least-once and unordered across gaps, so anything at or below the last
// seen revision is dropped.
func (that *GameManager) WatchGame(ctx context.Context, gameID string, fromRevision int64, onChange func(*entity.Game)) (func(), error) {
	var mu sync.Mutex
	lastSeen := fromRevision

	stop, err := that.gameRepo.Subscribe(ctx, gameID, func(game *entity.Game) {
		mu.Lock()
		stale := game.Revision <= lastSeen
		if !stale {
			lastSeen = game.Revision
		}
		mu.Unlock()

		if stale {
			return
		}

		onChange(game)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to watch game: %w", err)
	}

	return stop, nil
}

// CleanupGame detaches both players from a finished room and drops the row.
func (that *GameManager) CleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "cleanupGame", "gameID", game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, id := range []string{game.PlayerX, game.PlayerO} {
		if id == "" {
			continue
		}

		if err := that.playerRepo.CreateOrUpdate(ctx, &entity.Player{ID: id}); err != nil {
			log.Error("failed to update player", "player", id, "error", err)
		}
	}

	log.Info("game deleted")
}

func (that *GameManager) updatePlayerGame(ctx context.Context, playerID, gameID string) error {
	if err := that.playerRepo.CreateOrUpdate(ctx, &entity.Player{ID: playerID, GameID: gameID}); err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	return nil
}
