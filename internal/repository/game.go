package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/entity"
)

var ErrGameAlreadyExists = errors.New("game already exists")

const (
	gameKeyPrefix     = "game:"
	gameChannelPrefix = "game:updates:"
)

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	CompareAndSwap(ctx context.Context, expectedRevision int64, game *entity.Game) error
	Subscribe(ctx context.Context, gameID string, onChange func(*entity.Game)) (func(), error)
	DeleteByID(ctx context.Context, id string) error
}

type dbGame struct {
	client *redis.Client
}

func NewGameRepository(client *redis.Client) GameRepository {
	return &dbGame{
		client: client,
	}
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	created, err := that.client.SetNX(ctx, gameKeyPrefix+game.ID, gameJSON, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	if !created {
		return fmt.Errorf("%w: game id %s", ErrGameAlreadyExists, game.ID)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKeyPrefix+id).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Game{}, apperror.ErrGameNotFound
	}

	if err != nil {
		return &entity.Game{}, fmt.Errorf("failed to get game by ID: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal([]byte(response), &existingGame); err != nil {
		return &entity.Game{}, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

// CompareAndSwap replaces the stored game only while its revision still
// equals expectedRevision. A store whose row moved on returns
// apperror.ErrConflict and writes nothing; the caller must re-read. The new
// state is published to the room channel in the same transaction.
func (that *dbGame) CompareAndSwap(ctx context.Context, expectedRevision int64, game *entity.Game) error {
	gameKey := gameKeyPrefix + game.ID

	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	txn := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, gameKey).Result()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get game by ID: %w", err)
		}

		var stored entity.Game
		if err = json.Unmarshal([]byte(response), &stored); err != nil {
			return fmt.Errorf("failed to unmarshal game: %w", err)
		}

		if stored.Revision != expectedRevision {
			return apperror.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey, gameJSON, 0)
			pipe.Publish(ctx, gameChannelPrefix+game.ID, gameJSON)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to write game: %w", err)
		}

		return nil
	}

	err = that.client.Watch(ctx, txn, gameKey)
	if errors.Is(err, redis.TxFailedErr) {
		// another write landed between our read and the commit
		return apperror.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("conditional update failed: %w", err)
	}

	return nil
}

// Subscribe delivers every published state of a room until the returned stop
// function is called. Delivery is at-least-once and carries no ordering
// guarantee; consumers filter by revision.
func (that *dbGame) Subscribe(ctx context.Context, gameID string, onChange func(*entity.Game)) (func(), error) {
	sub := that.client.Subscribe(ctx, gameChannelPrefix+gameID)

	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to game updates: %w", err)
	}

	go func() {
		for msg := range sub.Channel() {
			var game entity.Game
			if err := json.Unmarshal([]byte(msg.Payload), &game); err != nil {
				continue
			}
			onChange(&game)
		}
	}()

	return func() { _ = sub.Close() }, nil
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	err := that.client.Del(ctx, gameKeyPrefix+id).Err()
	if err != nil {
		return fmt.Errorf("failed to delete game by ID: %w", err)
	}

	return nil
}
