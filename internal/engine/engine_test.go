package engine

import (
	"testing"

	"github.com/rocketscienceinc/supertictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/supertictactoe-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassicGame() *entity.Game {
	game := entity.NewGame("123", entity.VariantClassic, "alice")
	game.PlayerO = "bob"
	game.Status = entity.StatusInProgress
	game.Revision = 2

	return game
}

func newSuperGame() *entity.Game {
	game := entity.NewGame("456", entity.VariantSuper, "alice")
	game.PlayerO = "bob"
	game.Status = entity.StatusInProgress
	game.Revision = 2

	return game
}

// play applies a sequence of already-legal moves, failing the test on any
// rejection.
func play(t *testing.T, game *entity.Game, identities []string, cells []int) *entity.Game {
	t.Helper()

	for i, cell := range cells {
		next, err := SubmitMove(game, Move{Cell: cell}, identities[i%2])
		require.NoError(t, err, "move %d at cell %d", i, cell)
		game = next
	}

	return game
}

func TestSubmitMove_Classic(t *testing.T) {
	t.Run("Successful move passes the turn and bumps the revision", func(t *testing.T) {
		// Given: an in-progress classic game, X to move
		game := newClassicGame()

		// When: X plays cell 0
		next, err := SubmitMove(game, Move{Cell: 0}, "alice")
		require.NoError(t, err)

		// Then: the mark is placed, it's O's turn, revision moved on
		assert.Equal(t, entity.MarkX, next.Board[0])
		assert.Equal(t, entity.MarkO, next.Turn)
		assert.Equal(t, entity.StatusInProgress, next.Status)
		assert.Equal(t, game.Revision+1, next.Revision)

		// And: the input state was not mutated
		assert.Equal(t, entity.EmptyCell, game.Board[0])
		assert.Equal(t, entity.MarkX, game.Turn)
	})

	t.Run("Rejects a non-participant", func(t *testing.T) {
		// Given: an in-progress game
		game := newClassicGame()

		// When: a stranger tries to move
		next, err := SubmitMove(game, Move{Cell: 0}, "mallory")

		// Then: the move is rejected and the state unchanged
		require.ErrorIs(t, err, apperror.ErrNotParticipant)
		assert.Same(t, game, next)
	})

	t.Run("Rejects a move out of turn with the state unchanged", func(t *testing.T) {
		// Given: an in-progress game, X to move
		game := newClassicGame()

		// When: O tries to move
		next, err := SubmitMove(game, Move{Cell: 1}, "bob")

		// Then: the move is rejected and the revision did not change
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Same(t, game, next)
		assert.Equal(t, int64(2), game.Revision)
		assert.Equal(t, entity.EmptyCell, game.Board[1])
	})

	t.Run("Rejects a move while the game is waiting", func(t *testing.T) {
		// Given: a freshly created room without an opponent
		game := entity.NewGame("123", entity.VariantClassic, "alice")

		// When: the creator tries to move
		_, err := SubmitMove(game, Move{Cell: 0}, "alice")

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrGameNotActive)
	})

	t.Run("Rejects a move after the game completed", func(t *testing.T) {
		// Given: a completed game won by X
		game := newClassicGame()
		game = play(t, game, []string{"alice", "bob"}, []int{0, 3, 1, 4, 2})
		require.Equal(t, entity.StatusCompleted, game.Status)

		// When: either participant tries to keep playing
		for _, identity := range []string{"alice", "bob"} {
			next, err := SubmitMove(game, Move{Cell: 5}, identity)

			// Then: the lifecycle rejection fires, not a turn one
			require.ErrorIs(t, err, apperror.ErrGameNotActive)
			assert.Same(t, game, next)
		}
	})

	t.Run("Rejects a sub-board index in a classic game", func(t *testing.T) {
		// Given: an in-progress classic game
		game := newClassicGame()

		// When: X addresses a sub-board as if the game were super
		next, err := SubmitMove(game, Move{SubBoard: 3, Cell: 0}, "alice")

		// Then: the move is rejected and nothing is placed
		require.ErrorIs(t, err, apperror.ErrInvalidCell)
		assert.Same(t, game, next)
		assert.Equal(t, entity.EmptyCell, game.Board[0])
	})

	t.Run("Rejects a move into an occupied cell, every time", func(t *testing.T) {
		// Given: a game where X already took cell 0
		game := newClassicGame()
		game, err := SubmitMove(game, Move{Cell: 0}, "alice")
		require.NoError(t, err)

		// When: O resubmits into the same cell twice
		for i := 0; i < 2; i++ {
			next, err := SubmitMove(game, Move{Cell: 0}, "bob")

			// Then: every attempt is rejected without mutation
			require.ErrorIs(t, err, apperror.ErrCellOccupied)
			assert.Same(t, game, next)
			assert.Equal(t, entity.MarkX, game.Board[0])
		}
	})

	t.Run("Rejects an out-of-range cell", func(t *testing.T) {
		// Given: an in-progress game
		game := newClassicGame()

		// When: X targets cell 20
		_, err := SubmitMove(game, Move{Cell: 20}, "alice")

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Fifth X move on a row completes the game", func(t *testing.T) {
		// Given: an in-progress game
		game := newClassicGame()

		// When: playing 0,3,1,4,2 alternating X and O
		game = play(t, game, []string{"alice", "bob"}, []int{0, 3, 1, 4, 2})

		// Then: X wins and the game is completed
		assert.Equal(t, entity.MarkX, game.Winner)
		assert.Equal(t, entity.StatusCompleted, game.Status)
		assert.Equal(t, entity.EmptyCell, game.Turn)
	})

	t.Run("A full board without a line is a draw", func(t *testing.T) {
		// Given: an in-progress game
		game := newClassicGame()

		// When: playing a sequence that fills the board without a line
		game = play(t, game, []string{"alice", "bob"}, []int{0, 1, 2, 4, 3, 5, 7, 6, 8})

		// Then: the game is completed as a tie
		assert.Equal(t, entity.PlayerTie, game.Winner)
		assert.Equal(t, entity.StatusCompleted, game.Status)
	})

	t.Run("Marks strictly alternate while the game is ongoing", func(t *testing.T) {
		// Given: an in-progress game
		game := newClassicGame()

		identities := []string{"alice", "bob"}
		cells := []int{0, 1, 2, 4, 3, 5, 7, 6}

		// When/Then: after N successful moves the turn parity is fixed
		for i, cell := range cells {
			next, err := SubmitMove(game, Move{Cell: cell}, identities[i%2])
			require.NoError(t, err)
			game = next

			if !game.IsInProgress() {
				break
			}

			expected := entity.MarkX
			if i%2 == 0 {
				expected = entity.MarkO
			}
			assert.Equal(t, expected, game.Turn, "after move %d", i+1)
		}
	})
}

func TestSubmitMove_Super(t *testing.T) {
	t.Run("First move routes the opponent to the matching sub-board", func(t *testing.T) {
		// Given: an in-progress super game with free choice
		game := newSuperGame()

		// When: X plays sub-board 0, cell 4
		next, err := SubmitMove(game, Move{SubBoard: 0, Cell: 4}, "alice")
		require.NoError(t, err)

		// Then: the active sub-board becomes 4
		require.NotNil(t, next.Super.ActiveBoard)
		assert.Equal(t, 4, *next.Super.ActiveBoard)

		// When: O ignores the routing and plays sub-board 5
		_, err = SubmitMove(next, Move{SubBoard: 5, Cell: 0}, "bob")

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrWrongSubBoard)
	})

	t.Run("Sending to a decided sub-board grants free choice", func(t *testing.T) {
		// Given: sub-board 2 is already won by X and it's X's move on board 0
		game := newSuperGame()
		game.Super.Boards[2] = entity.Board{
			entity.MarkX, entity.MarkX, entity.MarkX,
			"", "", "", "", "", "",
		}

		// When: X plays cell 2, which points at the decided board
		next, err := SubmitMove(game, Move{SubBoard: 0, Cell: 2}, "alice")
		require.NoError(t, err)

		// Then: the opponent gets free choice
		assert.Nil(t, next.Super.ActiveBoard)
	})

	t.Run("Rejects a move into a decided sub-board even when it is the active one", func(t *testing.T) {
		// Given: sub-board 0 won by O, and the pointer still aimed at it
		game := newSuperGame()
		game.Super.Boards[0] = entity.Board{
			entity.MarkO, entity.MarkO, entity.MarkO,
			"", "", "", "", "", "",
		}
		active := 0
		game.Super.ActiveBoard = &active

		// When: X plays into sub-board 0
		_, err := SubmitMove(game, Move{SubBoard: 0, Cell: 5}, "alice")

		// Then: the decided-board rejection wins over the routing one
		require.ErrorIs(t, err, apperror.ErrSubBoardDecided)
	})

	t.Run("Rejects an occupied sub-cell", func(t *testing.T) {
		// Given: X already took sub-board 4, cell 4, sending O to board 4
		game := newSuperGame()
		game, err := SubmitMove(game, Move{SubBoard: 4, Cell: 4}, "alice")
		require.NoError(t, err)

		// When: O plays the same cell
		_, err = SubmitMove(game, Move{SubBoard: 4, Cell: 4}, "bob")

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Winning the third sub-board of a line wins the game", func(t *testing.T) {
		// Given: X owns sub-boards 0 and 1, and leads 2 with free choice
		game := newSuperGame()
		game.Super.Boards[0] = entity.Board{entity.MarkX, entity.MarkX, entity.MarkX, "", "", "", "", "", ""}
		game.Super.Boards[1] = entity.Board{entity.MarkX, entity.MarkX, entity.MarkX, "", "", "", "", "", ""}
		game.Super.Boards[2] = entity.Board{entity.MarkX, entity.MarkX, "", "", "", "", "", "", ""}

		// When: X completes sub-board 2
		next, err := SubmitMove(game, Move{SubBoard: 2, Cell: 2}, "alice")
		require.NoError(t, err)

		// Then: X wins the whole game
		assert.Equal(t, entity.MarkX, next.Winner)
		assert.Equal(t, entity.StatusCompleted, next.Status)
		assert.Equal(t, entity.EmptyCell, next.Turn)
	})

	t.Run("Routing law holds for every move", func(t *testing.T) {
		// Given: an in-progress super game
		game := newSuperGame()

		identities := []string{"alice", "bob"}
		moves := []Move{
			{SubBoard: 4, Cell: 0},
			{SubBoard: 0, Cell: 4},
			{SubBoard: 4, Cell: 8},
			{SubBoard: 8, Cell: 4},
			{SubBoard: 4, Cell: 4},
		}

		// When/Then: after each move the pointer equals the cell index, or
		// nil when that target board is already decided
		for i, move := range moves {
			next, err := SubmitMove(game, move, identities[i%2])
			require.NoError(t, err, "move %d", i)
			game = next

			target := Evaluate(game.Super.Boards[move.Cell], false)
			if target == entity.EmptyCell {
				require.NotNil(t, game.Super.ActiveBoard, "move %d", i)
				assert.Equal(t, move.Cell, *game.Super.ActiveBoard, "move %d", i)
			} else {
				assert.Nil(t, game.Super.ActiveBoard, "move %d", i)
			}
		}
	})
}

func TestJoin(t *testing.T) {
	t.Run("Second identity joins a waiting room as O", func(t *testing.T) {
		// Given: a waiting room created by alice
		game := entity.NewGame("123", entity.VariantClassic, "alice")

		// When: bob joins
		next, err := Join(game, "bob")
		require.NoError(t, err)

		// Then: bob is seated as O and the game starts
		assert.Equal(t, "bob", next.PlayerO)
		assert.Equal(t, entity.StatusInProgress, next.Status)
		assert.Equal(t, game.Revision+1, next.Revision)

		// And: the waiting state was not mutated
		assert.Empty(t, game.PlayerO)
		assert.Equal(t, entity.StatusWaiting, game.Status)
	})

	t.Run("Joining a room you already sit in is a no-op", func(t *testing.T) {
		// Given: an in-progress game with both seats taken
		game := newClassicGame()

		// When: either participant joins again
		next, err := Join(game, "alice")

		// Then: the state is returned unchanged
		require.NoError(t, err)
		assert.Same(t, game, next)
	})

	t.Run("Rejects a third identity", func(t *testing.T) {
		// Given: an in-progress game with both seats taken
		game := newClassicGame()

		// When: a third identity tries to join
		_, err := Join(game, "mallory")

		// Then: the join is rejected
		require.ErrorIs(t, err, apperror.ErrGameFull)
	})
}
