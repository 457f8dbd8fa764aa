package bot_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourline/server/internal/domain"
	"github.com/fourline/server/internal/service/bot"
)

func seededStrategy(seed int64) *bot.Strategy {
	return bot.NewStrategy(rand.New(rand.NewSource(seed)))
}

func TestPick_TakesImmediateWin(t *testing.T) {
	board := domain.NewBoard()
	// Bot has three in a row on the bottom; column 3 completes it.
	board[5][0] = domain.Player2
	board[5][1] = domain.Player2
	board[5][2] = domain.Player2

	strategy := seededStrategy(1)
	col := strategy.Pick(board, domain.Player2, domain.Player1)
	assert.Equal(t, 3, col)
}

func TestPick_PrefersLowestWinningColumn(t *testing.T) {
	board := domain.NewBoard()
	// Wins available at column 0 and column 4; the lowest index wins.
	board[5][1] = domain.Player2
	board[5][2] = domain.Player2
	board[5][3] = domain.Player2

	strategy := seededStrategy(1)
	col := strategy.Pick(board, domain.Player2, domain.Player1)
	assert.Equal(t, 0, col)
}

func TestPick_BlocksOpponentWin(t *testing.T) {
	board := domain.NewBoard()
	// Opponent threatens a vertical four in column 6.
	board[5][6] = domain.Player1
	board[4][6] = domain.Player1
	board[3][6] = domain.Player1

	strategy := seededStrategy(1)
	col := strategy.Pick(board, domain.Player2, domain.Player1)
	assert.Equal(t, 6, col)
}

func TestPick_WinBeatsBlock(t *testing.T) {
	board := domain.NewBoard()
	// Both sides threaten: the bot wins at column 3, the opponent at
	// column 6. Taking the win outranks blocking.
	board[5][0] = domain.Player2
	board[5][1] = domain.Player2
	board[5][2] = domain.Player2
	board[5][6] = domain.Player1
	board[4][6] = domain.Player1
	board[3][6] = domain.Player1

	strategy := seededStrategy(1)
	col := strategy.Pick(board, domain.Player2, domain.Player1)
	assert.Equal(t, 3, col)
}

func TestPick_FallbackIsSeedDeterministic(t *testing.T) {
	board := domain.NewBoard()

	first := seededStrategy(42).Pick(board, domain.Player2, domain.Player1)
	second := seededStrategy(42).Pick(board, domain.Player2, domain.Player1)
	assert.Equal(t, first, second)
}

func TestPick_FallbackIsCenterBiased(t *testing.T) {
	board := domain.NewBoard()
	strategy := seededStrategy(7)

	counts := make(map[int]int)
	for i := 0; i < 2000; i++ {
		col := strategy.Pick(board, domain.Player2, domain.Player1)
		require.GreaterOrEqual(t, col, 0)
		require.Less(t, col, domain.Columns)
		counts[col]++
	}

	center := domain.Columns / 2
	assert.Greater(t, counts[center], counts[0])
	assert.Greater(t, counts[center], counts[domain.Columns-1])
}

func TestPick_OnlyLegalColumns(t *testing.T) {
	board := domain.NewBoard()
	// Fill every column except 5 without creating a four in a row.
	for c := 0; c < domain.Columns; c++ {
		if c == 5 {
			continue
		}
		for r := 0; r < domain.Rows; r++ {
			board[r][c] = domain.DiscOf((c/2 + r) % 2)
		}
	}

	strategy := seededStrategy(3)
	for i := 0; i < 50; i++ {
		assert.Equal(t, 5, strategy.Pick(board, domain.Player2, domain.Player1))
	}
}

func TestPick_NoLegalColumns(t *testing.T) {
	board := domain.NewBoard()
	for c := 0; c < domain.Columns; c++ {
		for r := 0; r < domain.Rows; r++ {
			board[r][c] = domain.DiscOf((c/2 + r) % 2)
		}
	}

	strategy := seededStrategy(3)
	assert.Equal(t, -1, strategy.Pick(board, domain.Player2, domain.Player1))
}
