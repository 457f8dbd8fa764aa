package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourline/server/internal/domain"
)

func TestNewBoard(t *testing.T) {
	board := domain.NewBoard()

	require.Len(t, board, domain.Rows)
	for _, row := range board {
		require.Len(t, row, domain.Columns)
		for _, cell := range row {
			assert.Equal(t, domain.Empty, cell)
		}
	}
}

func TestDropDisc_Gravity(t *testing.T) {
	board := domain.NewBoard()

	row, err := domain.DropDisc(board, 3, domain.Player1)
	require.NoError(t, err)
	assert.Equal(t, domain.Rows-1, row)

	row, err = domain.DropDisc(board, 3, domain.Player2)
	require.NoError(t, err)
	assert.Equal(t, domain.Rows-2, row)

	assert.Equal(t, domain.Player1, board[5][3])
	assert.Equal(t, domain.Player2, board[4][3])
	assert.False(t, domain.CheckWin(board, domain.Player1))
	assert.False(t, domain.CheckWin(board, domain.Player2))
}

func TestDropDisc_ColumnFull(t *testing.T) {
	board := domain.NewBoard()
	for i := 0; i < domain.Rows; i++ {
		_, err := domain.DropDisc(board, 3, domain.DiscOf(i%2))
		require.NoError(t, err)
	}

	before := domain.CopyBoard(board)
	row, err := domain.DropDisc(board, 3, domain.Player1)
	assert.Equal(t, -1, row)
	assert.ErrorIs(t, err, domain.ErrColumnFull)
	assert.Equal(t, before, board)
}

func TestDropDisc_OutOfRange(t *testing.T) {
	board := domain.NewBoard()
	before := domain.CopyBoard(board)

	for _, col := range []int{-1, domain.Columns, 42} {
		row, err := domain.DropDisc(board, col, domain.Player1)
		assert.Equal(t, -1, row)
		assert.ErrorIs(t, err, domain.ErrColumnFull)
	}
	assert.Equal(t, before, board)
}

func TestCheckWin(t *testing.T) {
	tests := []struct {
		name  string
		cells [][2]int // row, col for Player1
		want  bool
	}{
		{
			name:  "horizontal four on the bottom row",
			cells: [][2]int{{5, 0}, {5, 1}, {5, 2}, {5, 3}},
			want:  true,
		},
		{
			name:  "vertical four",
			cells: [][2]int{{5, 2}, {4, 2}, {3, 2}, {2, 2}},
			want:  true,
		},
		{
			name:  "diagonal down-right",
			cells: [][2]int{{2, 1}, {3, 2}, {4, 3}, {5, 4}},
			want:  true,
		},
		{
			name:  "diagonal up-right",
			cells: [][2]int{{5, 1}, {4, 2}, {3, 3}, {2, 4}},
			want:  true,
		},
		{
			name:  "three in a row is not a win",
			cells: [][2]int{{5, 0}, {5, 1}, {5, 2}},
			want:  false,
		},
		{
			name:  "broken run of four",
			cells: [][2]int{{5, 0}, {5, 1}, {5, 3}, {5, 4}},
			want:  false,
		},
		{
			name:  "empty board",
			cells: nil,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := domain.NewBoard()
			for _, cell := range tt.cells {
				board[cell[0]][cell[1]] = domain.Player1
			}
			assert.Equal(t, tt.want, domain.CheckWin(board, domain.Player1))
			assert.False(t, domain.CheckWin(board, domain.Player2))
		})
	}
}

func TestCheckWin_OnlyCountsOwnDiscs(t *testing.T) {
	board := domain.NewBoard()
	board[5][0] = domain.Player1
	board[5][1] = domain.Player1
	board[5][2] = domain.Player2
	board[5][3] = domain.Player1
	board[5][4] = domain.Player1

	assert.False(t, domain.CheckWin(board, domain.Player1))
	assert.False(t, domain.CheckWin(board, domain.Player2))
}

func TestIsFull(t *testing.T) {
	board := domain.NewBoard()
	assert.False(t, domain.IsFull(board))

	// Only the top row decides fullness, given gravity.
	for c := 0; c < domain.Columns; c++ {
		board[0][c] = domain.Player1
	}
	assert.True(t, domain.IsFull(board))

	board[0][4] = domain.Empty
	assert.False(t, domain.IsFull(board))
}

func TestValidColumns(t *testing.T) {
	board := domain.NewBoard()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, domain.ValidColumns(board))

	for i := 0; i < domain.Rows; i++ {
		_, err := domain.DropDisc(board, 2, domain.DiscOf(i%2))
		require.NoError(t, err)
	}

	assert.Equal(t, []int{0, 1, 3, 4, 5, 6}, domain.ValidColumns(board))
}

func TestGravityInvariant(t *testing.T) {
	board := domain.NewBoard()
	moves := []int{3, 3, 2, 4, 2, 0, 6, 6, 6, 1, 5, 3}

	for i, col := range moves {
		_, err := domain.DropDisc(board, col, domain.DiscOf(i%2))
		require.NoError(t, err)

		// Within each column, non-empty cells form a contiguous run
		// from the bottom.
		for c := 0; c < domain.Columns; c++ {
			seenDisc := false
			for r := 0; r < domain.Rows; r++ {
				if board[r][c] != domain.Empty {
					seenDisc = true
				} else {
					require.False(t, seenDisc, "empty cell below a disc in column %d", c)
				}
			}
		}
	}
}

func TestSimulateMove_LeavesOriginalUntouched(t *testing.T) {
	board := domain.NewBoard()
	before := domain.CopyBoard(board)

	simulated, row, err := domain.SimulateMove(board, 3, domain.Player1)
	require.NoError(t, err)
	assert.Equal(t, domain.Rows-1, row)
	assert.Equal(t, domain.Player1, simulated[5][3])
	assert.Equal(t, before, board)
}
