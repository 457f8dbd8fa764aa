package domain

func NewBoard() [][]Disc {
	board := make([][]Disc, Rows)
	for i := range board {
		board[i] = make([]Disc, Columns)
	}
	return board
}

// DropDisc places a disc in the lowest empty cell of the column.
// It returns the row the disc landed in, or ErrColumnFull when the
// column is full or out of range. The board is left unchanged on error.
func DropDisc(board [][]Disc, column int, disc Disc) (int, error) {
	if column < 0 || column >= Columns {
		return -1, ErrColumnFull
	}

	for row := Rows - 1; row >= 0; row-- {
		if board[row][column] == Empty {
			board[row][column] = disc
			return row, nil
		}
	}

	return -1, ErrColumnFull
}

// CheckWin reports whether disc has four in a row anywhere on the board.
// Call it for the disc that just moved; it walks outward from every cell
// holding the disc in the four line directions.
func CheckWin(board [][]Disc, disc Disc) bool {
	dirs := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal down-right
		{1, -1}, // diagonal down-left
	}

	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			if board[r][c] != disc {
				continue
			}
			for _, d := range dirs {
				count := 1
				rr, cc := r+d[0], c+d[1]
				for rr >= 0 && rr < Rows && cc >= 0 && cc < Columns && board[rr][cc] == disc {
					count++
					if count == ToWin {
						return true
					}
					rr += d[0]
					cc += d[1]
				}
			}
		}
	}

	return false
}

// IsFull reports whether no legal move remains. With gravity this is
// equivalent to the top row having no empty cell.
func IsFull(board [][]Disc) bool {
	for c := 0; c < Columns; c++ {
		if board[0][c] == Empty {
			return false
		}
	}
	return true
}

// ValidColumns returns the playable columns in ascending order.
func ValidColumns(board [][]Disc) []int {
	cols := []int{}
	for c := 0; c < Columns; c++ {
		if board[0][c] == Empty {
			cols = append(cols, c)
		}
	}
	return cols
}

// CopyBoard creates a deep copy of the board.
func CopyBoard(board [][]Disc) [][]Disc {
	newBoard := make([][]Disc, len(board))
	for i := range board {
		newBoard[i] = make([]Disc, len(board[i]))
		copy(newBoard[i], board[i])
	}
	return newBoard
}

// SimulateMove plays a move on a copy of the board and returns the copy
// together with the landing row.
func SimulateMove(board [][]Disc, column int, disc Disc) ([][]Disc, int, error) {
	newBoard := CopyBoard(board)
	row, err := DropDisc(newBoard, column, disc)
	if err != nil {
		return nil, -1, err
	}
	return newBoard, row, nil
}
