package bot

import (
	"math/rand"

	"github.com/fourline/server/internal/domain"
)

// Strategy picks columns for the automated opponent. The random source
// is injected so tests can pin the fallback choice with a fixed seed.
type Strategy struct {
	rng *rand.Rand
}

func NewStrategy(rng *rand.Rand) *Strategy {
	return &Strategy{rng: rng}
}

// columnWeight biases the random fallback toward the center. The exact
// center column is weighted highest, its neighbours next, edges least.
func columnWeight(col int) int {
	center := domain.Columns / 2
	dist := col - center
	if dist < 0 {
		dist = -dist
	}
	weight := domain.ToWin - dist
	if weight < 1 {
		weight = 1
	}
	return weight
}

// Pick returns the column the bot plays, given its own disc and the
// opponent's. Priority order: immediate win, block the opponent's
// immediate win, then a center-weighted random legal column. Returns -1
// when no legal column exists; callers must not reach that state since
// a full board already ended the session.
func (s *Strategy) Pick(board [][]domain.Disc, botDisc, opponentDisc domain.Disc) int {
	validCols := domain.ValidColumns(board)
	if len(validCols) == 0 {
		return -1
	}

	// Win now if possible, lowest column first.
	for _, col := range validCols {
		testBoard, _, err := domain.SimulateMove(board, col, botDisc)
		if err == nil && domain.CheckWin(testBoard, botDisc) {
			return col
		}
	}

	// Block an opponent win, lowest column first.
	for _, col := range validCols {
		testBoard, _, err := domain.SimulateMove(board, col, opponentDisc)
		if err == nil && domain.CheckWin(testBoard, opponentDisc) {
			return col
		}
	}

	// Weighted random among legal columns, biased toward the center.
	total := 0
	for _, col := range validCols {
		total += columnWeight(col)
	}

	pick := s.rng.Intn(total)
	for _, col := range validCols {
		pick -= columnWeight(col)
		if pick < 0 {
			return col
		}
	}

	return validCols[len(validCols)-1]
}
