package domain

import "time"

// to represent the discs on the board
type Disc int

const (
	Empty   Disc = 0
	Player1 Disc = 1
	Player2 Disc = 2
)

// board dimensions
const (
	Rows    = 6
	Columns = 7
	ToWin   = 4
)

// BotUsername is the sentinel identity of the automated opponent.
// It never holds a real connection.
const BotUsername = "BOT"

// DiscOf maps a seat index to its disc.
func DiscOf(slot int) Disc {
	if slot == 0 {
		return Player1
	}
	return Player2
}

// Opponent returns the other player's disc.
func Opponent(d Disc) Disc {
	if d == Player1 {
		return Player2
	}
	return Player1
}

// to represent the session status
type SessionStatus string

const (
	StatusInProgress        SessionStatus = "in_progress"
	StatusAwaitingReconnect SessionStatus = "awaiting_reconnect"
	StatusCompleted         SessionStatus = "completed"
)

// Move is one gravity drop in a session, in arrival order.
type Move struct {
	Player    int       `json:"player"` // seat index, 0 or 1
	Col       int       `json:"col"`
	Row       int       `json:"row"`
	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidMove Error = "invalid move"
	ErrColumnFull  Error = "column is full"
)
