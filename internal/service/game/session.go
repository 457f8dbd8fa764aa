package game

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fourline/server/internal/domain"
)

// Participant is one seat of a session. The connection itself lives in
// the transport layer; the session only tracks the identity and whether
// the seat is currently live.
type Participant struct {
	Username  string
	Connected bool
}

// GameSession owns a board, its move log and the turn state machine.
// Every mutation goes through its mutex so only one handler executes
// against a session at a time.
type GameSession struct {
	GameID    string
	Players   [2]Participant
	Board     [][]domain.Disc
	Turn      int // seat index of the mover
	Moves     []domain.Move
	Status    domain.SessionStatus
	IsBot     bool
	CreatedAt time.Time

	mu      sync.Mutex
	manager *SessionManager
}

// seatOf returns the seat index a username occupies.
func (gs *GameSession) seatOf(username string) (int, bool) {
	for slot, p := range gs.Players {
		if p.Username == username {
			return slot, true
		}
	}
	return -1, false
}

// Snapshot returns a copy of the current board and turn for read-only
// callers outside the session's lock.
func (gs *GameSession) Snapshot() ([][]domain.Disc, int) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return domain.CopyBoard(gs.Board), gs.Turn
}

// HandleMove applies a participant's move. Every failed precondition is
// a silent no-op: wrong session state, wrong turn, seat mismatch and
// full or invalid columns are all ignored rather than reported.
func (gs *GameSession) HandleMove(username string, column int, conn ConnectionSender) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Status != domain.StatusInProgress {
		return
	}

	seat, ok := gs.seatOf(username)
	if !ok || seat != gs.Turn {
		return
	}

	gs.applyMove(seat, column, conn)
}

// applyMove drops the disc, records and broadcasts the move, checks the
// terminal conditions and flips the turn. Caller holds the lock.
func (gs *GameSession) applyMove(seat, column int, conn ConnectionSender) {
	disc := domain.DiscOf(seat)
	row, err := domain.DropDisc(gs.Board, column, disc)
	if err != nil {
		return // full or out-of-range column, ignored
	}

	gs.Moves = append(gs.Moves, domain.Move{
		Player:    seat,
		Col:       column,
		Row:       row,
		Seq:       len(gs.Moves) + 1,
		Timestamp: gs.manager.clk.Now(),
	})

	gs.broadcast(conn, domain.NewUpdateMessage(gs.Board, domain.LastMove{Col: column, Row: row, Player: seat}))

	if domain.CheckWin(gs.Board, disc) {
		gs.finishLocked(seat, conn)
		return
	}
	if domain.IsFull(gs.Board) {
		gs.finishLocked(-1, conn)
		return
	}

	gs.Turn = 1 - gs.Turn

	if gs.IsBot && gs.Players[gs.Turn].Username == domain.BotUsername {
		gs.scheduleBotMove(conn)
	}
}

// scheduleBotMove arms the delayed synthetic move that simulates the
// bot thinking. Caller holds the lock.
func (gs *GameSession) scheduleBotMove(conn ConnectionSender) {
	gs.manager.clk.AfterFunc(gs.manager.botDelay, func() {
		gs.executeBotMove(conn)
	})
}

// executeBotMove replays the bot's column pick through the same path as
// a human move. The session may have ended or been evicted while the
// delay ran, so state is re-checked before acting.
func (gs *GameSession) executeBotMove(conn ConnectionSender) {
	if _, exists := gs.manager.GetSessionByGameID(gs.GameID); !exists {
		return
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	botSeat, ok := gs.seatOf(domain.BotUsername)
	if !ok {
		return
	}
	if gs.Status != domain.StatusInProgress || !gs.IsBot || gs.Turn != botSeat {
		return
	}

	botDisc := domain.DiscOf(botSeat)
	column := gs.manager.strategy.Pick(gs.Board, botDisc, domain.Opponent(botDisc))
	if column < 0 {
		return
	}

	gs.applyMove(botSeat, column, conn)
}

// handleDisconnect transitions a human-human session into the reconnect
// grace window. Bot sessions are left untouched: the bot never
// disconnects, and the human can still rejoin by game id.
func (gs *GameSession) handleDisconnect(username string, conn ConnectionSender) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Status == domain.StatusCompleted || gs.IsBot {
		return
	}

	seat, ok := gs.seatOf(username)
	if !ok {
		return
	}

	gs.Players[seat].Connected = false
	gs.Status = domain.StatusAwaitingReconnect

	log.Printf("[SESSION] %s disconnected from game %s, grace period %s", username, gs.GameID, gs.manager.gracePeriod)

	other := gs.Players[1-seat].Username
	text := fmt.Sprintf("Opponent disconnected. They have %d seconds to reconnect.", int(gs.manager.gracePeriod.Seconds()))
	gs.send(conn, other, domain.NewOpponentDisconnectedMessage(text))

	gs.manager.armGraceTimer(gs, username, conn)
}

// handleReconnect rebinds a returning participant and replays the
// current board and turn to them. Unknown usernames are no-ops.
func (gs *GameSession) handleReconnect(username string, conn ConnectionSender) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Status == domain.StatusCompleted {
		return
	}

	seat, ok := gs.seatOf(username)
	if !ok || username == domain.BotUsername {
		return
	}

	gs.manager.cancelGraceTimer(gs.GameID, username)
	gs.Players[seat].Connected = true

	if gs.Status == domain.StatusAwaitingReconnect && gs.bothSeatsLive() {
		gs.Status = domain.StatusInProgress
	}

	log.Printf("[SESSION] %s reconnected to game %s", username, gs.GameID)
	gs.send(conn, username, domain.NewReconnectedMessage(seat, gs.Board, gs.Turn))
}

func (gs *GameSession) bothSeatsLive() bool {
	for _, p := range gs.Players {
		if p.Username != domain.BotUsername && !p.Connected {
			return false
		}
	}
	return true
}

// forfeit ends the session against a seat that never reconnected. Runs
// from the grace timer; a reconnect that raced the timer wins.
func (gs *GameSession) forfeit(username string, conn ConnectionSender) {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Status == domain.StatusCompleted {
		return
	}

	seat, ok := gs.seatOf(username)
	if !ok || gs.Players[seat].Connected {
		return
	}

	log.Printf("[SESSION] %s forfeits game %s, grace period expired", username, gs.GameID)
	gs.finishLocked(1-seat, conn)
}

// finishLocked is the single terminal transition: broadcast the end
// event, evict the session from the store and hand off to persistence.
// winnerSeat is -1 on a draw. Caller holds the lock.
func (gs *GameSession) finishLocked(winnerSeat int, conn ConnectionSender) {
	gs.Status = domain.StatusCompleted

	var winner *string
	if winnerSeat >= 0 {
		name := gs.Players[winnerSeat].Username
		winner = &name
		log.Printf("[SESSION] Game %s won by %s", gs.GameID, name)
	} else {
		log.Printf("[SESSION] Game %s ended in a draw", gs.GameID)
	}

	gs.broadcast(conn, domain.NewEndMessage(winner, gs.Board, gs.Moves))

	gs.manager.RemoveSession(gs.GameID)
	gs.manager.finalize(gs.Players[0].Username, gs.Players[1].Username, winner, gs.Moves)
}

// broadcast fans an event out to every non-bot seat. A send failure to
// one participant never affects the other or the session.
func (gs *GameSession) broadcast(conn ConnectionSender, message any) {
	for _, p := range gs.Players {
		if p.Username != domain.BotUsername {
			gs.send(conn, p.Username, message)
		}
	}
}

func (gs *GameSession) send(conn ConnectionSender, username string, message any) {
	if err := conn.SendMessage(username, message); err != nil {
		log.Printf("[SESSION] Send to %s failed: %v", username, err)
	}
}
