package game

import (
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/fourline/server/internal/domain"
	"github.com/fourline/server/internal/service/bot"
	"github.com/fourline/server/pkg/uid"
)

// ConnectionSender delivers a message to one participant. Implemented by
// the websocket ConnectionManager; tests plug in a recording fake.
type ConnectionSender interface {
	SendMessage(username string, message any) error
}

// GameRepository is the external persistence collaborator. Both calls
// happen only from the end-of-session handoff and their failures are
// logged, never propagated back into session state.
type GameRepository interface {
	SaveGame(player1, player2 string, winner *string, moves []domain.Move) error
	RecordWin(username string) error
}

// SessionManager holds every active session, the username lookup table
// and the disconnect grace-timer registry. It is the only mutable shared
// state outside the matchmaking queue.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*GameSession // gameID → session
	userToGame  map[string]string       // username → gameID
	graceTimers map[string]*clock.Timer // gameID_username → pending forfeit

	repo        GameRepository
	strategy    *bot.Strategy
	clk         clock.Clock
	botDelay    time.Duration
	gracePeriod time.Duration
}

func NewSessionManager(repo GameRepository, strategy *bot.Strategy, clk clock.Clock, botDelay, gracePeriod time.Duration) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*GameSession),
		userToGame:  make(map[string]string),
		graceTimers: make(map[string]*clock.Timer),
		repo:        repo,
		strategy:    strategy,
		clk:         clk,
		botDelay:    botDelay,
		gracePeriod: gracePeriod,
	}
}

// CreateSession registers a fresh session for a matched pair and sends
// each non-bot seat its start event. Slot 0 always goes to player1, the
// participant who waited longest.
func (sm *SessionManager) CreateSession(player1, player2 string, isBot bool, conn ConnectionSender) *GameSession {
	session := &GameSession{
		GameID: uid.GenerateGameID(),
		Players: [2]Participant{
			{Username: player1, Connected: true},
			{Username: player2, Connected: true},
		},
		Board:     domain.NewBoard(),
		Turn:      0,
		Status:    domain.StatusInProgress,
		IsBot:     isBot,
		CreatedAt: sm.clk.Now(),
		manager:   sm,
	}

	sm.mu.Lock()
	sm.sessions[session.GameID] = session
	sm.userToGame[player1] = session.GameID
	if !isBot {
		sm.userToGame[player2] = session.GameID
	}
	sm.mu.Unlock()

	log.Printf("[SESSION] Created session %s: %s vs %s (bot=%v)", session.GameID, player1, player2, isBot)

	for slot, p := range session.Players {
		if p.Username != domain.BotUsername {
			session.send(conn, p.Username, domain.NewStartMessage(slot, session.Board, session.GameID))
		}
	}

	return session
}

func (sm *SessionManager) GetSessionByGameID(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[gameID]
	return session, exists
}

func (sm *SessionManager) GetSessionByUsername(username string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	gameID, exists := sm.userToGame[username]
	if !exists {
		return nil, false
	}
	session, exists := sm.sessions[gameID]
	return session, exists
}

// RemoveSession evicts a session and everything keyed under it: the
// username mappings and any pending grace timers.
func (sm *SessionManager) RemoveSession(gameID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[gameID]
	if !exists {
		return
	}

	log.Printf("[SESSION] Removing session %s", gameID)

	for _, p := range session.Players {
		if p.Username != domain.BotUsername {
			delete(sm.userToGame, p.Username)
		}
		sm.stopGraceTimerLocked(graceKey(gameID, p.Username))
	}

	delete(sm.sessions, gameID)
}

// ActiveSessions reports how many sessions are live.
func (sm *SessionManager) ActiveSessions() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// HandleMove routes a move event to the sender's session. Unknown
// senders are silent no-ops.
func (sm *SessionManager) HandleMove(username string, column int, conn ConnectionSender) {
	session, exists := sm.GetSessionByUsername(username)
	if !exists {
		return
	}
	session.HandleMove(username, column, conn)
}

// HandleDisconnect starts the grace-period countdown for a mid-session
// participant. Queued participants are the transport's concern; a
// username with no session is a no-op here.
func (sm *SessionManager) HandleDisconnect(username string, conn ConnectionSender) {
	session, exists := sm.GetSessionByUsername(username)
	if !exists {
		return
	}
	session.handleDisconnect(username, conn)
}

// HandleReconnect rebinds a returning participant to its seat. A stale
// or unknown game id or username is a no-op.
func (sm *SessionManager) HandleReconnect(username, gameID string, conn ConnectionSender) {
	session, exists := sm.GetSessionByGameID(gameID)
	if !exists {
		log.Printf("[SESSION] Reconnect for unknown game %s ignored", gameID)
		return
	}
	session.handleReconnect(username, conn)
}

func graceKey(gameID, username string) string {
	return gameID + "_" + username
}

// armGraceTimer schedules the forfeit for a disconnected seat,
// replacing any timer already pending for the same seat.
func (sm *SessionManager) armGraceTimer(session *GameSession, username string, conn ConnectionSender) {
	key := graceKey(session.GameID, username)

	sm.mu.Lock()
	sm.stopGraceTimerLocked(key)
	sm.graceTimers[key] = sm.clk.AfterFunc(sm.gracePeriod, func() {
		sm.mu.Lock()
		delete(sm.graceTimers, key)
		sm.mu.Unlock()

		session.forfeit(username, conn)
	})
	sm.mu.Unlock()
}

// cancelGraceTimer stops a pending forfeit. A timer that already fired
// still checks session state before acting, so the cancel/fire race is
// harmless.
func (sm *SessionManager) cancelGraceTimer(gameID, username string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.stopGraceTimerLocked(graceKey(gameID, username))
}

func (sm *SessionManager) stopGraceTimerLocked(key string) {
	if timer, ok := sm.graceTimers[key]; ok {
		timer.Stop()
		delete(sm.graceTimers, key)
	}
}

// finalize runs the persistence handoff after a session left the store.
// Fire and forget: a failed save never blocks or reverses the eviction.
func (sm *SessionManager) finalize(player1, player2 string, winner *string, moves []domain.Move) {
	go func() {
		if err := sm.repo.SaveGame(player1, player2, winner, moves); err != nil {
			log.Printf("[DB] Error saving game %s vs %s: %v", player1, player2, err)
		}

		if winner != nil && *winner != domain.BotUsername {
			if err := sm.repo.RecordWin(*winner); err != nil {
				log.Printf("[DB] Error recording win for %s: %v", *winner, err)
			}
		}
	}()
}
